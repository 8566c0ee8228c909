package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timebill/internal/billing"
	"timebill/internal/httpx"
	"timebill/internal/mail"
	"timebill/internal/models"
	"timebill/internal/validation"
)

// Mailer delivers a message with the stored SMTP credentials. It exists so
// tests can capture outgoing mail instead of dialing out.
type Mailer interface {
	Send(account, password string, msg mail.Message) error
}

// SMTPMailer sends through the configured SMTP endpoint.
type SMTPMailer struct {
	Host string
	Port string
}

func (m SMTPMailer) Send(account, password string, msg mail.Message) error {
	s := &mail.Sender{Host: m.Host, Port: m.Port, Account: account, Password: password}
	return s.Send(msg)
}

type EmailHandler struct {
	DB           *gorm.DB
	Mailer       Mailer
	NetTermsDays int
}

func NewEmailHandler(db *gorm.DB, mailer Mailer, netTermsDays int) *EmailHandler {
	return &EmailHandler{DB: db, Mailer: mailer, NetTermsDays: netTermsDays}
}

type emailSettingsPayload struct {
	Account     string `json:"account"`
	FromEmail   string `json:"from_email"`
	ToEmail     string `json:"to_email"`
	CCEmail     string `json:"cc_email"`
	Subject     string `json:"subject"`
	AppPassword string `json:"app_password,omitempty"`
	HasPassword bool   `json:"has_password"`
}

// GetSettings: POST /api/email_settings/get. The stored password is never
// echoed back; has_password tells the UI whether one is on file.
func (h *EmailHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	var s models.EmailSettings
	err := h.DB.First(&s, 1).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, emailSettingsPayload{
		Account:     s.Account,
		FromEmail:   s.FromEmail,
		ToEmail:     s.ToEmail,
		CCEmail:     s.CCEmail,
		Subject:     s.Subject,
		HasPassword: s.AppPassword != "",
	})
}

// SetSettings: POST /api/email_settings/set. Submitting an empty password
// keeps the one already stored.
func (h *EmailHandler) SetSettings(w http.ResponseWriter, r *http.Request) {
	var p emailSettingsPayload
	if err := httpx.ReadJSON(r, &p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("account", p.Account, v)
	validation.Required("to_email", p.ToEmail, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var existing models.EmailSettings
	if err := h.DB.First(&existing, 1).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	password := p.AppPassword
	if password == "" {
		password = existing.AppPassword
	}

	s := models.EmailSettings{
		ID:          1,
		Account:     p.Account,
		FromEmail:   p.FromEmail,
		ToEmail:     p.ToEmail,
		CCEmail:     p.CCEmail,
		Subject:     p.Subject,
		AppPassword: password,
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&s).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type sendEmailRequest struct {
	InvoiceNumber int `json:"invoice_number"`
	Month         int `json:"month"`
	Year          int `json:"year"`
}

type sendEmailResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	NewInvoiceNumber int    `json:"new_invoice_number"`
}

// SendMonthly: POST /api/send_email. Builds two invoices for the month, one
// per half (1st-15th, 16th-end), with consecutive numbers, and emails both
// as attachments. Halves with no worked hours still produce an invoice.
func (h *EmailHandler) SendMonthly(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.PositiveInt("invoice_number", req.InvoiceNumber, v)
	validation.PositiveInt("year", req.Year, v)
	if req.Month < 1 || req.Month > 12 {
		v["month"] = "must_be_1_to_12"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var settings models.EmailSettings
	if err := h.DB.First(&settings, 1).Error; err != nil ||
		settings.Account == "" || settings.AppPassword == "" || settings.ToEmail == "" {
		httpx.JSONError(w, http.StatusBadRequest, "email_not_configured", nil)
		return
	}

	inv := &InvoiceHandler{DB: h.DB, NetTermsDays: h.NetTermsDays}

	monthStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	midEnd := time.Date(req.Year, time.Month(req.Month), 15, 0, 0, 0, 0, time.UTC)

	halves := []struct {
		start, end time.Time
		number     int
	}{
		{monthStart, midEnd, req.InvoiceNumber},
		{midEnd.AddDate(0, 0, 1), monthEnd, req.InvoiceNumber + 1},
	}

	var attachments []mail.Attachment
	for _, half := range halves {
		entries, err := h.workedEntries(half.start, half.end)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
			return
		}
		data, filename, err := inv.buildPDF(half.number, half.start, half.end, entries)
		if err != nil {
			writeBillingError(w, err)
			return
		}
		attachments = append(attachments, mail.Attachment{Filename: filename, Data: data})
	}

	monthName := monthStart.Format("January 2006")
	subject := settings.Subject
	if subject == "" {
		subject = "Invoices for " + monthName
	}
	from := settings.FromEmail
	if from == "" {
		from = settings.Account
	}
	msg := mail.Message{
		From:        from,
		To:          settings.ToEmail,
		Subject:     subject,
		Body:        fmt.Sprintf("Attached are the invoices for %s.", monthName),
		Attachments: attachments,
	}
	// cc_email is a comma-separated list; each address is its own recipient.
	for _, cc := range strings.Split(settings.CCEmail, ",") {
		if cc = strings.TrimSpace(cc); cc != "" {
			msg.CC = append(msg.CC, cc)
		}
	}
	if err := h.Mailer.Send(settings.Account, settings.AppPassword, msg); err != nil {
		log.Printf("send_email: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "send_failed", nil)
		return
	}

	next := req.InvoiceNumber + 2
	setting := models.Setting{Key: "next_invoice_number", Value: strconv.Itoa(next)}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&setting).Error
	if err != nil {
		log.Printf("send_email: persisting next_invoice_number: %v", err)
	}

	httpx.JSON(w, http.StatusOK, sendEmailResponse{
		Status:           "success",
		Message:          fmt.Sprintf("Invoices for %s sent to %s", monthName, settings.ToEmail),
		NewInvoiceNumber: next,
	})
}

// workedEntries loads the stored entries in [start, end] that have hours,
// ready for segmentation.
func (h *EmailHandler) workedEntries(start, end time.Time) ([]billing.TimeEntry, error) {
	var rows []models.TimeEntry
	err := h.DB.Where("date BETWEEN ? AND ? AND hours > 0",
		start.Format(models.DateLayout), end.Format(models.DateLayout)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]billing.TimeEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.Billing()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
