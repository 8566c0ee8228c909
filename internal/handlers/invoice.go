package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"timebill/internal/billing"
	"timebill/internal/httpx"
	"timebill/internal/models"
	"timebill/internal/pdf"
	"timebill/internal/validation"
)

type InvoiceHandler struct {
	DB           *gorm.DB
	NetTermsDays int
}

func NewInvoiceHandler(db *gorm.DB, netTermsDays int) *InvoiceHandler {
	return &InvoiceHandler{DB: db, NetTermsDays: netTermsDays}
}

type generateRequest struct {
	InvoiceNumber int                `json:"invoice_number"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	Entries       []models.TimeEntry `json:"entries"`
}

// Generate: POST /api/generate renders the invoice PDF for the submitted
// entries and streams it back as a download.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.PositiveInt("invoice_number", req.InvoiceNumber, v)
	validation.Required("start_date", req.StartDate, v)
	validation.Date("start_date", req.StartDate, v)
	validation.Date("end_date", req.EndDate, v)
	if len(req.Entries) == 0 {
		v["entries"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	entries := make([]billing.TimeEntry, 0, len(req.Entries))
	latest := ""
	for _, e := range req.Entries {
		be, err := e.Billing()
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
				validation.Violations{"entries": "must_use_yyyy_mm_dd_dates"})
			return
		}
		entries = append(entries, be)
		if e.Date > latest {
			latest = e.Date
		}
	}

	start, _ := time.Parse(models.DateLayout, req.StartDate)
	endStr := req.EndDate
	if endStr == "" {
		endStr = latest
	}
	end, _ := time.Parse(models.DateLayout, endStr)

	data, filename, err := h.buildPDF(req.InvoiceNumber, start, end, entries)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	writePDF(w, data, filename)
}

// buildPDF segments the entries and renders the final document. The invoice
// is dated one day after the billing period ends.
func (h *InvoiceHandler) buildPDF(number int, start, end time.Time, entries []billing.TimeEntry) ([]byte, string, error) {
	corp, billTo, shipTo, err := h.loadAddresses()
	if err != nil {
		return nil, "", err
	}

	items, err := billing.Segment(start, end, entries)
	if err != nil {
		return nil, "", err
	}

	invoiceDate := end.AddDate(0, 0, 1)
	inv := billing.Invoice{
		Corp:         corp,
		BillTo:       billTo,
		ShipTo:       shipTo,
		Number:       number,
		Date:         invoiceDate,
		Items:        items,
		NetTermsDays: h.NetTermsDays,
	}
	data, err := billing.Render(pdf.New(), inv)
	if err != nil {
		return nil, "", err
	}
	return data, billing.Filename(corp, number, invoiceDate), nil
}

// loadAddresses fetches the biller and bill-to profiles, both required, and
// the ship-to profile when one has been saved.
func (h *InvoiceHandler) loadAddresses() (corp, billTo billing.Address, shipTo *billing.Address, err error) {
	// One dest per query: gorm folds a populated primary key on the dest
	// into the next query's conditions.
	var corpRow models.Address
	if err := h.DB.Where("kind = ?", models.AddressKindCorp).First(&corpRow).Error; err != nil {
		return corp, billTo, nil, fmt.Errorf("%w: corporation profile not saved", billing.ErrMissingAddress)
	}

	var billRow models.Address
	if err := h.DB.Where("kind = ?", models.AddressKindBillTo).First(&billRow).Error; err != nil {
		return corp, billTo, nil, fmt.Errorf("%w: bill-to profile not saved", billing.ErrMissingAddress)
	}

	var shipRow models.Address
	if err := h.DB.Where("kind = ?", models.AddressKindShipTo).First(&shipRow).Error; err == nil {
		a := shipRow.Billing()
		shipTo = &a
	}
	return corpRow.Billing(), billRow.Billing(), shipTo, nil
}

func writeBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrMissingAddress):
		httpx.JSONError(w, http.StatusBadRequest, "missing_address", err.Error())
	case errors.Is(err, billing.ErrInvalidRange):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_range", err.Error())
	case errors.Is(err, billing.ErrInvalidEntry):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_entry", err.Error())
	case errors.Is(err, billing.ErrEmptyLineItems):
		httpx.JSONError(w, http.StatusBadRequest, "no_line_items", err.Error())
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "generate_failed", nil)
	}
}

func writePDF(w http.ResponseWriter, data []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
