package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timebill/internal/httpx"
	"timebill/internal/models"
	"timebill/internal/validation"
)

type AddressHandler struct {
	DB *gorm.DB
}

func NewAddressHandler(db *gorm.DB) *AddressHandler {
	return &AddressHandler{DB: db}
}

type addressPayload struct {
	Recipient   string `json:"recipient"`
	CompanyName string `json:"company_name"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	PhoneNumber string `json:"phone_number"`
}

func (p addressPayload) toModel(kind string) models.Address {
	return models.Address{
		Kind:        kind,
		Recipient:   p.Recipient,
		CompanyName: p.CompanyName,
		Street:      p.Street,
		City:        p.City,
		State:       p.State,
		ZipCode:     p.ZipCode,
		PhoneNumber: p.PhoneNumber,
	}
}

func payloadFromModel(a models.Address) addressPayload {
	return addressPayload{
		Recipient:   a.Recipient,
		CompanyName: a.CompanyName,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		PhoneNumber: a.PhoneNumber,
	}
}

// Get returns the stored address for the given kind, or a zero-valued
// payload when nothing has been saved yet.
func (h *AddressHandler) Get(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a models.Address
		err := h.DB.Where("kind = ?", kind).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSON(w, http.StatusOK, addressPayload{})
			return
		}
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, payloadFromModel(a))
	}
}

// Save upserts the single address row for the given kind.
func (h *AddressHandler) Save(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p addressPayload
		if err := httpx.ReadJSON(r, &p); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}

		v := validation.Violations{}
		validation.Required("recipient", p.Recipient, v)
		validation.Required("company_name", p.CompanyName, v)
		validation.Required("street", p.Street, v)
		validation.Required("city", p.City, v)
		validation.Required("state", p.State, v)
		validation.Required("zip_code", p.ZipCode, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}

		a := p.toModel(kind)
		err := h.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}},
			UpdateAll: true,
		}).Create(&a).Error
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
