package handlers

import (
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timebill/internal/httpx"
	"timebill/internal/models"
	"timebill/internal/validation"
)

type TimeEntryHandler struct {
	DB          *gorm.DB
	DefaultRate float64
}

func NewTimeEntryHandler(db *gorm.DB, defaultRate float64) *TimeEntryHandler {
	return &TimeEntryHandler{DB: db, DefaultRate: defaultRate}
}

// List: GET /api/time_entries?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	v := validation.Violations{}
	validation.Required("start_date", start, v)
	validation.Required("end_date", end, v)
	validation.Date("start_date", start, v)
	validation.Date("end_date", end, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	entries := []models.TimeEntry{}
	err := h.DB.Where("date BETWEEN ? AND ?", start, end).
		Order("date").
		Find(&entries).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

// Save: POST /api/time_entries upserts the entry for its date. A rate that
// was never entered by hand falls back to the configured default.
func (h *TimeEntryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var e models.TimeEntry
	if err := httpx.ReadJSON(r, &e); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("date", e.Date, v)
	validation.Date("date", e.Date, v)
	validation.NonNegativeFloat("hours", e.Hours, v)
	validation.NonNegativeFloat("hourly_rate", e.HourlyRate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	if !e.RateInputted && e.HourlyRate == 0 {
		e.HourlyRate = h.DefaultRate
	}

	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(&e).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}
