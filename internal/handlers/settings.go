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

type SettingsHandler struct {
	DB *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{DB: db}
}

type settingPayload struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// Get: GET /api/settings/{key}. An unset key returns a null value rather
// than 404 so the frontend can treat it as "use your default".
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var s models.Setting
	err := h.DB.Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSON(w, http.StatusOK, settingPayload{Key: key})
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settingPayload{Key: s.Key, Value: &s.Value})
}

// Save: POST /api/settings upserts a key/value pair.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var p settingPayload
	if err := httpx.ReadJSON(r, &p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("key", p.Key, v)
	if p.Value == nil {
		v["value"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	s := models.Setting{Key: p.Key, Value: *p.Value}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&s).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "database_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}
