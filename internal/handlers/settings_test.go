package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func getSetting(t *testing.T, h *SettingsHandler, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/settings/"+key, nil)
	req.SetPathValue("key", key)
	w := httptest.NewRecorder()
	h.Get(w, req)
	return w
}

func TestSettingSaveAndGet(t *testing.T) {
	h := NewSettingsHandler(setupDB(t))

	value := "37"
	w := postJSON(t, h.Save, "/api/settings", settingPayload{Key: "next_invoice_number", Value: &value})
	if w.Code != http.StatusOK {
		t.Fatalf("save: status %d body %s", w.Code, w.Body.String())
	}

	rec := getSetting(t, h, "next_invoice_number")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var got settingPayload
	decodeBody(t, rec, &got)
	if got.Value == nil || *got.Value != "37" {
		t.Fatalf("value %v", got.Value)
	}

	// Overwrite.
	value = "39"
	postJSON(t, h.Save, "/api/settings", settingPayload{Key: "next_invoice_number", Value: &value})
	rec = getSetting(t, h, "next_invoice_number")
	decodeBody(t, rec, &got)
	if got.Value == nil || *got.Value != "39" {
		t.Fatalf("value after overwrite %v", got.Value)
	}
}

func TestSettingGetUnsetReturnsNull(t *testing.T) {
	h := NewSettingsHandler(setupDB(t))

	rec := getSetting(t, h, "theme")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got settingPayload
	decodeBody(t, rec, &got)
	if got.Key != "theme" || got.Value != nil {
		t.Fatalf("expected null value for unset key, got %+v", got)
	}
}

func TestSettingSaveValidation(t *testing.T) {
	h := NewSettingsHandler(setupDB(t))

	value := "x"
	if w := postJSON(t, h.Save, "/api/settings", settingPayload{Key: "", Value: &value}); w.Code != http.StatusBadRequest {
		t.Errorf("empty key: status %d, want 400", w.Code)
	}
	if w := postJSON(t, h.Save, "/api/settings", settingPayload{Key: "k"}); w.Code != http.StatusBadRequest {
		t.Errorf("nil value: status %d, want 400", w.Code)
	}
}
