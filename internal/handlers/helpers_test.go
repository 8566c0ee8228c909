package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"timebill/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Session{}, &models.Address{},
		&models.TimeEntry{}, &models.Setting{}, &models.EmailSettings{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.Create(&models.User{Username: username, PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedAddresses(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []models.Address{
		{Kind: models.AddressKindCorp, Recipient: "Ada Lovelace", CompanyName: "Analytical Engines LLC",
			Street: "1 Engine Way", City: "London", State: "LN", ZipCode: "10001", PhoneNumber: "555-0100"},
		{Kind: models.AddressKindBillTo, Recipient: "Accounts Payable", CompanyName: "Babbage & Co",
			Street: "2 Difference St", City: "Boston", State: "MA", ZipCode: "02101"},
	}
	for _, row := range rows {
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed address %s: %v", row.Kind, err)
		}
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
}
