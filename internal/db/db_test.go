package db

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"timebill/internal/models"
)

func TestSeedAdminUserIdempotent(t *testing.T) {
	d, err := gorm.Open(sqlite.Open("file:seedtest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.User{}); err != nil {
		t.Fatal(err)
	}

	if err := SeedAdminUser(d, "admin", "first-password"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// A second call with a different password must not rehash.
	if err := SeedAdminUser(d, "admin", "second-password"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var count int64
	d.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
	var u models.User
	if err := d.Where("username = ?", "admin").First(&u).Error; err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("first-password")) != nil {
		t.Fatal("original password hash was replaced")
	}
}

func TestIsPostgres(t *testing.T) {
	cases := []struct {
		dsn  string
		want bool
	}{
		{"postgres://user:pw@localhost:5432/timebill", true},
		{"postgresql://user:pw@localhost/timebill", true},
		{"host=localhost user=postgres dbname=timebill", true},
		{"data/timebill.db", false},
		{"file:timebill?mode=memory", false},
	}
	for _, tc := range cases {
		if got := IsPostgres(tc.dsn); got != tc.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tc.dsn, got, tc.want)
		}
	}
}

func TestNormalizeDSNPassesSQLitePathsThrough(t *testing.T) {
	if got := NormalizeDSN("data/timebill.db"); got != "data/timebill.db" {
		t.Fatalf("got %q", got)
	}
}
