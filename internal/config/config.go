package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port              string
	Env               string
	DatabaseDSN       string
	AdminUser         string
	AdminPassword     string
	SessionTTLDays    int
	NetTermsDays      int
	DefaultHourlyRate float64
	SMTPHost          string
	SMTPPort          string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "data/timebill.db")
	cfg.AdminUser = getEnv("ADMIN_USER", "")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.SessionTTLDays = ParseInt("SESSION_TTL_DAYS", 30)
	cfg.NetTermsDays = ParseInt("NET_TERMS_DAYS", 15)
	cfg.DefaultHourlyRate = ParseFloat("DEFAULT_HOURLY_RATE", 0)
	cfg.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = getEnv("SMTP_PORT", "587")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseInt reads an env var as int with default.
func ParseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

// ParseFloat reads an env var as float64 with default.
func ParseFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("invalid number for %s: %s", key, v)
			return def
		}
		return f
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
