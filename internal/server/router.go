package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"timebill/internal/auth"
	"timebill/internal/config"
	"timebill/internal/handlers"
	"timebill/internal/httpx"
	"timebill/internal/models"
)

// New builds the full HTTP handler: API routes behind token auth, health
// probes, and the recovery/logging middleware around everything.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	return NewWithMailer(db, cfg, handlers.SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort})
}

// NewWithMailer is New with the mail transport injectable for tests.
func NewWithMailer(db *gorm.DB, cfg config.Config, mailer handlers.Mailer) http.Handler {
	sessions := auth.NewSessions(db, time.Duration(cfg.SessionTTLDays)*24*time.Hour)

	authH := handlers.NewAuthHandler(db, sessions)
	addressH := handlers.NewAddressHandler(db)
	entryH := handlers.NewTimeEntryHandler(db, cfg.DefaultHourlyRate)
	invoiceH := handlers.NewInvoiceHandler(db, cfg.NetTermsDays)
	settingsH := handlers.NewSettingsHandler(db)
	emailH := handlers.NewEmailHandler(db, mailer, cfg.NetTermsDays)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /healthz", handleReady(db))

	mux.HandleFunc("POST /api/login", authH.Login)
	mux.HandleFunc("POST /api/logout", authH.Logout)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/corporation", addressH.Get(models.AddressKindCorp))
	api.HandleFunc("POST /api/corporation", addressH.Save(models.AddressKindCorp))
	api.HandleFunc("GET /api/bill_to", addressH.Get(models.AddressKindBillTo))
	api.HandleFunc("POST /api/bill_to", addressH.Save(models.AddressKindBillTo))
	api.HandleFunc("GET /api/ship_to", addressH.Get(models.AddressKindShipTo))
	api.HandleFunc("POST /api/ship_to", addressH.Save(models.AddressKindShipTo))

	api.HandleFunc("GET /api/time_entries", entryH.List)
	api.HandleFunc("POST /api/time_entries", entryH.Save)

	api.HandleFunc("POST /api/generate", invoiceH.Generate)

	api.HandleFunc("GET /api/settings/{key}", settingsH.Get)
	api.HandleFunc("POST /api/settings", settingsH.Save)

	api.HandleFunc("POST /api/email_settings/get", emailH.GetSettings)
	api.HandleFunc("POST /api/email_settings/set", emailH.SetSettings)
	api.HandleFunc("POST /api/send_email", emailH.SendMonthly)

	mux.Handle("/api/", auth.RequireAuth(api))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("timebill api\n"))
	})

	return withRecover(withLogging(sessions.Middleware(mux)))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady also checks the database connection.
func handleReady(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unreachable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic: %v", err)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
