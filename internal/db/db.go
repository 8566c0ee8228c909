package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the migrate database drivers and file source.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timebill/internal/config"
	"timebill/internal/models"
)

// ConnectAndMigrate opens the configured database, applies migrations and
// seeds the admin user when configured. The DSN selects the driver: a
// postgres URL or key=value list uses postgres (with connect retries), any
// other value is a sqlite file path whose parent directory is created.
func ConnectAndMigrate(cfg config.Config) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DatabaseDSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if IsPostgres(dsn) {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Println("retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
	} else {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, fmt.Errorf("create database directory: %w", mkErr)
			}
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Println("[DB] Using DSN:", maskDSN(dsn))

	// MIGRATIONS=true runs SQL migrations via golang-migrate; otherwise
	// AutoMigrate keeps the dev loop simple.
	if config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		modelsToMigrate := []interface{}{
			&models.User{}, &models.Session{}, &models.Address{},
			&models.TimeEntry{}, &models.Setting{}, &models.EmailSettings{},
		}
		for _, m := range modelsToMigrate {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "sessions", "addresses", "time_entries"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if err := SeedAdminUser(db, cfg.AdminUser, cfg.AdminPassword); err != nil {
		return nil, err
	}
	return db, nil
}

// SeedAdminUser stores the configured admin credentials on first run. An
// existing user is never rehashed; to change a password, delete the row and
// restart with the new ADMIN_PASSWORD.
func SeedAdminUser(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup admin user: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	log.Printf("[DB] seeding user %q", username)
	return db.Create(&models.User{Username: username, PasswordHash: string(hash)}).Error
}

func maskDSN(dsn string) string {
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)(\S+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	return masked
}

// runSQLMigrations executes migrations in ./migrations via golang-migrate.
func runSQLMigrations(dsn string) error {
	target := dsn
	if !IsPostgres(dsn) {
		target = "sqlite3://" + dsn
	}
	m, err := migrate.New("file://migrations", target)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
