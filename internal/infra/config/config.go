package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the compliance service.
type AppConfig struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	Environment    string

	// CronSpec drives the scheduled compliance pass.
	CronSpec string
	// PassTimeout bounds one pass so a slow store cannot hang the trigger.
	PassTimeout time.Duration
	// GracePeriod is how long after package expiry a customer may still pay
	// before being locked.
	GracePeriod time.Duration
	// UnlockWindow is how recent a completed payment must be to reactivate
	// a locked account.
	UnlockWindow time.Duration

	// Optional Telegram admin alerts. Disabled when token or chat ID is
	// missing.
	TelegramToken   string
	AdminTelegramID int64
}

// Load reads configuration from environment variables and .env file (if
// present). godotenv.Load will not override existing env variables.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpec = os.Getenv("COMPLIANCE_CRON_SPEC")
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 * * * *" // Default: top of every hour
	}

	var err error
	if cfg.PassTimeout, err = durationFromEnv("PASS_TIMEOUT_SECONDS", time.Second, 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.GracePeriod, err = durationFromEnv("GRACE_PERIOD_HOURS", time.Hour, 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.UnlockWindow, err = durationFromEnv("UNLOCK_WINDOW_HOURS", time.Hour, 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

func durationFromEnv(key string, unit, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return time.Duration(n) * unit, nil
}
