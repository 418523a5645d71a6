package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	TelebirrBaseURL string
	TelebirrAPIKey  string

	// ConfirmDelay is how long the confirmation trigger waits before polling
	// the gateway for the transaction outcome.
	ConfirmDelay time.Duration
	// SessionPurgeGrace is how long after the payment window a stale checkout
	// session is kept before the purger removes it.
	SessionPurgeGrace time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. A local .env file is honored when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		TelebirrBaseURL:   strings.TrimSpace(os.Getenv("TELEBIRR_BASE_URL")),
		TelebirrAPIKey:    strings.TrimSpace(os.Getenv("TELEBIRR_API_KEY")),
		ConfirmDelay:      3 * time.Second,
		SessionPurgeGrace: 24 * time.Hour,
	}
	if raw := strings.TrimSpace(os.Getenv("PAYMENT_CONFIRM_DELAY_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("PAYMENT_CONFIRM_DELAY_SECONDS must be a positive integer")
		}
		cfg.ConfirmDelay = time.Duration(seconds) * time.Second
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_PURGE_GRACE_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_PURGE_GRACE_HOURS must be a positive integer")
		}
		cfg.SessionPurgeGrace = time.Duration(hours) * time.Hour
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
