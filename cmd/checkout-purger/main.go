package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	checkoutpostgres "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/persistence/postgres"
	platformpostgres "github.com/19jem-ila/ecommerce-checkout/internal/platform/postgres"
)

// Removes checkout sessions whose payment window lapsed long ago. Intended to
// run as a cron job; the grace period keeps recently expired sessions around
// so a late gateway callback can still be correlated.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge checkout sessions")
	}

	store := checkoutpostgres.NewSessionStore(db)
	purged, err := store.PurgeExpired(ctx, graceFromEnv())
	if err != nil {
		log.Fatalf("failed to purge checkout sessions: %v", err)
	}
	log.Printf("checkout session purge completed, removed %d", purged)
}

func graceFromEnv() time.Duration {
	const defaultGrace = 24 * time.Hour
	raw := strings.TrimSpace(os.Getenv("SESSION_PURGE_GRACE_HOURS"))
	if raw == "" {
		return defaultGrace
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultGrace
	}
	return time.Duration(hours) * time.Hour
}
