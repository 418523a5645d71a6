//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "checkout-api"
	ConsumerName = "storefront-web"

	StateCartSeeded     = "cart seeded for pact-user"
	StateOrderExists    = "order exists for pact-user"
	StateOrderMissing   = "no order with the requested id"
	StateSessionPending = "payment pending session for pact-user"
)

const (
	UserID         = "pact-user"
	AdminUserID    = "pact-admin"
	MissingOrderID = "00000000-0000-0000-0000-000000000404"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleShippingAddress provides stable test data for pact interactions.
func ExampleShippingAddress() map[string]any {
	return map[string]any{
		"street":  "22 Bole Road",
		"city":    "Addis Ababa",
		"state":   "AA",
		"zipCode": "1000",
		"country": "ET",
		"phone":   "+251911000000",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
