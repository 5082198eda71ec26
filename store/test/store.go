package test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/hrygo/acutie/internal/profile"
	"github.com/hrygo/acutie/store"
	"github.com/hrygo/acutie/store/db"
)

func getDriverFromEnv() string {
	if d := os.Getenv("DRIVER"); d != "" {
		return d
	}
	return "sqlite"
}

// NewTestingStore opens a migrated store for the DRIVER environment
// variable (sqlite by default, backed by a private in-memory database).
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	s, _ := NewTestingStoreWithDriver(ctx, t)
	return s
}

// NewTestingStoreWithDriver is NewTestingStore that also returns the driver,
// for seeding rows the store API would stamp.
func NewTestingStoreWithDriver(ctx context.Context, t *testing.T) (*store.Store, store.Driver) {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Driver: getDriverFromEnv()}
	switch p.Driver {
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	default:
		p.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	s := store.New(driver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, driver
}
