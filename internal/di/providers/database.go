package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/storybook/internal/config"
	"github.com/listenupapp/storybook/internal/logger"
	"github.com/listenupapp/storybook/internal/seed"
	"github.com/listenupapp/storybook/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Data.DatabasePath()
	db, err := store.New(dbPath, log.Component("store"))
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SeedResult records what seeding did at startup.
type SeedResult struct {
	Inserted int
	Skipped  bool // Seeding disabled by configuration
}

// ProvideSeed inserts the built-in books into an empty library.
// A failed seed is logged, not fatal: the library starts empty and the next start retries.
func ProvideSeed(i do.Injector) (*SeedResult, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	if !cfg.Seed.Enabled {
		log.Info("Built-in books disabled by configuration")
		return &SeedResult{Skipped: true}, nil
	}

	seeder := seed.New(storeHandle.Store, cfg.Seed.BasePath, log.Component("seed"))
	inserted, err := seeder.EnsureSeeded(context.Background())
	if err != nil {
		log.Error("Failed to seed built-in books", "error", err)
		return &SeedResult{}, nil
	}

	return &SeedResult{Inserted: inserted}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
