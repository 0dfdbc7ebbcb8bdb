package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/centime-app/centime/internal/common"
	"github.com/centime-app/centime/internal/config"
	"github.com/centime-app/centime/internal/engine"
	"github.com/centime-app/centime/internal/enrich"
	"github.com/centime-app/centime/internal/feedback"
	"github.com/centime-app/centime/internal/service"
	"github.com/centime-app/centime/internal/storage"
	"github.com/spf13/viper"
)

// initStorage opens and migrates the configured database.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/centime/centime.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds a classification engine from the correction log, learned
// patterns replayed. The returned cleanup releases the enrichment client.
func initEngine(ctx context.Context, store service.Storage) (*engine.Engine, func(), error) {
	patterns := feedback.NewStore()
	if err := patterns.Reload(ctx, store); err != nil {
		return nil, nil, fmt.Errorf("failed to load feedback patterns: %w", err)
	}

	cfg := engine.DefaultConfig()
	cfg.BatchWorkers = viper.GetInt("classify.workers")

	cleanup := func() {}
	enricher, err := enrich.New(enrich.Config{
		URL:               viper.GetString("enrichment.url"),
		APIKey:            viper.GetString("enrichment.api_key"),
		Timeout:           viper.GetDuration("enrichment.timeout"),
		CacheTTL:          viper.GetDuration("enrichment.cache_ttl"),
		RequestsPerMinute: viper.GetInt("enrichment.requests_per_minute"),
	})
	switch {
	case err == nil:
		cfg.Enricher = enricher
		cleanup = enricher.Close
	case errors.Is(err, common.ErrEnrichmentDisabled):
		// Not configured; the engine runs on local signals alone.
	default:
		return nil, nil, err
	}

	return engine.NewWithConfig(patterns, store, cfg), cleanup, nil
}

// parseDateFlag parses a --from/--to style flag value.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return &date, nil
}
