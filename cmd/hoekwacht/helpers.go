package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hoekwacht/hoekwacht/internal/alert"
	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/config"
	"github.com/hoekwacht/hoekwacht/internal/marktplaats"
	"github.com/hoekwacht/hoekwacht/internal/service"
	"github.com/hoekwacht/hoekwacht/internal/storage"
	"github.com/hoekwacht/hoekwacht/internal/watcher"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/hoekwacht/hoekwacht.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not open the database at %s", dbPath), err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, common.NewUserError("database migration failed", err)
	}

	return store, nil
}

// initAdSource builds the configured ad source adapter.
func initAdSource() (service.AdSource, error) {
	source, err := marktplaats.New(marktplaats.Config{
		Mode:              viper.GetString("marktplaats.mode"),
		BaseURL:           viper.GetString("marktplaats.base_url"),
		APIKey:            viper.GetString("marktplaats.api_key"),
		RequestsPerMinute: viper.GetInt("marktplaats.requests_per_minute"),
		CacheTTL:          viper.GetDuration("marktplaats.cache_ttl"),
	})
	if err != nil {
		return nil, common.NewUserError("invalid marktplaats configuration", err)
	}
	return source, nil
}

// initNotifier builds the alert dispatcher over the delivery channels.
func initNotifier() service.Notifier {
	return alert.NewDispatcher(
		alert.NewLogEmailSender(),
		alert.NewLogWhatsAppSender(),
	)
}

// initWatcher wires storage, ad source and notifier into a watcher.
func initWatcher(store service.Storage) (*watcher.Watcher, error) {
	source, err := initAdSource()
	if err != nil {
		return nil, err
	}

	cfg := watcher.Config{
		PollInterval: time.Duration(viper.GetInt("watcher.poll_seconds")) * time.Second,
		DefaultQuery: viper.GetString("watcher.default_query"),
		DrainTimeout: time.Duration(viper.GetInt("watcher.drain_timeout_seconds")) * time.Second,
	}

	return watcher.New(store, source, initNotifier(), cfg), nil
}
