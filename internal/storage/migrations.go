package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS clients (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					email TEXT,
					whatsapp TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS search_requests (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					client_id INTEGER NOT NULL,
					is_photo_based INTEGER NOT NULL DEFAULT 1,
					corner_side TEXT NOT NULL,
					color TEXT,
					fabric TEXT,
					shape TEXT,
					dimensions TEXT,
					budget INTEGER,
					max_distance_km INTEGER,
					include_keywords_csv TEXT,
					exclude_keywords_csv TEXT,
					photo_path TEXT,
					text_query TEXT,
					min_price INTEGER,
					max_price INTEGER,
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (client_id) REFERENCES clients(id)
				)`,
				`CREATE INDEX idx_search_requests_client ON search_requests(client_id)`,
				`CREATE INDEX idx_search_requests_active ON search_requests(is_active)`,

				`CREATE TABLE IF NOT EXISTS match_results (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					search_request_id INTEGER NOT NULL,
					ad_id TEXT NOT NULL,
					title TEXT,
					price INTEGER,
					distance_km INTEGER,
					url TEXT,
					photo_urls_json TEXT,
					corner_side TEXT,
					match_percent REAL NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'new',
					notes TEXT,
					forwarded INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (search_request_id) REFERENCES search_requests(id)
				)`,
				`CREATE UNIQUE INDEX idx_match_results_dedup
					ON match_results(search_request_id, ad_id)`,
				`CREATE INDEX idx_match_results_status ON match_results(status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index match results by match percent for filtered listings",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_match_results_percent
					ON match_results(search_request_id, match_percent)
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
