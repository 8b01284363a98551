package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/model"
)

// CreateClient persists a new client and fills in its ID and creation time.
func (s *SQLiteStorage) CreateClient(ctx context.Context, client *model.Client) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClient(client); err != nil {
		return err
	}

	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (name, email, whatsapp, created_at)
		VALUES (?, ?, ?, ?)
	`, client.Name, nullString(client.Email), nullString(client.WhatsApp), client.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", mapConstraintError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client id: %w", err)
	}
	client.ID = id

	return nil
}

// GetClient retrieves a client by ID.
func (s *SQLiteStorage) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	return scanClient(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, whatsapp, created_at
		FROM clients
		WHERE id = ?
	`, id))
}

// ListClients retrieves all clients ordered by creation.
func (s *SQLiteStorage) ListClients(ctx context.Context) ([]model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, whatsapp, created_at
		FROM clients
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var clients []model.Client
	for rows.Next() {
		var (
			c               model.Client
			email, whatsapp sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &whatsapp, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.Email = email.String
		c.WhatsApp = whatsapp.String
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func scanClient(row *sql.Row) (*model.Client, error) {
	var (
		c               model.Client
		email, whatsapp sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &email, &whatsapp, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	c.Email = email.String
	c.WhatsApp = whatsapp.String
	return &c, nil
}

// nullString maps the empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt maps a nil pointer to NULL.
func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
