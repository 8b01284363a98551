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

const searchRequestColumns = `
	id, client_id, is_photo_based, corner_side, color, fabric, shape,
	dimensions, budget, max_distance_km, include_keywords_csv,
	exclude_keywords_csv, photo_path, text_query, min_price, max_price,
	is_active, created_at`

// CreateSearchRequest persists a new search request and fills in its ID and
// creation time. New requests start active.
func (s *SQLiteStorage) CreateSearchRequest(ctx context.Context, req *model.SearchRequest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSearchRequest(req); err != nil {
		return err
	}

	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO search_requests (
			client_id, is_photo_based, corner_side, color, fabric, shape,
			dimensions, budget, max_distance_km, include_keywords_csv,
			exclude_keywords_csv, photo_path, text_query, min_price, max_price,
			is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.ClientID, req.IsPhotoBased, string(req.CornerSide),
		nullString(req.Color), nullString(req.Fabric), nullString(req.Shape),
		nullString(req.Dimensions), nullInt(req.Budget), nullInt(req.MaxDistanceKM),
		nullString(req.IncludeKeywordsCSV), nullString(req.ExcludeKeywordsCSV),
		nullString(req.PhotoPath), nullString(req.TextQuery),
		nullInt(req.MinPrice), nullInt(req.MaxPrice),
		req.IsActive, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create search request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get search request id: %w", err)
	}
	req.ID = id

	return nil
}

// GetSearchRequest retrieves a search request by ID.
func (s *SQLiteStorage) GetSearchRequest(ctx context.Context, id int64) (*model.SearchRequest, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+searchRequestColumns+` FROM search_requests WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get search request: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get search request: %w", err)
		}
		return nil, common.ErrNotFound
	}

	req, err := scanSearchRequest(rows)
	if err != nil {
		return nil, err
	}
	return req, rows.Err()
}

// ListSearchRequests retrieves all search requests ordered by creation.
func (s *SQLiteStorage) ListSearchRequests(ctx context.Context) ([]model.SearchRequest, error) {
	return s.listSearchRequests(ctx,
		`SELECT `+searchRequestColumns+` FROM search_requests ORDER BY id`)
}

// ListActiveSearchRequests retrieves the search requests the watcher should
// poll on this tick.
func (s *SQLiteStorage) ListActiveSearchRequests(ctx context.Context) ([]model.SearchRequest, error) {
	return s.listSearchRequests(ctx,
		`SELECT `+searchRequestColumns+` FROM search_requests WHERE is_active = 1 ORDER BY id`)
}

func (s *SQLiteStorage) listSearchRequests(ctx context.Context, query string) ([]model.SearchRequest, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list search requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var requests []model.SearchRequest
	for rows.Next() {
		req, err := scanSearchRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}

	return requests, rows.Err()
}

// SetSearchRequestActive toggles whether the watcher polls a request.
func (s *SQLiteStorage) SetSearchRequestActive(ctx context.Context, id int64, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE search_requests SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update search request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func scanSearchRequest(rows *sql.Rows) (*model.SearchRequest, error) {
	var (
		req                                              model.SearchRequest
		cornerSide                                       string
		color, fabric, shape, dimensions                 sql.NullString
		includeCSV, excludeCSV, photoPath, textQuery     sql.NullString
		budget, maxDistance, minPrice, maxPrice          sql.NullInt64
	)

	err := rows.Scan(
		&req.ID, &req.ClientID, &req.IsPhotoBased, &cornerSide,
		&color, &fabric, &shape, &dimensions,
		&budget, &maxDistance, &includeCSV, &excludeCSV,
		&photoPath, &textQuery, &minPrice, &maxPrice,
		&req.IsActive, &req.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan search request: %w", err)
	}

	req.CornerSide = model.CornerSide(cornerSide)
	req.Color = color.String
	req.Fabric = fabric.String
	req.Shape = shape.String
	req.Dimensions = dimensions.String
	req.IncludeKeywordsCSV = includeCSV.String
	req.ExcludeKeywordsCSV = excludeCSV.String
	req.PhotoPath = photoPath.String
	req.TextQuery = textQuery.String
	req.Budget = intPtr(budget)
	req.MaxDistanceKM = intPtr(maxDistance)
	req.MinPrice = intPtr(minPrice)
	req.MaxPrice = intPtr(maxPrice)

	return &req, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
