package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

const matchResultColumns = `
	id, search_request_id, ad_id, title, price, distance_km, url,
	photo_urls_json, corner_side, match_percent, status, notes, forwarded,
	created_at`

// UpsertResults creates or updates one MatchResult per scored ad, keyed on
// (search_request_id, ad_id). The whole call commits as a single
// transaction so the is-new flags always describe what was actually
// persisted. Updates refresh the ad snapshot and match percent only; the
// reviewing fields (status, notes, forwarded) and created_at are preserved.
func (s *SQLiteStorage) UpsertResults(ctx context.Context, req *model.SearchRequest, ads []model.ScoredAd) ([]service.UpsertedResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: search request", ErrNilParameter)
	}
	if err := validateID(req.ID, "searchRequestID"); err != nil {
		return nil, err
	}
	if err := validateScoredAds(ads); err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	outcomes := make([]service.UpsertedResult, 0, len(ads))
	for _, scored := range ads {
		outcome, upsertErr := upsertResultTx(ctx, tx, req.ID, scored)
		if upsertErr != nil {
			return nil, upsertErr
		}
		outcomes = append(outcomes, *outcome)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit upsert: %w", err)
	}

	return outcomes, nil
}

func upsertResultTx(ctx context.Context, tx queryable, searchRequestID int64, scored model.ScoredAd) (*service.UpsertedResult, error) {
	ad := scored.Ad

	photosJSON, err := marshalPhotoURLs(ad.PhotoURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode photo urls for ad %s: %w", ad.ID, err)
	}

	result := model.MatchResult{
		SearchRequestID: searchRequestID,
		AdID:            ad.ID,
		Title:           ad.Title,
		URL:             ad.URL,
		CornerSide:      ad.CornerSide,
		PhotoURLs:       ad.PhotoURLs,
		Price:           ad.Price,
		DistanceKM:      ad.DistanceKM,
		MatchPercent:    scored.MatchPercent,
	}

	var (
		existingID int64
		status     string
		notes      sql.NullString
		forwarded  bool
		createdAt  time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, status, notes, forwarded, created_at
		FROM match_results
		WHERE search_request_id = ? AND ad_id = ?
	`, searchRequestID, ad.ID).Scan(&existingID, &status, &notes, &forwarded, &createdAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		result.Status = model.StatusNew
		result.CreatedAt = time.Now().UTC()

		res, insErr := tx.ExecContext(ctx, `
			INSERT INTO match_results (
				search_request_id, ad_id, title, price, distance_km, url,
				photo_urls_json, corner_side, match_percent, status, forwarded,
				created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		`,
			searchRequestID, ad.ID, nullString(ad.Title), nullInt(ad.Price),
			nullInt(ad.DistanceKM), nullString(ad.URL), photosJSON,
			nullString(string(ad.CornerSide)), scored.MatchPercent,
			string(model.StatusNew), result.CreatedAt,
		)
		if insErr != nil {
			// Another process can insert the same (request, ad) pair
			// between our lookup and this insert; the unique index wins.
			return nil, fmt.Errorf("failed to insert match result: %w", mapConstraintError(insErr))
		}

		id, idErr := res.LastInsertId()
		if idErr != nil {
			return nil, fmt.Errorf("failed to get match result id: %w", idErr)
		}
		result.ID = id

		return &service.UpsertedResult{Result: result, IsNew: true}, nil

	case err != nil:
		return nil, fmt.Errorf("failed to look up match result: %w", err)

	default:
		_, updErr := tx.ExecContext(ctx, `
			UPDATE match_results
			SET title = ?, price = ?, distance_km = ?, url = ?,
				photo_urls_json = ?, corner_side = ?, match_percent = ?
			WHERE id = ?
		`,
			nullString(ad.Title), nullInt(ad.Price), nullInt(ad.DistanceKM),
			nullString(ad.URL), photosJSON, nullString(string(ad.CornerSide)),
			scored.MatchPercent, existingID,
		)
		if updErr != nil {
			return nil, fmt.Errorf("failed to update match result: %w", updErr)
		}

		result.ID = existingID
		result.Status = model.ResultStatus(status)
		result.Notes = notes.String
		result.Forwarded = forwarded
		result.CreatedAt = createdAt

		return &service.UpsertedResult{Result: result, IsNew: false}, nil
	}
}

// GetResult retrieves a match result by ID.
func (s *SQLiteStorage) GetResult(ctx context.Context, id int64) (*model.MatchResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+matchResultColumns+` FROM match_results WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get match result: %w", err)
		}
		return nil, common.ErrNotFound
	}

	result, err := scanMatchResult(rows)
	if err != nil {
		return nil, err
	}
	return result, rows.Err()
}

// ListResults retrieves the match results of one search request, newest
// first, applying any filters set on the filter struct.
func (s *SQLiteStorage) ListResults(ctx context.Context, searchRequestID int64, filter service.ResultFilter) ([]model.MatchResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(searchRequestID, "searchRequestID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + matchResultColumns + ` FROM match_results WHERE search_request_id = ?`
	args := []any{searchRequestID}

	if filter.MinMatchPercent != nil {
		query += ` AND match_percent >= ?`
		args = append(args, *filter.MinMatchPercent)
	}
	if filter.MaxPrice != nil {
		query += ` AND price IS NOT NULL AND price <= ?`
		args = append(args, *filter.MaxPrice)
	}
	if filter.MaxDistanceKM != nil {
		query += ` AND distance_km IS NOT NULL AND distance_km <= ?`
		args = append(args, *filter.MaxDistanceKM)
	}
	if filter.CornerSide != nil {
		query += ` AND corner_side = ?`
		args = append(args, string(*filter.CornerSide))
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY match_percent DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.MatchResult
	for rows.Next() {
		result, scanErr := scanMatchResult(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		results = append(results, *result)
	}

	return results, rows.Err()
}

// UpdateResultStatus moves a result through the reviewing workflow. Notes
// are only overwritten when non-empty.
func (s *SQLiteStorage) UpdateResultStatus(ctx context.Context, id int64, status model.ResultStatus, notes string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var (
		res sql.Result
		err error
	)
	if notes != "" {
		res, err = s.db.ExecContext(ctx,
			`UPDATE match_results SET status = ?, notes = ? WHERE id = ?`,
			string(status), notes, id)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE match_results SET status = ? WHERE id = ?`,
			string(status), id)
	}
	if err != nil {
		return fmt.Errorf("failed to update result status: %w", err)
	}

	return requireRowAffected(res)
}

// MarkResultForwarded flags a result as forwarded to the client.
func (s *SQLiteStorage) MarkResultForwarded(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE match_results SET forwarded = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark result forwarded: %w", err)
	}

	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanMatchResult(rows *sql.Rows) (*model.MatchResult, error) {
	var (
		result                  model.MatchResult
		title, url, photosJSON  sql.NullString
		cornerSide, notes       sql.NullString
		status                  string
		price, distance         sql.NullInt64
	)

	err := rows.Scan(
		&result.ID, &result.SearchRequestID, &result.AdID,
		&title, &price, &distance, &url,
		&photosJSON, &cornerSide, &result.MatchPercent,
		&status, &notes, &result.Forwarded, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan match result: %w", err)
	}

	result.Title = title.String
	result.URL = url.String
	result.CornerSide = model.CornerSide(cornerSide.String)
	result.Status = model.ResultStatus(status)
	result.Notes = notes.String
	result.Price = intPtr(price)
	result.DistanceKM = intPtr(distance)
	result.PhotoURLs = unmarshalPhotoURLs(photosJSON.String)

	return &result, nil
}

// Photo URLs live in a single JSON text column; the encoding is a storage
// concern and never leaks past this package.
func marshalPhotoURLs(urls []string) (any, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalPhotoURLs(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}
	return urls
}
