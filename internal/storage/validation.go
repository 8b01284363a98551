// Package storage provides the data persistence layer for the application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hoekwacht/hoekwacht/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidID         = errors.New("id must be positive")
	ErrInvalidStatus     = errors.New("invalid result status")
	ErrInvalidCornerSide = errors.New("invalid corner side")
	ErrInvalidClient     = errors.New("invalid client")
	ErrInvalidSearch     = errors.New("invalid search request")
	ErrInvalidAd         = errors.New("invalid ad")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateClient validates a client before persisting it.
func validateClient(client *model.Client) error {
	if client == nil {
		return fmt.Errorf("%w: client", ErrNilParameter)
	}
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidClient)
	}
	return nil
}

// validateSearchRequest validates a search request before persisting it.
func validateSearchRequest(req *model.SearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: search request", ErrNilParameter)
	}
	if err := validateID(req.ClientID, "clientID"); err != nil {
		return err
	}
	if !req.CornerSide.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCornerSide, req.CornerSide)
	}
	return nil
}

// validateScoredAds validates the ads handed to an upsert.
func validateScoredAds(ads []model.ScoredAd) error {
	for i, scored := range ads {
		if strings.TrimSpace(scored.Ad.ID) == "" {
			return fmt.Errorf("%w: ad at index %d has no id", ErrInvalidAd, i)
		}
	}
	return nil
}
