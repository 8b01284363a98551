// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/hoekwacht/hoekwacht/internal/model"
)

// ResultFilter defines filtering options for match result queries.
type ResultFilter struct {
	MinMatchPercent *float64
	MaxPrice        *int
	MaxDistanceKM   *int
	CornerSide      *model.CornerSide
	Status          *model.ResultStatus
}

// UpsertedResult reports the outcome of upserting one scored ad: the
// persisted row and whether it was newly created by this call.
type UpsertedResult struct {
	Result model.MatchResult
	IsNew  bool
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Client operations
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)

	// Search request operations
	CreateSearchRequest(ctx context.Context, req *model.SearchRequest) error
	GetSearchRequest(ctx context.Context, id int64) (*model.SearchRequest, error)
	ListSearchRequests(ctx context.Context) ([]model.SearchRequest, error)
	ListActiveSearchRequests(ctx context.Context) ([]model.SearchRequest, error)
	SetSearchRequestActive(ctx context.Context, id int64, active bool) error

	// Match result operations. UpsertResults persists all scored ads in a
	// single transaction, keyed on (search_request_id, ad_id).
	UpsertResults(ctx context.Context, req *model.SearchRequest, ads []model.ScoredAd) ([]UpsertedResult, error)
	GetResult(ctx context.Context, id int64) (*model.MatchResult, error)
	ListResults(ctx context.Context, searchRequestID int64, filter ResultFilter) ([]model.MatchResult, error)
	UpdateResultStatus(ctx context.Context, id int64, status model.ResultStatus, notes string) error
	MarkResultForwarded(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AdSource searches an external classifieds provider and returns normalized
// ads. Implementations must enforce their own network timeouts; a failed
// search is a soft failure the caller logs and moves past.
type AdSource interface {
	Search(ctx context.Context, query string) ([]model.Ad, error)
}

// Notifier delivers an alert about one newly discovered match. Best-effort:
// callers log failures and never roll anything back over them.
type Notifier interface {
	Notify(ctx context.Context, client *model.Client, result *model.MatchResult) error
}

// EmailSender delivers a message to an email address.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// MessageSender delivers a message to a WhatsApp handle.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}
