package model

import "time"

// ResultStatus tracks the lifecycle of a match result.
type ResultStatus string

const (
	// StatusNew is the initial status of a freshly discovered match.
	StatusNew ResultStatus = "new"
	// StatusViewed means someone looked at the match.
	StatusViewed ResultStatus = "viewed"
	// StatusCompleted means the match was acted on and is done.
	StatusCompleted ResultStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s ResultStatus) Valid() bool {
	switch s {
	case StatusNew, StatusViewed, StatusCompleted:
		return true
	}
	return false
}

// ParseResultStatus converts user input to a ResultStatus.
func ParseResultStatus(s string) (ResultStatus, bool) {
	status := ResultStatus(s)
	return status, status.Valid()
}

// MatchResult is the persisted outcome of scoring one ad against one search
// request. At most one row exists per (search_request_id, ad_id); the store
// enforces this with an upsert. The ad snapshot and match percent are
// refreshed on every later observation of the same ad; status, notes,
// forwarded and created_at belong to the reviewing workflow and are never
// touched by the watcher.
type MatchResult struct {
	CreatedAt       time.Time    `json:"created_at"`
	AdID            string       `json:"ad_id"`
	Title           string       `json:"title"`
	URL             string       `json:"url"`
	CornerSide      CornerSide   `json:"corner_side,omitempty"`
	Status          ResultStatus `json:"status"`
	Notes           string       `json:"notes,omitempty"`
	PhotoURLs       []string     `json:"photo_urls,omitempty"`
	Price           *int         `json:"price,omitempty"`
	DistanceKM      *int         `json:"distance_km,omitempty"`
	MatchPercent    float64      `json:"match_percent"`
	ID              int64        `json:"id"`
	SearchRequestID int64        `json:"search_request_id"`
	Forwarded       bool         `json:"forwarded"`
}
