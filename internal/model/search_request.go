package model

import (
	"strings"
	"time"
)

// CornerSide indicates which side the chaise of a corner sofa is on.
type CornerSide string

const (
	// CornerLeft is a left-handed corner sofa.
	CornerLeft CornerSide = "left"
	// CornerRight is a right-handed corner sofa.
	CornerRight CornerSide = "right"
)

// Valid reports whether the corner side is one of the known values.
func (c CornerSide) Valid() bool {
	return c == CornerLeft || c == CornerRight
}

// ParseCornerSide converts user input to a CornerSide.
func ParseCornerSide(s string) (CornerSide, bool) {
	side := CornerSide(strings.ToLower(strings.TrimSpace(s)))
	return side, side.Valid()
}

// SearchRequest is a standing query owned by a client. The watcher polls
// every active request on each tick; the loop itself never mutates one.
type SearchRequest struct {
	CreatedAt          time.Time  `json:"created_at"`
	Color              string     `json:"color,omitempty"`
	Fabric             string     `json:"fabric,omitempty"`
	Shape              string     `json:"shape,omitempty"`
	Dimensions         string     `json:"dimensions,omitempty"`
	IncludeKeywordsCSV string     `json:"include_keywords_csv,omitempty"`
	ExcludeKeywordsCSV string     `json:"exclude_keywords_csv,omitempty"`
	PhotoPath          string     `json:"photo_path,omitempty"`
	TextQuery          string     `json:"text_query,omitempty"`
	CornerSide         CornerSide `json:"corner_side"`
	Budget             *int       `json:"budget,omitempty"`
	MaxDistanceKM      *int       `json:"max_distance_km,omitempty"`
	MinPrice           *int       `json:"min_price,omitempty"`
	MaxPrice           *int       `json:"max_price,omitempty"`
	ID                 int64      `json:"id"`
	ClientID           int64      `json:"client_id"`
	IsPhotoBased       bool       `json:"is_photo_based"`
	IsActive           bool       `json:"is_active"`
}

// IncludeKeywords returns the lowercased include keywords parsed from the
// CSV column. Empty entries are dropped.
func (s *SearchRequest) IncludeKeywords() []string {
	return splitKeywords(s.IncludeKeywordsCSV)
}

// ExcludeKeywords returns the lowercased exclude keywords parsed from the
// CSV column. Empty entries are dropped.
func (s *SearchRequest) ExcludeKeywords() []string {
	return splitKeywords(s.ExcludeKeywordsCSV)
}

// QueryOrDefault resolves the text to search the ad source with, falling
// back to the given default when the request has no explicit query.
func (s *SearchRequest) QueryOrDefault(def string) string {
	if q := strings.TrimSpace(s.TextQuery); q != "" {
		return q
	}
	return def
}

func splitKeywords(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.ToLower(strings.TrimSpace(p)); w != "" {
			keywords = append(keywords, w)
		}
	}
	return keywords
}
