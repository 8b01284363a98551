package model

// MaxAdPhotos caps how many photo URLs an adapter may attach to one ad.
const MaxAdPhotos = 8

// Ad is a normalized listing produced by an ad source adapter. Ads are
// transient: every adapter call produces them fresh, and only the snapshot
// captured in a MatchResult is persisted.
type Ad struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	CornerSide CornerSide `json:"corner_side,omitempty"`
	PhotoURLs  []string   `json:"photo_urls,omitempty"`
	Price      *int       `json:"price,omitempty"`
	DistanceKM *int       `json:"distance_km,omitempty"`
}

// CapPhotos trims the photo list to MaxAdPhotos, preserving order.
func (a *Ad) CapPhotos() {
	if len(a.PhotoURLs) > MaxAdPhotos {
		a.PhotoURLs = a.PhotoURLs[:MaxAdPhotos]
	}
}

// ScoredAd pairs an ad with its computed match percentage for one request.
type ScoredAd struct {
	Ad           Ad
	MatchPercent float64
}
