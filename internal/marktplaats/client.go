package marktplaats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/model"
)

const (
	httpTimeout     = 15 * time.Second
	defaultPageSize = 30
	userAgent       = "hoekwacht/1.0"
)

// Client fetches listings from a Marktplaats-compatible JSON search API.
// The HTTP client enforces a bounded timeout so a hanging source can never
// stall a watcher tick indefinitely.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
}

// NewClient constructs a live API client. requestsPerMinute bounds the
// outbound request rate; zero or negative disables limiting.
func NewClient(baseURL, apiKey string, requestsPerMinute int) *Client {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
		rateLimiter: rate.NewLimiter(limit, 5),
		baseURL:     baseURL,
		apiKey:      apiKey,
	}
}

// searchResponse mirrors the API's top-level search payload.
type searchResponse struct {
	Ads []adPayload `json:"ads"`
}

// adPayload mirrors a single listing in the API response.
type adPayload struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	CornerSide string   `json:"corner_side"`
	PhotoURLs  []string `json:"photo_urls"`
	Price      *int     `json:"price"`
	DistanceKM *int     `json:"distance_km"`
}

// Search queries the API and returns normalized ads. Transient failures are
// retried with backoff; anything left after that surfaces as a soft error
// the caller logs and moves past.
func (c *Client) Search(ctx context.Context, query string) ([]model.Ad, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var ads []model.Ad
	err := common.WithRetry(ctx, func() error {
		var searchErr error
		ads, searchErr = c.searchOnce(ctx, query)
		return searchErr
	}, common.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	return ads, nil
}

func (c *Client) searchOnce(ctx context.Context, query string) ([]model.Ad, error) {
	endpoint := c.baseURL + "/api/search"

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", defaultPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &common.RetryableError{Err: err, Retryable: false}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", common.ErrSourceUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.ErrSourceRateLimit
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", common.ErrSourceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("marktplaats api returned %d: %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("decode search response: %w", err),
			Retryable: false,
		}
	}

	ads := make([]model.Ad, 0, len(payload.Ads))
	for _, p := range payload.Ads {
		if p.ID == "" {
			continue
		}
		ad := model.Ad{
			ID:         p.ID,
			Title:      p.Title,
			URL:        p.URL,
			PhotoURLs:  p.PhotoURLs,
			Price:      p.Price,
			DistanceKM: p.DistanceKM,
		}
		if side, ok := model.ParseCornerSide(p.CornerSide); ok {
			ad.CornerSide = side
		} else {
			ad.CornerSide = DetectCornerSide(p.Title)
		}
		ad.CapPhotos()
		ads = append(ads, ad)
	}

	return ads, nil
}
