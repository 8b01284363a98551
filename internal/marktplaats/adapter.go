// Package marktplaats provides ad source adapters for the Marktplaats
// classifieds site: an offline stub for development and a live HTTP client.
package marktplaats

import (
	"fmt"
	"strings"
	"time"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

// Adapter modes selectable via configuration.
const (
	ModeStub = "stub"
	ModeAPI  = "api"
)

// Config selects and configures an ad source adapter.
type Config struct {
	Mode              string
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// New builds the ad source for the configured mode. API mode is wrapped in
// an in-process query cache when a cache TTL is configured.
func New(cfg Config) (service.AdSource, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", ModeStub:
		return NewStub(), nil
	case ModeAPI:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: marktplaats.base_url is required in api mode", common.ErrMissingConfig)
		}
		source := service.AdSource(NewClient(cfg.BaseURL, cfg.APIKey, cfg.RequestsPerMinute))
		if cfg.CacheTTL > 0 {
			source = NewCachedSource(source, cfg.CacheTTL)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("%w: unknown marktplaats mode %q", common.ErrInvalidConfig, cfg.Mode)
	}
}
