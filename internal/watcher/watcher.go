// Package watcher implements the background polling loop that matches
// active search requests against the ad source and alerts clients about
// newly discovered results.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/match"
	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

// Config holds configuration options for the watcher.
type Config struct {
	// PollInterval is the time between ticks.
	PollInterval time.Duration
	// DefaultQuery is used for requests without an explicit text query.
	DefaultQuery string
	// DrainTimeout bounds how long Stop waits for a running tick.
	DrainTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: 15 * time.Second,
		DefaultQuery: "hoekbank",
		DrainTimeout: 30 * time.Second,
	}
}

// Watcher polls active search requests on a fixed interval. Each tick loads
// the active requests, searches the ad source, scores the ads, upserts the
// survivors, and notifies once per newly created result. Ticks never
// overlap: when one runs long, the next is delayed until it finishes.
type Watcher struct {
	storage  service.Storage
	source   service.AdSource
	notifier service.Notifier
	cron     *cron.Cron
	cfg      Config
}

// New creates a watcher with the given dependencies.
func New(storage service.Storage, source service.AdSource, notifier service.Notifier, cfg Config) *Watcher {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	// The scheduler has second granularity; anything shorter would degrade
	// into a zero-delay busy loop.
	if cfg.PollInterval < time.Second {
		cfg.PollInterval = time.Second
	}
	if cfg.DefaultQuery == "" {
		cfg.DefaultQuery = def.DefaultQuery
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = def.DrainTimeout
	}

	return &Watcher{
		storage:  storage,
		source:   source,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Start registers the recurring tick and starts the scheduler. A failing
// tick is recovered and logged at the tick boundary; the loop only ever
// ends through Stop.
func (w *Watcher) Start(ctx context.Context) error {
	if w.cron != nil {
		return errors.New("watcher already started")
	}

	logger := &cronLogger{}
	w.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.DelayIfStillRunning(logger),
		),
	)

	w.cron.Schedule(cron.Every(w.cfg.PollInterval), cron.FuncJob(func() {
		if err := w.PollOnce(ctx); err != nil {
			common.LogError(err, "Watcher tick failed", nil)
		}
	}))

	w.cron.Start()
	slog.Info("Watcher started", "interval", w.cfg.PollInterval)

	return nil
}

// Stop shuts the scheduler down, waiting up to the drain timeout for a
// running tick to finish before giving up on it.
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}

	drained := w.cron.Stop()
	select {
	case <-drained.Done():
		slog.Info("Watcher stopped")
	case <-time.After(w.cfg.DrainTimeout):
		slog.Warn("Watcher stop timed out waiting for running tick",
			"drain_timeout", w.cfg.DrainTimeout)
	}
	w.cron = nil
}

// PollOnce runs a single full tick: every active search request is polled,
// and a failure for one request never aborts the others.
func (w *Watcher) PollOnce(ctx context.Context) error {
	requests, err := w.storage.ListActiveSearchRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active search requests: %w", err)
	}

	if len(requests) == 0 {
		slog.Debug("No active search requests")
		return nil
	}

	var newResults int
	for i := range requests {
		req := &requests[i]
		created, pollErr := w.pollRequest(ctx, req, true)
		if pollErr != nil {
			common.LogError(pollErr, "Polling search request failed",
				common.Fields{"search_request_id": req.ID})
			continue
		}
		newResults += created
	}

	common.LogInfo("Tick complete", common.Fields{
		"requests":    len(requests),
		"new_results": newResults,
	})

	return nil
}

// PollRequest polls a single request exactly as a tick would, alerts
// included.
func (w *Watcher) PollRequest(ctx context.Context, req *model.SearchRequest) (int, error) {
	return w.pollRequest(ctx, req, true)
}

// CatchUp polls a single request immediately, without notifying. Used right
// after a request is created so its first results are visible without
// waiting for a tick (and without alerting about ads that existed all
// along).
func (w *Watcher) CatchUp(ctx context.Context, req *model.SearchRequest) (int, error) {
	return w.pollRequest(ctx, req, false)
}

// pollRequest searches, scores, upserts, and (optionally) notifies for one
// search request. Returns how many results were newly created.
func (w *Watcher) pollRequest(ctx context.Context, req *model.SearchRequest, notify bool) (int, error) {
	query := req.QueryOrDefault(w.cfg.DefaultQuery)

	ads, err := w.source.Search(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("ad source search %q: %w", query, err)
	}

	scored := w.scoreAds(req, ads)
	if len(scored) == 0 {
		return 0, nil
	}

	outcomes, err := w.storage.UpsertResults(ctx, req, scored)
	if err != nil {
		return 0, fmt.Errorf("upsert results: %w", err)
	}

	var created int
	for i := range outcomes {
		if !outcomes[i].IsNew {
			continue
		}
		created++
		if notify {
			w.notifyNewResult(ctx, req, &outcomes[i].Result)
		}
	}

	return created, nil
}

// scoreAds computes match percentages and drops ads that score zero. A
// zero-score ad is not a match and must never reach the store.
func (w *Watcher) scoreAds(req *model.SearchRequest, ads []model.Ad) []model.ScoredAd {
	scored := make([]model.ScoredAd, 0, len(ads))
	for i := range ads {
		percent := match.Score(req, &ads[i])
		if percent <= 0 {
			continue
		}
		scored = append(scored, model.ScoredAd{
			Ad:           ads[i],
			MatchPercent: percent,
		})
	}
	return scored
}

// notifyNewResult alerts the owning client about one newly created result.
// Notification failures are logged and never propagate: the result is
// already committed.
func (w *Watcher) notifyNewResult(ctx context.Context, req *model.SearchRequest, result *model.MatchResult) {
	client, err := w.storage.GetClient(ctx, req.ClientID)
	if err != nil {
		common.LogError(err, "Failed to load client for notification", common.Fields{
			"client_id": req.ClientID,
			"result_id": result.ID,
		})
		return
	}

	if err := w.notifier.Notify(ctx, client, result); err != nil {
		common.LogError(err, "Notification failed", common.Fields{
			"client_id": client.ID,
			"result_id": result.ID,
		})
	}
}

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct{}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append(keysAndValues, "error", err)
	slog.Error(msg, args...)
}
