// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled work is driven from Go since the API is already a
// persistent, long-running service (required for LISTEN/NOTIFY).
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jakkmalm/speedway-protocol/internal/official"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval time.Duration // Purge old unused official fixtures
	ImportInterval  time.Duration // Scheduled official result import
	CatchUpInterval time.Duration // Sweep for missed NOTIFY events
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: 6 * time.Hour,
		ImportInterval:  30 * time.Minute,
		CatchUpInterval: 15 * time.Minute,
	}
}

// Deps are the collaborators the tasks run against. Importer may be nil when
// scraping is disabled.
type Deps struct {
	Store     *store.Store
	Importer  *official.Importer
	Validator *official.Validator
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, deps Deps, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"cleanup", cfg.CleanupInterval,
		"import", cfg.ImportInterval,
		"catchup", cfg.CatchUpInterval)

	tickers := make([]*time.Ticker, 0, 3)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Cleanup: drop scraped fixtures that were never matched to a protocol
	if cfg.CleanupInterval > 0 {
		t := time.NewTicker(cfg.CleanupInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { cleanup(ctx, deps.Store, logger) })
	}

	// Import: periodic official fixture and score refresh
	if cfg.ImportInterval > 0 && deps.Importer != nil {
		t := time.NewTicker(cfg.ImportInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { importOfficial(ctx, deps.Importer, logger) })
	}

	// Catch-up: revalidate protocols whose NOTIFY event was missed
	if cfg.CatchUpInterval > 0 {
		t := time.NewTicker(cfg.CatchUpInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { catchUpSweep(ctx, deps.Store, deps.Validator, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// cleanup purges official fixtures scraped more than 30 days ago that were
// never used for validation and carry no heat data.
func cleanup(ctx context.Context, st *store.Store, logger *slog.Logger) {
	cutoff := time.Now().AddDate(0, 0, -30)
	n, err := st.PurgeOldOfficial(ctx, cutoff)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old official fixtures", "error", err)
	} else if n > 0 {
		logger.Info("Cleanup: purged old official fixtures", "count", n)
	}
}

// importOfficial refreshes fixtures and scores from the official sources.
func importOfficial(ctx context.Context, importer *official.Importer, logger *slog.Logger) {
	result, err := importer.ImportMatches(ctx)
	if err != nil {
		logger.Warn("Scheduled import failed", "error", err)
		return
	}
	for _, msg := range result.Errors {
		logger.Warn("Scheduled import error", "detail", msg)
	}
}

// catchUpSweep revalidates protocols that have waited on an official result
// for over an hour, covering NOTIFY events missed during listener downtime.
func catchUpSweep(ctx context.Context, st *store.Store, validator *official.Validator, logger *slog.Logger) {
	cutoff := time.Now().Add(-1 * time.Hour)
	ids, err := st.StaleUserMatchIDs(ctx, cutoff)
	if err != nil {
		logger.Warn("Catch-up sweep: failed to list stale protocols", "error", err)
		return
	}

	updated := 0
	for _, id := range ids {
		ok, err := validator.RevalidateUserMatch(ctx, id)
		if err != nil {
			logger.Warn("Catch-up sweep: revalidate failed", "user_match_id", id, "error", err)
			continue
		}
		if ok {
			updated++
		}
	}
	if updated > 0 {
		logger.Info("Catch-up sweep: revalidated protocols", "count", updated)
	}
}
