package official

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// ImportResult tracks counts and errors from an import run.
type ImportResult struct {
	MatchesUpserted int
	HeatsUpserted   int
	WithScores      int
	Skipped         int
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *ImportResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the import run.
func (r *ImportResult) Summary() string {
	return fmt.Sprintf("matches=%d with_scores=%d heats=%d skipped=%d errors=%d",
		r.MatchesUpserted, r.WithScores, r.HeatsUpserted, r.Skipped, len(r.Errors))
}

// Importer orchestrates the official data pipeline: fixtures and scores from
// the scraper, heat details from the federation API, everything upserted
// through the store.
type Importer struct {
	scraper *Scraper
	svemo   *SvemoClient
	store   *store.Store
	logger  *slog.Logger
}

// NewImporter wires the import pipeline.
func NewImporter(scraper *Scraper, svemo *SvemoClient, st *store.Store, logger *slog.Logger) *Importer {
	return &Importer{scraper: scraper, svemo: svemo, store: st, logger: logger}
}

// ImportMatches scrapes the fixture list and upserts every row. Fixtures
// with published scores optionally get heat details from the federation API.
func (i *Importer) ImportMatches(ctx context.Context) (*ImportResult, error) {
	result := &ImportResult{}

	matches, err := i.scraper.FetchMatches(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch official matches: %w", err)
	}

	for idx := range matches {
		om := &matches[idx]

		// The scraped page can lazy-load rows from other leagues. Only keep
		// fixtures where at least one side is a team we track.
		if !i.knownTeam(ctx, om.HomeTeam) && !i.knownTeam(ctx, om.AwayTeam) {
			result.Skipped++
			continue
		}

		id, err := i.store.UpsertOfficialMatch(ctx, om)
		if err != nil {
			result.AddErrorf("upsert %s vs %s: %v", om.HomeTeam, om.AwayTeam, err)
			continue
		}
		result.MatchesUpserted++

		if !om.HasScore() {
			continue
		}
		result.WithScores++

		if i.svemo == nil || !i.svemo.Enabled() {
			continue
		}
		heats, err := i.svemo.FetchHeats(ctx, om.HomeTeam, om.AwayTeam, om.Date)
		if err != nil {
			result.AddErrorf("heats for %s vs %s: %v", om.HomeTeam, om.AwayTeam, err)
			continue
		}
		for n, results := range heats {
			if err := i.store.UpsertOfficialHeat(ctx, id, n, results); err != nil {
				result.AddErrorf("heat %d for %s vs %s: %v", n, om.HomeTeam, om.AwayTeam, err)
				continue
			}
			result.HeatsUpserted++
		}
	}

	i.logger.Info("official import complete", "summary", result.Summary())
	return result, nil
}

func (i *Importer) knownTeam(ctx context.Context, name string) bool {
	_, err := i.store.TeamByName(ctx, name)
	return err == nil
}
