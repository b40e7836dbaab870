package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// UpsertOfficialMatch inserts or refreshes an imported fixture and returns
// its id. Keyed on (home, away, date) so repeated imports update in place.
func (s *Store) UpsertOfficialMatch(ctx context.Context, om *speedway.OfficialMatch) (string, error) {
	id := om.ID
	if id == "" {
		id = uuid.NewString()
	}
	scrapedAt := om.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}
	var out string
	err := s.pool.QueryRow(ctx, "upsert_official_match",
		id, om.HomeTeam, om.AwayTeam, om.Date, om.HomeScore, om.AwayScore,
		om.SourceURL, scrapedAt).Scan(&out)
	if err != nil {
		return "", fmt.Errorf("upsert official match: %w", err)
	}
	om.ID = out
	return out, nil
}

// OfficialMatchByID loads one imported fixture.
func (s *Store) OfficialMatchByID(ctx context.Context, id string) (*speedway.OfficialMatch, error) {
	return s.scanOfficial(s.pool.QueryRow(ctx, "official_match_by_id", id))
}

// FindOfficialMatch locates the official record for a fixture.
func (s *Store) FindOfficialMatch(ctx context.Context, homeTeam, awayTeam string, date time.Time) (*speedway.OfficialMatch, error) {
	return s.scanOfficial(s.pool.QueryRow(ctx, "official_match_lookup", homeTeam, awayTeam, date))
}

// OfficialMatchesOn lists imported fixtures for one date.
func (s *Store) OfficialMatchesOn(ctx context.Context, date time.Time) ([]speedway.OfficialMatch, error) {
	rows, err := s.pool.Query(ctx, "official_matches_on", date)
	if err != nil {
		return nil, fmt.Errorf("official matches on: %w", err)
	}
	defer rows.Close()

	var out []speedway.OfficialMatch
	for rows.Next() {
		om, err := s.scanOfficial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *om)
	}
	return out, rows.Err()
}

// MarkOfficialUsed flags a fixture as consumed by a user match creation.
func (s *Store) MarkOfficialUsed(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, "mark_official_used", id)
	if err != nil {
		return fmt.Errorf("mark official used: %w", err)
	}
	return nil
}

// UpsertOfficialHeat stores one official heat's results document.
func (s *Store) UpsertOfficialHeat(ctx context.Context, officialMatchID string, heatNumber int, results []speedway.Result) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal official heat: %w", err)
	}
	if _, err := s.pool.Exec(ctx, "upsert_official_heat", officialMatchID, heatNumber, raw); err != nil {
		return fmt.Errorf("upsert official heat: %w", err)
	}
	return nil
}

// OfficialHeats returns the stored heat results for a fixture, keyed by heat
// number.
func (s *Store) OfficialHeats(ctx context.Context, officialMatchID string) (map[int][]speedway.Result, error) {
	rows, err := s.pool.Query(ctx, "official_heats_for", officialMatchID)
	if err != nil {
		return nil, fmt.Errorf("official heats: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]speedway.Result)
	for rows.Next() {
		var (
			n   int
			raw []byte
		)
		if err := rows.Scan(&n, &raw); err != nil {
			return nil, fmt.Errorf("scan official heat: %w", err)
		}
		var results []speedway.Result
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, fmt.Errorf("unmarshal official heat %d: %w", n, err)
		}
		out[n] = results
	}
	return out, rows.Err()
}

// StaleUserMatchIDs lists protocols still unvalidated after the cutoff.
// Used by the maintenance catch-up sweep.
func (s *Store) StaleUserMatchIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, "stale_user_matches", cutoff)
	if err != nil {
		return nil, fmt.Errorf("stale user matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PurgeOldOfficial removes unused imported fixtures scraped before the
// cutoff. Returns the number of rows removed.
func (s *Store) PurgeOldOfficial(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "purge_old_official", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old official: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) scanOfficial(row pgx.Row) (*speedway.OfficialMatch, error) {
	var om speedway.OfficialMatch
	err := row.Scan(&om.ID, &om.HomeTeam, &om.AwayTeam, &om.Date,
		&om.HomeScore, &om.AwayScore, &om.SourceURL, &om.Used, &om.ScrapedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan official match: %w", err)
	}
	return &om, nil
}
