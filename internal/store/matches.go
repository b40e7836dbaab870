package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// CreateMatch persists a new match with its generated heat program. Returns
// ErrDuplicate when the user already has a match for the same fixture and
// date.
func (s *Store) CreateMatch(ctx context.Context, m *speedway.Match) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	heats, err := json.Marshal(m.Heats)
	if err != nil {
		return fmt.Errorf("marshal heats: %w", err)
	}

	_, err = s.pool.Exec(ctx, "insert_match",
		m.ID, m.CreatedBy, nilIfEmpty(m.HomeTeamID), nilIfEmpty(m.AwayTeamID),
		m.HomeTeam, m.AwayTeam, m.Date, m.Venue, m.Status, heats, m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// MatchByID loads one match with its heats.
func (s *Store) MatchByID(ctx context.Context, id string) (*speedway.Match, error) {
	return s.scanMatch(s.pool.QueryRow(ctx, "match_by_id", id))
}

// MatchesByUser lists a user's matches, newest first.
func (s *Store) MatchesByUser(ctx context.Context, userID string) ([]speedway.Match, error) {
	rows, err := s.pool.Query(ctx, "matches_by_user", userID)
	if err != nil {
		return nil, fmt.Errorf("matches by user: %w", err)
	}
	defer rows.Close()

	var matches []speedway.Match
	for rows.Next() {
		m, err := s.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// UpdateMatch writes back mutable match state: status, scores, joker flags
// and the full heats document.
func (s *Store) UpdateMatch(ctx context.Context, m *speedway.Match) error {
	heats, err := json.Marshal(m.Heats)
	if err != nil {
		return fmt.Errorf("marshal heats: %w", err)
	}
	tag, err := s.pool.Exec(ctx, "update_match",
		m.ID, m.Status, m.HomeScore, m.AwayScore,
		m.JokerUsedHome, m.JokerUsedAway, heats, m.OfficialMatchID)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMatch removes a match owned by the given user.
func (s *Store) DeleteMatch(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx, "delete_match", id, userID)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanMatch(row pgx.Row) (*speedway.Match, error) {
	var (
		m        speedway.Match
		homeID   *string
		awayID   *string
		heatsRaw []byte
	)
	err := row.Scan(&m.ID, &m.CreatedBy, &homeID, &awayID, &m.HomeTeam, &m.AwayTeam,
		&m.Date, &m.Venue, &m.Status, &m.HomeScore, &m.AwayScore,
		&m.JokerUsedHome, &m.JokerUsedAway, &heatsRaw, &m.OfficialMatchID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan match: %w", err)
	}
	if homeID != nil {
		m.HomeTeamID = *homeID
	}
	if awayID != nil {
		m.AwayTeamID = *awayID
	}
	if err := json.Unmarshal(heatsRaw, &m.Heats); err != nil {
		return nil, fmt.Errorf("unmarshal heats: %w", err)
	}
	return &m, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
