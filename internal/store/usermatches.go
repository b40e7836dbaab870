package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// CreateUserMatch records a confirmed protocol. Returns ErrDuplicate when the
// user has already confirmed this match.
func (s *Store) CreateUserMatch(ctx context.Context, um *speedway.UserMatch) error {
	if um.ID == "" {
		um.ID = uuid.NewString()
	}
	results, err := json.Marshal(um.UserResults)
	if err != nil {
		return fmt.Errorf("marshal user results: %w", err)
	}
	discrepancies, err := json.Marshal(um.Discrepancies)
	if err != nil {
		return fmt.Errorf("marshal discrepancies: %w", err)
	}

	_, err = s.pool.Exec(ctx, "insert_user_match",
		um.ID, um.UserID, um.MatchID, um.Status, results, discrepancies, um.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user match: %w", err)
	}
	return nil
}

// UserMatchByID loads one protocol record.
func (s *Store) UserMatchByID(ctx context.Context, id string) (*speedway.UserMatch, error) {
	return s.scanUserMatch(s.pool.QueryRow(ctx, "user_match_by_id", id))
}

// UserMatchForMatch loads the user's protocol for a given match, if any.
func (s *Store) UserMatchForMatch(ctx context.Context, matchID, userID string) (*speedway.UserMatch, error) {
	return s.scanUserMatch(s.pool.QueryRow(ctx, "user_match_for_match", matchID, userID))
}

// UserMatchesByUser lists a user's protocols, newest first.
func (s *Store) UserMatchesByUser(ctx context.Context, userID string) ([]speedway.UserMatch, error) {
	return s.queryUserMatches(ctx, "user_matches_by_user", userID)
}

// PendingUserMatches lists protocols still awaiting an official comparison.
func (s *Store) PendingUserMatches(ctx context.Context) ([]speedway.UserMatch, error) {
	return s.queryUserMatches(ctx, "user_matches_pending")
}

// UpdateUserMatch writes back comparison state: status, official scores,
// discrepancies and resolution time.
func (s *Store) UpdateUserMatch(ctx context.Context, um *speedway.UserMatch) error {
	results, err := json.Marshal(um.UserResults)
	if err != nil {
		return fmt.Errorf("marshal user results: %w", err)
	}
	discrepancies, err := json.Marshal(um.Discrepancies)
	if err != nil {
		return fmt.Errorf("marshal discrepancies: %w", err)
	}

	var officialHome, officialAway *int
	if um.OfficialResults != nil {
		officialHome = &um.OfficialResults.HomeScore
		officialAway = &um.OfficialResults.AwayScore
	}

	tag, err := s.pool.Exec(ctx, "update_user_match",
		um.ID, um.Status, results, officialHome, officialAway, discrepancies, um.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update user match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryUserMatches(ctx context.Context, stmt string, args ...any) ([]speedway.UserMatch, error) {
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stmt, err)
	}
	defer rows.Close()

	var out []speedway.UserMatch
	for rows.Next() {
		um, err := s.scanUserMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *um)
	}
	return out, rows.Err()
}

func (s *Store) scanUserMatch(row pgx.Row) (*speedway.UserMatch, error) {
	var (
		um           speedway.UserMatch
		resultsRaw   []byte
		discRaw      []byte
		officialHome *int
		officialAway *int
	)
	err := row.Scan(&um.ID, &um.UserID, &um.MatchID, &um.Status, &resultsRaw,
		&officialHome, &officialAway, &discRaw, &um.CompletedAt, &um.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user match: %w", err)
	}
	if err := json.Unmarshal(resultsRaw, &um.UserResults); err != nil {
		return nil, fmt.Errorf("unmarshal user results: %w", err)
	}
	if err := json.Unmarshal(discRaw, &um.Discrepancies); err != nil {
		return nil, fmt.Errorf("unmarshal discrepancies: %w", err)
	}
	if officialHome != nil && officialAway != nil {
		um.OfficialResults = &speedway.ScorePair{HomeScore: *officialHome, AwayScore: *officialAway}
	}
	return &um, nil
}
