package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// ListTeams returns all teams ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]speedway.Team, error) {
	rows, err := s.pool.Query(ctx, "list_teams")
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []speedway.Team
	for rows.Next() {
		var t speedway.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.City); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// TeamByID returns one team.
func (s *Store) TeamByID(ctx context.Context, id string) (*speedway.Team, error) {
	var t speedway.Team
	err := s.pool.QueryRow(ctx, "team_by_id", id).Scan(&t.ID, &t.Name, &t.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team by id: %w", err)
	}
	return &t, nil
}

// TeamByName returns one team by its exact name.
func (s *Store) TeamByName(ctx context.Context, name string) (*speedway.Team, error) {
	var t speedway.Team
	err := s.pool.QueryRow(ctx, "team_by_name", name).Scan(&t.ID, &t.Name, &t.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team by name: %w", err)
	}
	return &t, nil
}

// UpsertTeam inserts or updates a team by name and returns its id.
func (s *Store) UpsertTeam(ctx context.Context, name, city string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, "upsert_team", uuid.NewString(), name, city).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert team %q: %w", name, err)
	}
	return id, nil
}

// RidersByTeam returns a team's roster ordered by number.
func (s *Store) RidersByTeam(ctx context.Context, teamID string) ([]speedway.Rider, error) {
	rows, err := s.pool.Query(ctx, "riders_by_team", teamID)
	if err != nil {
		return nil, fmt.Errorf("riders by team: %w", err)
	}
	defer rows.Close()

	var riders []speedway.Rider
	for rows.Next() {
		var r speedway.Rider
		if err := rows.Scan(&r.ID, &r.TeamID, &r.Name, &r.Number, &r.IsReserve); err != nil {
			return nil, fmt.Errorf("scan rider: %w", err)
		}
		riders = append(riders, r)
	}
	return riders, rows.Err()
}

// RiderByID returns one rider.
func (s *Store) RiderByID(ctx context.Context, id string) (*speedway.Rider, error) {
	var r speedway.Rider
	err := s.pool.QueryRow(ctx, "rider_by_id", id).Scan(&r.ID, &r.TeamID, &r.Name, &r.Number, &r.IsReserve)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rider by id: %w", err)
	}
	return &r, nil
}

// UpsertRider inserts or updates a rider keyed on (team, number) and returns
// its id.
func (s *Store) UpsertRider(ctx context.Context, r speedway.Rider) (string, error) {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	var out string
	err := s.pool.QueryRow(ctx, "upsert_rider", id, r.TeamID, r.Name, r.Number, r.IsReserve).Scan(&out)
	if err != nil {
		return "", fmt.Errorf("upsert rider %q: %w", r.Name, err)
	}
	return out, nil
}

// ReplaceRoster wipes a team's riders and installs a new roster. Used by
// the seeding command.
func (s *Store) ReplaceRoster(ctx context.Context, teamID string, riders []speedway.Rider) error {
	if _, err := s.pool.Exec(ctx, "delete_team_riders", teamID); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	for _, r := range riders {
		r.TeamID = teamID
		if _, err := s.UpsertRider(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
