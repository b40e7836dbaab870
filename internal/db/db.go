// Package db provides a pgxpool-based connection pool with prepared statement
// registration, health checking, and migration support.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jakkmalm/speedway-protocol/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and admin
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users
		"user_by_username": "SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1",
		"user_by_id":       "SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1",
		"insert_user":      "INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",

		// Teams and riders
		"list_teams":         "SELECT id, name, city FROM teams ORDER BY name",
		"team_by_id":         "SELECT id, name, city FROM teams WHERE id = $1",
		"team_by_name":       "SELECT id, name, city FROM teams WHERE name = $1",
		"upsert_team":        "INSERT INTO teams (id, name, city) VALUES ($1, $2, $3) ON CONFLICT (name) DO UPDATE SET city = EXCLUDED.city RETURNING id",
		"riders_by_team":     "SELECT id, team_id, name, number, is_reserve FROM riders WHERE team_id = $1 ORDER BY number",
		"rider_by_id":        "SELECT id, team_id, name, number, is_reserve FROM riders WHERE id = $1",
		"upsert_rider":       "INSERT INTO riders (id, team_id, name, number, is_reserve) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (team_id, number) DO UPDATE SET name = EXCLUDED.name, is_reserve = EXCLUDED.is_reserve RETURNING id",
		"delete_team_riders": "DELETE FROM riders WHERE team_id = $1",

		// Matches
		"match_by_id":           "SELECT id, created_by, home_team_id, away_team_id, home_team, away_team, match_date, venue, status, home_score, away_score, joker_used_home, joker_used_away, heats, official_match_id, created_at FROM matches WHERE id = $1",
		"matches_by_user":       "SELECT id, created_by, home_team_id, away_team_id, home_team, away_team, match_date, venue, status, home_score, away_score, joker_used_home, joker_used_away, heats, official_match_id, created_at FROM matches WHERE created_by = $1 ORDER BY match_date DESC, created_at DESC",
		"insert_match":          "INSERT INTO matches (id, created_by, home_team_id, away_team_id, home_team, away_team, match_date, venue, status, heats, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)",
		"update_match":          "UPDATE matches SET status = $2, home_score = $3, away_score = $4, joker_used_home = $5, joker_used_away = $6, heats = $7, official_match_id = $8, updated_at = now() WHERE id = $1",
		"delete_match":          "DELETE FROM matches WHERE id = $1 AND created_by = $2",
		"match_exists_for_user": "SELECT 1 FROM matches WHERE created_by = $1 AND home_team = $2 AND away_team = $3 AND match_date = $4 LIMIT 1",

		// User matches (confirmed protocols)
		"user_match_by_id":     "SELECT id, user_id, match_id, status, user_results, official_home_score, official_away_score, discrepancies, completed_at, resolved_at FROM user_matches WHERE id = $1",
		"user_matches_by_user": "SELECT id, user_id, match_id, status, user_results, official_home_score, official_away_score, discrepancies, completed_at, resolved_at FROM user_matches WHERE user_id = $1 ORDER BY completed_at DESC",
		"user_matches_pending": "SELECT id, user_id, match_id, status, user_results, official_home_score, official_away_score, discrepancies, completed_at, resolved_at FROM user_matches WHERE status = 'completed'",
		"insert_user_match":    "INSERT INTO user_matches (id, user_id, match_id, status, user_results, discrepancies, completed_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		"update_user_match":    "UPDATE user_matches SET status = $2, user_results = $3, official_home_score = $4, official_away_score = $5, discrepancies = $6, resolved_at = $7 WHERE id = $1",
		"user_match_for_match": "SELECT id, user_id, match_id, status, user_results, official_home_score, official_away_score, discrepancies, completed_at, resolved_at FROM user_matches WHERE match_id = $1 AND user_id = $2",

		// Official results
		"official_match_lookup": "SELECT id, home_team, away_team, match_date, home_score, away_score, source_url, used, scraped_at FROM official_matches WHERE home_team = $1 AND away_team = $2 AND match_date = $3",
		"official_match_by_id":  "SELECT id, home_team, away_team, match_date, home_score, away_score, source_url, used, scraped_at FROM official_matches WHERE id = $1",
		"official_matches_on":   "SELECT id, home_team, away_team, match_date, home_score, away_score, source_url, used, scraped_at FROM official_matches WHERE match_date = $1",
		"upsert_official_match": "INSERT INTO official_matches (id, home_team, away_team, match_date, home_score, away_score, source_url, scraped_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (home_team, away_team, match_date) DO UPDATE SET home_score = EXCLUDED.home_score, away_score = EXCLUDED.away_score, source_url = EXCLUDED.source_url, scraped_at = EXCLUDED.scraped_at RETURNING id",
		"mark_official_used":    "UPDATE official_matches SET used = true WHERE id = $1",
		"official_heats_for":    "SELECT heat_number, results FROM official_heats WHERE official_match_id = $1 ORDER BY heat_number",
		"upsert_official_heat":  "INSERT INTO official_heats (official_match_id, heat_number, results) VALUES ($1, $2, $3) ON CONFLICT (official_match_id, heat_number) DO UPDATE SET results = EXCLUDED.results",

		// Maintenance
		"stale_user_matches": "SELECT id FROM user_matches WHERE status = 'completed' AND completed_at < $1",
		"purge_old_official": "DELETE FROM official_matches WHERE scraped_at < $1 AND used = false AND id NOT IN (SELECT DISTINCT official_match_id FROM official_heats)",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
