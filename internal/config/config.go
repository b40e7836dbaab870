// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/admin.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Jakkmalm/speedway-protocol/internal/rules"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches the migrations
// --------------------------------------------------------------------------

const (
	UsersTable           = "users"
	TeamsTable           = "teams"
	RidersTable          = "riders"
	MatchesTable         = "matches"
	UserMatchesTable     = "user_matches"
	OfficialMatchesTable = "official_matches"
	OfficialHeatsTable   = "official_heats"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Official results sources
	FlashscoreURL     string
	SvemoBaseURL      string
	SvemoAPIKey       string
	ScrapeTimeout     time.Duration
	ScrapeHeadless    bool
	RevalidateEnabled bool

	// Cache
	CacheEnabled bool

	// Competition rules. Defaults follow the Elitserien rule set; the
	// env overrides exist so rule revisions do not force a rebuild.
	Rules rules.Config
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("POSTGRES_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or POSTGRES_URL must be set")
	}

	secret := envOr("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		JWTSecret: secret,
		JWTTTL:    time.Duration(envInt("JWT_TTL_HOURS", 7*24)) * time.Hour,

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		FlashscoreURL:     envOr("FLASHSCORE_URL", "https://www.flashscore.se/motorcykel-racing/speedway/elitserien/"),
		SvemoBaseURL:      envOr("SVEMO_BASE_URL", ""),
		SvemoAPIKey:       envOr("SVEMO_API_KEY", ""),
		ScrapeTimeout:     time.Duration(envInt("SCRAPE_TIMEOUT_SECONDS", 120)) * time.Second,
		ScrapeHeadless:    envBool("SCRAPE_HEADLESS", true),
		RevalidateEnabled: envBool("REVALIDATE_ENABLED", true),

		CacheEnabled: envBool("CACHE_ENABLED", true),

		Rules: loadRules(),
	}, nil
}

// loadRules applies environment overrides on top of the default rule set.
func loadRules() rules.Config {
	r := rules.Default()
	r.Tactical.StartHeat = envInt("TACTICAL_START_HEAT", r.Tactical.StartHeat)
	r.Tactical.EndHeat = envInt("TACTICAL_END_HEAT", r.Tactical.EndHeat)
	r.Tactical.MinDeficit = envInt("TACTICAL_MIN_DEFICIT", r.Tactical.MinDeficit)
	r.LaneChoiceDeficit = envInt("LANE_CHOICE_DEFICIT", r.LaneChoiceDeficit)
	r.RideLimits.MainMax = envInt("RIDE_LIMIT_MAIN", r.RideLimits.MainMax)
	r.RideLimits.ReserveMax = envInt("RIDE_LIMIT_RESERVE", r.RideLimits.ReserveMax)
	r.RideLimits.RiderReplacement = envBool("RIDER_REPLACEMENT", false)
	return r
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
