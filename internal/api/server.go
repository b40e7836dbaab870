package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/Jakkmalm/speedway-protocol/internal/api/handler"
	"github.com/Jakkmalm/speedway-protocol/internal/auth"
	"github.com/Jakkmalm/speedway-protocol/internal/cache"
	"github.com/Jakkmalm/speedway-protocol/internal/config"
	"github.com/Jakkmalm/speedway-protocol/internal/db"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *db.Pool, st *store.Store, appCache *cache.Cache, cfg *config.Config, authSvc *auth.Service, hub *live.Hub, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(st, pool, appCache, cfg, authSvc, hub, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Live match feed
	r.Get("/ws", hub.ServeWS)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Public reads
		r.Get("/teams", h.ListTeams)
		r.Get("/teams/{teamID}/riders", h.GetTeamRiders)
		r.Get("/official/matches", h.ListOfficialMatches)
		r.Get("/official/matches/{officialMatchID}/heats", h.GetOfficialHeats)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(authSvc.Middleware)

			r.Get("/auth/me", h.Me)

			r.Post("/matches", h.CreateMatch)
			r.Get("/matches", h.ListMatches)
			r.Get("/matches/{matchID}", h.GetMatch)
			r.Delete("/matches/{matchID}", h.DeleteMatch)
			r.Post("/matches/{matchID}/confirm", h.ConfirmMatch)
			r.Post("/matches/{matchID}/lane-choice", h.ApplyLaneChoice)

			r.Put("/matches/{matchID}/heats/{heatNumber}/riders", h.UpdateHeatRiders)
			r.Post("/matches/{matchID}/heats/{heatNumber}/results", h.SaveHeatResult)

			r.Get("/user-matches", h.ListUserMatches)
			r.Get("/user-matches/{userMatchID}", h.GetUserMatch)
			r.Post("/user-matches/{userMatchID}/resolve", h.ResolveUserMatch)
		})
	})

	return r
}
