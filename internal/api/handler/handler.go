// Package handler provides HTTP handlers for all API endpoints. Handlers
// load domain records through the store, run the rules engine on them and
// write the result back; they hold no game state of their own.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/auth"
	"github.com/Jakkmalm/speedway-protocol/internal/cache"
	"github.com/Jakkmalm/speedway-protocol/internal/config"
	"github.com/Jakkmalm/speedway-protocol/internal/db"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store  *store.Store
	pool   *db.Pool
	cache  *cache.Cache
	cfg    *config.Config
	auth   *auth.Service
	hub    *live.Hub
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(st *store.Store, pool *db.Pool, c *cache.Cache, cfg *config.Config, authSvc *auth.Service, hub *live.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		store:  st,
		pool:   pool,
		cache:  c,
		cfg:    cfg,
		auth:   authSvc,
		hub:    hub,
		logger: logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Speedway Protocol API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Runs a trivial query against Postgres.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

// HealthCheckCache reports cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.cache.Stats())
}
