package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/cache"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// ListTeams returns all teams.
// @Summary List teams
// @Description Returns all teams in the series, ordered by name.
// @Tags teams
// @Produce json
// @Success 200 {array} speedway.Team
// @Router /teams [get]
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "teams"

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLTeams, true)
		return
	}

	teams, err := h.store.ListTeams(r.Context())
	if err != nil {
		h.logger.Error("list teams", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list teams")
		return
	}

	data, err := json.Marshal(teams)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not encode teams")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLTeams)
	respond.WriteJSON(w, data, etag, cache.TTLTeams, false)
}

// GetTeamRiders returns a team's roster.
// @Summary Team roster
// @Description Returns the riders of one team, main squad and reserves.
// @Tags teams
// @Produce json
// @Param teamID path string true "Team ID"
// @Success 200 {array} speedway.Rider
// @Failure 404 {object} respond.ErrorResponse
// @Router /teams/{teamID}/riders [get]
func (h *Handler) GetTeamRiders(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	cacheKey := "roster:" + teamID

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLRosters, true)
		return
	}

	if _, err := h.store.TeamByID(r.Context(), teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "team not found")
			return
		}
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load team")
		return
	}

	riders, err := h.store.RidersByTeam(r.Context(), teamID)
	if err != nil {
		h.logger.Error("team riders", "team_id", teamID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load roster")
		return
	}

	data, err := json.Marshal(riders)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not encode roster")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLRosters)
	respond.WriteJSON(w, data, etag, cache.TTLRosters, false)
}
