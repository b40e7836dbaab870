package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/cache"
	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// ListOfficialMatches returns imported official fixtures for a date.
// @Summary List official matches
// @Description Returns the official fixtures imported for a given date, with scores when published.
// @Tags official
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {array} speedway.OfficialMatch
// @Failure 400 {object} respond.ErrorResponse
// @Router /official/matches [get]
func (h *Handler) ListOfficialMatches(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_DATE", "date query parameter must be YYYY-MM-DD")
		return
	}

	cacheKey := "official:" + dateStr
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLOfficial, true)
		return
	}

	matches, err := h.store.OfficialMatchesOn(r.Context(), date)
	if err != nil {
		h.logger.Error("official matches", "date", dateStr, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load official matches")
		return
	}
	if matches == nil {
		matches = []speedway.OfficialMatch{}
	}

	data, err := json.Marshal(matches)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not encode official matches")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLOfficial)
	respond.WriteJSON(w, data, etag, cache.TTLOfficial, false)
}

// GetOfficialHeats returns heat-level official results for one fixture.
// @Summary Official heat results
// @Description Returns the per-heat official results for an imported fixture, keyed by heat number.
// @Tags official
// @Produce json
// @Param officialMatchID path string true "Official match ID"
// @Success 200 {object} map[int][]speedway.Result
// @Failure 404 {object} respond.ErrorResponse
// @Router /official/matches/{officialMatchID}/heats [get]
func (h *Handler) GetOfficialHeats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "officialMatchID")

	if _, err := h.store.OfficialMatchByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "official match not found")
			return
		}
		h.logger.Error("official match", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load official match")
		return
	}

	heats, err := h.store.OfficialHeats(r.Context(), id)
	if err != nil {
		h.logger.Error("official heats", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load official heats")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, heats)
}
