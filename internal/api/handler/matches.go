package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/auth"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/rules"
	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

type createMatchRequest struct {
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Date       string `json:"date"`
	Venue      string `json:"venue"`
}

// CreateMatch creates a match with its generated heat program.
// @Summary Create match
// @Description Creates a match between two teams and pre-fills all 15 heats from the standard program.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createMatchRequest true "Fixture"
// @Success 201 {object} speedway.Match
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /matches [post]
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := respond.ReadJSON(r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.HomeTeamID == req.AwayTeamID {
		respond.WriteError(w, http.StatusBadRequest, "SAME_TEAM", "home and away team must differ")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_DATE", "date must be YYYY-MM-DD")
		return
	}

	ctx := r.Context()
	home, err := h.store.TeamByID(ctx, req.HomeTeamID)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_TEAM", "home team not found")
		return
	}
	away, err := h.store.TeamByID(ctx, req.AwayTeamID)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_TEAM", "away team not found")
		return
	}

	homeRiders, err := h.store.RidersByTeam(ctx, home.ID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load home roster")
		return
	}
	awayRiders, err := h.store.RidersByTeam(ctx, away.ID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load away roster")
		return
	}

	m := &speedway.Match{
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		HomeTeam:   home.Name,
		AwayTeam:   away.Name,
		Date:       date,
		Venue:      req.Venue,
		Status:     speedway.MatchUpcoming,
		Heats:      speedway.GenerateHeats(home.Name, away.Name, homeRiders, awayRiders),
		CreatedBy:  auth.UserID(ctx),
	}

	if err := h.store.CreateMatch(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respond.WriteError(w, http.StatusConflict, "DUPLICATE_MATCH", "you already have a match for this fixture and date")
			return
		}
		h.logger.Error("create match", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not create match")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, m)
}

// ListMatches returns the user's matches.
// @Summary List matches
// @Description Returns the authenticated user's matches, newest first.
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Success 200 {array} speedway.Match
// @Router /matches [get]
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.MatchesByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list matches", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list matches")
		return
	}
	if matches == nil {
		matches = []speedway.Match{}
	}
	respond.WriteJSONObject(w, http.StatusOK, matches)
}

// GetMatch returns one match with heats.
// @Summary Get match
// @Description Returns one match with its full heat list.
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param matchID path string true "Match ID"
// @Success 200 {object} speedway.Match
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches/{matchID} [get]
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, ok := h.ownedMatch(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, m)
}

// DeleteMatch removes a match.
// @Summary Delete match
// @Description Deletes one of the user's matches.
// @Tags matches
// @Security BearerAuth
// @Param matchID path string true "Match ID"
// @Success 204
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches/{matchID} [delete]
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	err := h.store.DeleteMatch(r.Context(), matchID, auth.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "match not found")
		return
	}
	if err != nil {
		h.logger.Error("delete match", "match_id", matchID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not delete match")
		return
	}
	h.cache.Invalidate("match:" + matchID)
	w.WriteHeader(http.StatusNoContent)
}

// ConfirmMatch finalizes a fully recorded match into a protocol record and
// compares it against the official result when one is available.
// @Summary Confirm match
// @Description Locks a match with all 15 heats completed, records the user's protocol, and validates it against official results if published.
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Param matchID path string true "Match ID"
// @Success 201 {object} speedway.UserMatch
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /matches/{matchID}/confirm [post]
func (h *Handler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	m, ok := h.ownedMatch(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if m.Status == speedway.MatchConfirmed {
		respond.WriteError(w, http.StatusConflict, "ALREADY_CONFIRMED", "match is already confirmed")
		return
	}
	if _, err := h.store.UserMatchForMatch(ctx, m.ID, m.CreatedBy); err == nil {
		respond.WriteError(w, http.StatusConflict, "ALREADY_CONFIRMED", "a protocol already exists for this match")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("protocol lookup", "match_id", m.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not check for an existing protocol")
		return
	}
	if !rules.Confirmable(m) {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INCOMPLETE_MATCH",
			"all 15 heats must be completed before confirming",
			"completed heats: "+strconv.Itoa(rules.CompletedHeats(m)))
		return
	}

	totals := rules.MatchTotals(m)
	um := &speedway.UserMatch{
		UserID:  m.CreatedBy,
		MatchID: m.ID,
		Status:  speedway.UserMatchCompleted,
		UserResults: speedway.ScoreSheet{
			HomeScore: totals.HomeScore,
			AwayScore: totals.AwayScore,
			Heats:     m.Heats,
		},
		Discrepancies: []speedway.Discrepancy{},
		CompletedAt:   time.Now().UTC(),
	}

	// Compare against the official result when already imported.
	official, err := h.store.FindOfficialMatch(ctx, m.HomeTeam, m.AwayTeam, m.Date)
	if err == nil && official.HasScore() {
		pair := &speedway.ScorePair{HomeScore: *official.HomeScore, AwayScore: *official.AwayScore}
		um.OfficialResults = pair
		um.Discrepancies = rules.Compare(speedway.ScorePair{HomeScore: totals.HomeScore, AwayScore: totals.AwayScore}, *pair)
		um.Status = rules.StatusFor(pair, um.Discrepancies)
		m.OfficialMatchID = &official.ID
		if err := h.store.MarkOfficialUsed(ctx, official.ID); err != nil {
			h.logger.Warn("mark official used", "official_id", official.ID, "error", err)
		}
	}

	if err := h.store.CreateUserMatch(ctx, um); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respond.WriteError(w, http.StatusConflict, "ALREADY_CONFIRMED", "a protocol already exists for this match")
			return
		}
		h.logger.Error("create user match", "match_id", m.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not record protocol")
		return
	}

	m.Status = speedway.MatchConfirmed
	m.HomeScore = totals.HomeScore
	m.AwayScore = totals.AwayScore
	if err := h.store.UpdateMatch(ctx, m); err != nil {
		h.logger.Error("confirm match update", "match_id", m.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not confirm match")
		return
	}

	h.cache.Invalidate("match:" + m.ID)
	h.hub.Publish(&live.Event{Type: live.EventValidation, MatchID: m.ID, Data: um})
	respond.WriteJSONObject(w, http.StatusCreated, um)
}

// ownedMatch loads the match in the URL and enforces ownership. Writes the
// error response itself when the match is missing or foreign.
func (h *Handler) ownedMatch(w http.ResponseWriter, r *http.Request) (*speedway.Match, bool) {
	matchID := chi.URLParam(r, "matchID")
	m, err := h.store.MatchByID(r.Context(), matchID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "match not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load match", "match_id", matchID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load match")
		return nil, false
	}
	if m.CreatedBy != auth.UserID(r.Context()) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "match not found")
		return nil, false
	}
	return m, true
}
