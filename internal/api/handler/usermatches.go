package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/auth"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/rules"
	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// ListUserMatches returns the user's confirmed protocols.
// @Summary List protocols
// @Description Returns the authenticated user's confirmed match protocols, newest first.
// @Tags protocols
// @Produce json
// @Security BearerAuth
// @Success 200 {array} speedway.UserMatch
// @Router /user-matches [get]
func (h *Handler) ListUserMatches(w http.ResponseWriter, r *http.Request) {
	ums, err := h.store.UserMatchesByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list user matches", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list protocols")
		return
	}
	if ums == nil {
		ums = []speedway.UserMatch{}
	}
	respond.WriteJSONObject(w, http.StatusOK, ums)
}

// GetUserMatch returns one protocol.
// @Summary Get protocol
// @Description Returns one confirmed protocol with its discrepancies.
// @Tags protocols
// @Produce json
// @Security BearerAuth
// @Param userMatchID path string true "Protocol ID"
// @Success 200 {object} speedway.UserMatch
// @Failure 404 {object} respond.ErrorResponse
// @Router /user-matches/{userMatchID} [get]
func (h *Handler) GetUserMatch(w http.ResponseWriter, r *http.Request) {
	um, ok := h.ownedUserMatch(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, um)
}

type resolveRequest struct {
	Action string `json:"action"`
}

// ResolveUserMatch settles a disputed protocol.
// @Summary Resolve discrepancies
// @Description Settles a disputed protocol: accept_official overwrites the user's totals and validates; keep_user retains them and marks the protocol disputed.
// @Tags protocols
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userMatchID path string true "Protocol ID"
// @Param body body resolveRequest true "Resolution action"
// @Success 200 {object} speedway.UserMatch
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /user-matches/{userMatchID}/resolve [post]
func (h *Handler) ResolveUserMatch(w http.ResponseWriter, r *http.Request) {
	um, ok := h.ownedUserMatch(w, r)
	if !ok {
		return
	}

	var req resolveRequest
	if err := respond.ReadJSON(r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if len(um.Discrepancies) == 0 {
		respond.WriteError(w, http.StatusUnprocessableEntity, "NOTHING_TO_RESOLVE", "protocol has no discrepancies")
		return
	}

	if !rules.Resolve(um, rules.ResolutionAction(req.Action)) {
		respond.WriteError(w, http.StatusBadRequest, "BAD_ACTION",
			`action must be "accept_official" or "keep_user"`)
		return
	}
	now := time.Now().UTC()
	um.ResolvedAt = &now

	if err := h.store.UpdateUserMatch(r.Context(), um); err != nil {
		h.logger.Error("resolve user match", "user_match_id", um.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not save resolution")
		return
	}

	h.hub.Publish(&live.Event{Type: live.EventValidation, MatchID: um.MatchID, Data: um})
	respond.WriteJSONObject(w, http.StatusOK, um)
}

func (h *Handler) ownedUserMatch(w http.ResponseWriter, r *http.Request) (*speedway.UserMatch, bool) {
	id := chi.URLParam(r, "userMatchID")
	um, err := h.store.UserMatchByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "protocol not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load user match", "user_match_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load protocol")
		return nil, false
	}
	if um.UserID != auth.UserID(r.Context()) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "protocol not found")
		return nil, false
	}
	return um, true
}
