package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Jakkmalm/speedway-protocol/internal/api/respond"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/rules"
	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

type riderChange struct {
	Gate     int    `json:"gate"`
	RiderID  string `json:"rider_id"`
	Tactical bool   `json:"tactical"`
}

type updateRidersRequest struct {
	Changes []riderChange `json:"changes"`
}

// UpdateHeatRiders applies gate substitutions to an upcoming heat, including
// tactical reserve picks.
// @Summary Update heat riders
// @Description Substitutes riders on an upcoming heat's gates. A change flagged tactical invokes the team's once-per-match tactical reserve.
// @Tags heats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path string true "Match ID"
// @Param heatNumber path int true "Heat number (1-15)"
// @Param body body updateRidersRequest true "Gate changes"
// @Success 200 {object} speedway.Heat
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /matches/{matchID}/heats/{heatNumber}/riders [put]
func (h *Handler) UpdateHeatRiders(w http.ResponseWriter, r *http.Request) {
	m, ok := h.ownedMatch(w, r)
	if !ok {
		return
	}
	heat, ok := h.heatFromURL(w, r, m)
	if !ok {
		return
	}

	var req updateRidersRequest
	if err := respond.ReadJSON(r, &req); err != nil || len(req.Changes) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	ctx := r.Context()
	for _, change := range req.Changes {
		gate := speedway.Gate(change.Gate)
		if gate < speedway.Gate1 || gate > speedway.Gate4 {
			respond.WriteError(w, http.StatusBadRequest, "BAD_GATE", "gate must be 1-4")
			return
		}

		rider, err := h.store.RiderByID(ctx, change.RiderID)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_RIDER", "rider not found")
			return
		}
		side := speedway.Home
		if rider.TeamID == m.AwayTeamID {
			side = speedway.Away
		}

		if decision := rules.CheckSubstitution(h.cfg.Rules, m, heat, gate, *rider); !decision.Allowed {
			respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "SUBSTITUTION_REJECTED",
				string(decision.Reason), decision.Detail)
			return
		}

		if change.Tactical {
			// Revising a pick already staged on this gate skips the team
			// gate; the joker was committed when the pick was first staged.
			revising := heat.Tactical != nil && heat.Tactical.Team == side && heat.Tactical.Gate == gate
			if !revising {
				if decision := rules.CanUseTactical(h.cfg.Rules.Tactical, m, side, heat.HeatNumber); !decision.Allowed {
					respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "TACTICAL_REJECTED",
						string(decision.Reason), decision.Detail)
					return
				}
			}
			heat.IsTacticalHeat = true
			heat.Tactical = &speedway.TacticalPick{Team: side, Gate: gate, RiderID: rider.ID}
			m.SetJokerUsed(side)
		}

		heat.Riders[gate] = speedway.RiderAssignment{
			RiderID:     rider.ID,
			Name:        rider.Name,
			Team:        side,
			HelmetColor: speedway.HelmetColor(side, gate),
		}
	}

	if err := h.store.UpdateMatch(ctx, m); err != nil {
		h.logger.Error("update heat riders", "match_id", m.ID, "heat", heat.HeatNumber, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not save heat")
		return
	}

	h.cache.Invalidate("match:" + m.ID)
	h.hub.Publish(&live.Event{Type: live.EventRidersUpdate, MatchID: m.ID, Data: heat})
	respond.WriteJSONObject(w, http.StatusOK, heat)
}

type saveResultRequest struct {
	Results map[string]rules.DraftResult `json:"results"`
}

// SaveHeatResult records a heat's finishing order and rescores the match.
// @Summary Save heat result
// @Description Records the finishing order for a heat, computes points and bonuses, updates match totals, and reverts lapsed lane choices. Heats must be completed strictly in order.
// @Tags heats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path string true "Match ID"
// @Param heatNumber path int true "Heat number (1-15)"
// @Param body body saveResultRequest true "Results by rider id"
// @Success 200 {object} speedway.Match
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /matches/{matchID}/heats/{heatNumber}/results [post]
func (h *Handler) SaveHeatResult(w http.ResponseWriter, r *http.Request) {
	m, ok := h.ownedMatch(w, r)
	if !ok {
		return
	}
	heat, ok := h.heatFromURL(w, r, m)
	if !ok {
		return
	}

	var req saveResultRequest
	if err := respond.ReadJSON(r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if m.Status == speedway.MatchConfirmed {
		respond.WriteError(w, http.StatusUnprocessableEntity, "MATCH_CONFIRMED", "confirmed matches cannot be edited")
		return
	}
	if !rules.HeatEnterable(m, heat.HeatNumber) {
		respond.WriteError(w, http.StatusUnprocessableEntity, "OUT_OF_ORDER",
			"previous heat must be completed first")
		return
	}
	if !rules.HeatCompleteFromForm(heat, req.Results) {
		respond.WriteError(w, http.StatusUnprocessableEntity, "INCOMPLETE_RESULT",
			"every rider needs a status, with distinct positions 1-4 for finishers")
		return
	}

	heat.Results = rules.ScoreHeat(h.cfg.Rules, heat, req.Results)
	heat.Status = speedway.HeatCompleted

	totals := rules.MatchTotals(m)
	m.HomeScore = totals.HomeScore
	m.AwayScore = totals.AwayScore
	if rules.CompletedHeats(m) == speedway.HeatsPerMatch {
		m.Status = speedway.MatchCompleted
	} else {
		m.Status = speedway.MatchLive
	}

	// An earlier 8-point lane choice lapses when the deficit falls back
	// under the threshold before the rearranged heat runs.
	var reverted []int
	if rules.LaneChoiceLapsed(h.cfg.Rules.LaneChoiceDeficit, m) {
		reverted = speedway.RevertLapsedLaneChoices(m)
	}

	if err := h.store.UpdateMatch(r.Context(), m); err != nil {
		h.logger.Error("save heat result", "match_id", m.ID, "heat", heat.HeatNumber, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not save result")
		return
	}

	h.cache.Invalidate("match:" + m.ID)
	h.hub.Publish(&live.Event{Type: live.EventHeatResult, MatchID: m.ID, Data: heat})
	h.hub.Publish(&live.Event{Type: live.EventScoreUpdate, MatchID: m.ID, Data: totals})
	for _, n := range reverted {
		h.hub.Publish(&live.Event{Type: live.EventLaneChoice, MatchID: m.ID, Data: m.HeatByNumber(n)})
	}
	respond.WriteJSONObject(w, http.StatusOK, m)
}

type laneChoiceRequest struct {
	Team       string `json:"team"`
	HeatNumber int    `json:"heat_number"`
	Pair       string `json:"pair"`
}

// ApplyLaneChoice lets a trailing team pick its gate pair for an upcoming
// heat under the 8-point rule.
// @Summary Apply lane choice
// @Description Applies the 8-point rule: a team trailing by 8 or more picks which gate pair its riders start from in an upcoming heat.
// @Tags heats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path string true "Match ID"
// @Param body body laneChoiceRequest true "Lane choice"
// @Success 200 {object} speedway.Heat
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /matches/{matchID}/lane-choice [post]
func (h *Handler) ApplyLaneChoice(w http.ResponseWriter, r *http.Request) {
	m, ok := h.ownedMatch(w, r)
	if !ok {
		return
	}

	var req laneChoiceRequest
	if err := respond.ReadJSON(r, &req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	side := speedway.TeamSide(req.Team)
	if side != speedway.Home && side != speedway.Away {
		respond.WriteError(w, http.StatusBadRequest, "BAD_TEAM", `team must be "home" or "away"`)
		return
	}
	pair := speedway.GatePair(req.Pair)
	if pair != speedway.PairInside && pair != speedway.PairOutside {
		respond.WriteError(w, http.StatusBadRequest, "BAD_PAIR", `pair must be "1_3" or "2_4"`)
		return
	}
	heat := m.HeatByNumber(req.HeatNumber)
	if heat == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such heat")
		return
	}
	if heat.Status != speedway.HeatUpcoming {
		respond.WriteError(w, http.StatusUnprocessableEntity, "HEAT_COMPLETED", "heat has already been run")
		return
	}
	if !rules.CanChooseGates(h.cfg.Rules.LaneChoiceDeficit, m, side) {
		respond.WriteError(w, http.StatusUnprocessableEntity, "NOT_ELIGIBLE",
			"team is not trailing by enough points for lane choice")
		return
	}

	speedway.ApplyLaneChoice(heat, side, pair)

	if err := h.store.UpdateMatch(r.Context(), m); err != nil {
		h.logger.Error("apply lane choice", "match_id", m.ID, "heat", req.HeatNumber, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not save lane choice")
		return
	}

	h.cache.Invalidate("match:" + m.ID)
	h.hub.Publish(&live.Event{Type: live.EventLaneChoice, MatchID: m.ID, Data: heat})
	respond.WriteJSONObject(w, http.StatusOK, heat)
}

// heatFromURL resolves the heatNumber path parameter against the match.
func (h *Handler) heatFromURL(w http.ResponseWriter, r *http.Request, m *speedway.Match) (*speedway.Heat, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "heatNumber"))
	if err != nil || n < 1 || n > speedway.HeatsPerMatch {
		respond.WriteError(w, http.StatusBadRequest, "BAD_HEAT", "heat number must be 1-15")
		return nil, false
	}
	heat := m.HeatByNumber(n)
	if heat == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such heat")
		return nil, false
	}
	return heat, true
}
