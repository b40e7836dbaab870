package rules

import (
	"fmt"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// Reason identifies which eligibility gate rejected a request.
type Reason string

const (
	ReasonTacticalUsed     Reason = "tactical_already_used"
	ReasonOutsideWindow    Reason = "outside_tactical_window"
	ReasonNotTrailing      Reason = "not_trailing"
	ReasonDeficitTooSmall  Reason = "deficit_too_small"
	ReasonHeatHasTactical  Reason = "heat_already_has_tactical"
	ReasonRiderAtHeatLimit Reason = "rider_at_heat_limit"
	ReasonWrongTeam        Reason = "rider_wrong_team"
	ReasonHeatCompleted    Reason = "heat_completed"
)

// Decision is the outcome of an eligibility check. Rejections carry the
// gate that failed and a human-readable detail; they are re-evaluable
// pre-conditions, never fatal errors.
type Decision struct {
	Allowed bool
	Reason  Reason
	Detail  string
}

func allow() Decision { return Decision{Allowed: true} }

func reject(reason Reason, format string, args ...any) Decision {
	return Decision{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Deficit returns how many points a side is behind by (zero when leading
// or tied) and whether it is strictly trailing.
func Deficit(m *speedway.Match, team speedway.TeamSide) (int, bool) {
	own := m.Score(team)
	opp := m.Score(team.Opponent())
	if own >= opp {
		return 0, false
	}
	return opp - own, true
}

// CanUseTactical is the team-level gate for invoking the tactical reserve:
// the team must not have used it before in this match, the heat must fall
// within the configured window, and the team must be strictly trailing by
// at least the configured deficit.
func CanUseTactical(cfg TacticalConfig, m *speedway.Match, team speedway.TeamSide, heatNumber int) Decision {
	if m == nil {
		return reject(ReasonOutsideWindow, "no match state")
	}
	if m.JokerUsed(team) {
		return reject(ReasonTacticalUsed, "%s has already used its tactical reserve", team)
	}
	if heatNumber < cfg.StartHeat || heatNumber > cfg.EndHeat {
		return reject(ReasonOutsideWindow, "tactical reserve is only allowed in heats %d-%d", cfg.StartHeat, cfg.EndHeat)
	}
	deficit, trailing := Deficit(m, team)
	if !trailing {
		return reject(ReasonNotTrailing, "%s is not trailing", team)
	}
	if deficit < cfg.MinDeficit {
		return reject(ReasonDeficitTooSmall, "deficit %d is below the required %d", deficit, cfg.MinDeficit)
	}
	return allow()
}

// CheckSubstitution runs the full tactical-substitution rule chain for
// putting candidate into the given gate of a heat: the team-level gate, the
// one-per-heat gate (revising the same gate's staged pick is permitted),
// team membership by gate, and the candidate's per-match heat limit. The
// heat count includes every heat the candidate is currently assigned to,
// completed and upcoming alike. Decides only; callers apply the mutation.
func CheckSubstitution(cfg Config, m *speedway.Match, heat *speedway.Heat, gate speedway.Gate, candidate speedway.Rider) Decision {
	if m == nil || heat == nil {
		return reject(ReasonOutsideWindow, "no match state")
	}
	if heat.Status != speedway.HeatUpcoming {
		return reject(ReasonHeatCompleted, "heat %d is already completed", heat.HeatNumber)
	}
	team := speedway.TeamForGate(gate)

	// A staged pick may be revised on its own gate. The team committed its
	// joker when the pick was first staged, so the team gate only runs for
	// new picks; re-running it here would reject every revision.
	revising := heat.Tactical != nil && heat.Tactical.Team == team && heat.Tactical.Gate == gate
	if !revising {
		if d := CanUseTactical(cfg.Tactical, m, team, heat.HeatNumber); !d.Allowed {
			return d
		}
		if heat.Tactical != nil {
			return reject(ReasonHeatHasTactical, "heat %d already has a tactical reserve staged", heat.HeatNumber)
		}
	}
	if teamID := m.HomeTeamID; team == speedway.Home && candidate.TeamID != teamID {
		return reject(ReasonWrongTeam, "%s does not ride for the home team", candidate.Name)
	}
	if teamID := m.AwayTeamID; team == speedway.Away && candidate.TeamID != teamID {
		return reject(ReasonWrongTeam, "%s does not ride for the away team", candidate.Name)
	}

	limit := cfg.RideLimits.Limit(candidate)
	rides := m.RideCount(candidate.ID)
	// Replacing the candidate's own existing slot in this heat does not
	// add a ride.
	if ra, ok := heat.Riders[gate]; ok && ra.RiderID == candidate.ID {
		rides--
	}
	if rides >= limit {
		return reject(ReasonRiderAtHeatLimit, "%s has reached the heat limit (%d)", candidate.Name, limit)
	}
	return allow()
}

// CanChooseGates is the 8-point lane-choice rule: a team trailing by at
// least the configured deficit may choose which gate pair its riders
// occupy in upcoming heats.
func CanChooseGates(minDeficit int, m *speedway.Match, team speedway.TeamSide) bool {
	if m == nil {
		return false
	}
	deficit, trailing := Deficit(m, team)
	return trailing && deficit >= minDeficit
}

// LaneChoiceLapsed reports whether staged lane choices must be reverted:
// true once no side any longer qualifies under the deficit threshold.
func LaneChoiceLapsed(minDeficit int, m *speedway.Match) bool {
	return !CanChooseGates(minDeficit, m, speedway.Home) &&
		!CanChooseGates(minDeficit, m, speedway.Away)
}
