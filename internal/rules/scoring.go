package rules

import (
	"sort"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// BasePoints returns the points a single result earns from the configured
// table. Excluded rides and out-of-range positions score zero.
func BasePoints(table [4]int, r speedway.Result) int {
	if r.Status != speedway.ResultCompleted || !ValidPosition(r.Position) {
		return 0
	}
	return table[r.Position-1]
}

// HeatBonuses computes bonus points per rider under the teammate-bonus
// rule. Completed results are ranked by position; with fewer than three
// finishers no bonuses apply. The 2nd-placed rider earns +1 when 1st and
// 2nd ride for the same team (a 5-1), and the 3rd-placed rider earns +1
// when 2nd and 3rd do (a 3-3). The two checks are independent and can both
// apply in one heat. Excluded riders are ignored and do not interrupt the
// ranking. Returns a map from rider id to bonus (only riders with a bonus
// appear).
func HeatBonuses(heat *speedway.Heat) map[string]int {
	bonuses := make(map[string]int)
	if heat == nil {
		return bonuses
	}

	finished := make([]speedway.Result, 0, len(heat.Results))
	for _, r := range heat.Results {
		if r.Status == speedway.ResultCompleted && ValidPosition(r.Position) {
			finished = append(finished, r)
		}
	}
	if len(finished) < 3 {
		return bonuses
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].Position < finished[j].Position })

	team := func(riderID string) speedway.TeamSide {
		side, _ := heat.TeamOf(riderID)
		return side
	}
	if t := team(finished[0].RiderID); t != "" && t == team(finished[1].RiderID) {
		bonuses[finished[1].RiderID] = 1
	}
	if t := team(finished[1].RiderID); t != "" && t == team(finished[2].RiderID) {
		bonuses[finished[2].RiderID] = 1
	}
	return bonuses
}

// ScoreHeat converts a validated draft form into persisted results for the
// heat: base points from the configured table plus teammate bonuses.
// Results come back ordered by gate so the output is deterministic.
func ScoreHeat(cfg Config, heat *speedway.Heat, form map[string]DraftResult) []speedway.Result {
	if heat == nil {
		return nil
	}
	results := make([]speedway.Result, 0, len(heat.Riders))
	for _, gate := range speedway.Gates {
		ra, ok := heat.Riders[gate]
		if !ok {
			continue
		}
		draft, ok := form[ra.RiderID]
		if !ok {
			continue
		}
		res := speedway.Result{RiderID: ra.RiderID, Status: draft.Status}
		if draft.Status == speedway.ResultCompleted {
			res.Position = draft.Position
		}
		res.Points = BasePoints(cfg.BasePoints, res)
		results = append(results, res)
	}

	// Bonuses need the completed positions in place, so compute them over
	// a scratch heat carrying the new results.
	scratch := *heat
	scratch.Results = results
	bonuses := HeatBonuses(&scratch)
	for i := range results {
		results[i].BonusPoints = bonuses[results[i].RiderID]
	}
	return results
}
