package rules

import "github.com/Jakkmalm/speedway-protocol/internal/speedway"

// MatchTotals sums every heat's persisted points (base plus bonus) into
// home and away totals, resolving each result's rider to its side through
// the heat's gate assignments. Results whose rider cannot be resolved are
// skipped rather than treated as an error, since the aggregator may run
// against an in-progress or partially recorded match. Pure summation, so
// the traversal order of heats and results cannot affect the outcome.
func MatchTotals(m *speedway.Match) speedway.ScorePair {
	var totals speedway.ScorePair
	if m == nil {
		return totals
	}
	for i := range m.Heats {
		h := &m.Heats[i]
		for _, r := range h.Results {
			side, ok := h.TeamOf(r.RiderID)
			if !ok {
				continue
			}
			pts := r.Points + r.BonusPoints
			if side == speedway.Home {
				totals.HomeScore += pts
			} else {
				totals.AwayScore += pts
			}
		}
	}
	return totals
}

// CompletedHeats counts heats with status completed.
func CompletedHeats(m *speedway.Match) int {
	n := 0
	for i := range m.Heats {
		if m.Heats[i].Status == speedway.HeatCompleted {
			n++
		}
	}
	return n
}

// Confirmable reports whether the match protocol can be confirmed: all 15
// heats recorded as completed.
func Confirmable(m *speedway.Match) bool {
	return m != nil && CompletedHeats(m) == speedway.HeatsPerMatch
}
