package rules

import "github.com/Jakkmalm/speedway-protocol/internal/speedway"

// DraftResult is one rider's entry in an unsaved heat form: the status the
// scorer picked and, for completed rides, the finishing position.
type DraftResult struct {
	Status   speedway.ResultStatus
	Position int
}

// ValidPosition reports whether n is a finishing position in [1,4].
func ValidPosition(n int) bool {
	return n >= 1 && n <= 4
}

// HeatCompleteFromForm reports whether a draft results form for a heat is
// complete and internally consistent: every assigned rider has an entry
// with a known status, every completed entry carries a position in [1,4],
// and no two completed entries share a position. Excluded entries need no
// position. A heat with no assigned riders is incomplete, not vacuously
// valid.
func HeatCompleteFromForm(heat *speedway.Heat, form map[string]DraftResult) bool {
	if heat == nil || len(heat.Riders) == 0 {
		return false
	}
	used := make(map[int]bool, len(heat.Riders))
	for _, ra := range heat.Riders {
		res, ok := form[ra.RiderID]
		if !ok {
			return false
		}
		switch res.Status {
		case speedway.ResultCompleted:
			if !ValidPosition(res.Position) || used[res.Position] {
				return false
			}
			used[res.Position] = true
		case speedway.ResultExcluded:
			// no position requirement
		default:
			return false
		}
	}
	return true
}

// HeatSavedComplete applies the identical completeness rule against the
// heat's persisted results. Used to gate whether a dependent heat may be
// opened.
func HeatSavedComplete(heat *speedway.Heat) bool {
	if heat == nil || len(heat.Riders) == 0 || len(heat.Results) == 0 {
		return false
	}
	form := make(map[string]DraftResult, len(heat.Results))
	for _, r := range heat.Results {
		form[r.RiderID] = DraftResult{Status: r.Status, Position: r.Position}
	}
	return HeatCompleteFromForm(heat, form)
}

// HeatEnterable reports whether results may be entered for the given heat
// number. Heats are completed strictly in order: heat N is enterable only
// once heat N-1 is saved complete. Heat 1 has no predecessor and is always
// enterable.
func HeatEnterable(m *speedway.Match, heatNumber int) bool {
	if m == nil || heatNumber < 1 || heatNumber > speedway.HeatsPerMatch {
		return false
	}
	if heatNumber == 1 {
		return true
	}
	prev := m.HeatByNumber(heatNumber - 1)
	return HeatSavedComplete(prev)
}
