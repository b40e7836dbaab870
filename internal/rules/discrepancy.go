package rules

import "github.com/Jakkmalm/speedway-protocol/internal/speedway"

// ResolutionAction is the user's choice when resolving a discrepancy.
type ResolutionAction string

const (
	// AcceptOfficial overwrites the user's values with the official ones.
	AcceptOfficial ResolutionAction = "accept_official"
	// KeepUser retains the user's values; the protocol stays disputed.
	KeepUser ResolutionAction = "keep_user"
)

// Compare produces the discrepancies between a user's aggregated result and
// the official one: one entry per differing field, both values retained.
func Compare(user, official speedway.ScorePair) []speedway.Discrepancy {
	var out []speedway.Discrepancy
	if user.HomeScore != official.HomeScore {
		out = append(out, speedway.Discrepancy{
			Type:          speedway.DiscrepancyHomeScore,
			UserValue:     user.HomeScore,
			OfficialValue: official.HomeScore,
		})
	}
	if user.AwayScore != official.AwayScore {
		out = append(out, speedway.Discrepancy{
			Type:          speedway.DiscrepancyAwayScore,
			UserValue:     user.AwayScore,
			OfficialValue: official.AwayScore,
		})
	}
	return out
}

// StatusFor derives a user match's validation status. With no official
// result there is nothing to validate against and the protocol is simply
// completed; a clean comparison is validated; any unresolved or kept
// discrepancy leaves it disputed.
func StatusFor(official *speedway.ScorePair, discrepancies []speedway.Discrepancy) speedway.UserMatchStatus {
	if official == nil {
		return speedway.UserMatchCompleted
	}
	if len(discrepancies) > 0 {
		return speedway.UserMatchDisputed
	}
	return speedway.UserMatchValidated
}

// Revalidate recomputes a user match's discrepancies and status against an
// official score, preserving resolutions already recorded for unchanged
// differences. Called when official results arrive or change.
func Revalidate(um *speedway.UserMatch, official *speedway.ScorePair) {
	if um == nil {
		return
	}
	um.OfficialResults = official
	if official == nil {
		um.Discrepancies = nil
		um.Status = speedway.UserMatchCompleted
		return
	}
	user := speedway.ScorePair{HomeScore: um.UserResults.HomeScore, AwayScore: um.UserResults.AwayScore}
	fresh := Compare(user, *official)
	for i := range fresh {
		for _, old := range um.Discrepancies {
			if old.Type == fresh[i].Type && old.UserValue == fresh[i].UserValue &&
				old.OfficialValue == fresh[i].OfficialValue {
				fresh[i].Resolution = old.Resolution
			}
		}
	}
	um.Discrepancies = fresh
	um.Status = StatusFor(official, fresh)
}

// Resolve applies a resolution action to a user match. accept_official
// overwrites the user's aggregated scores with the official values, clears
// the discrepancies and validates the protocol; keep_user retains the
// user's values, marks the discrepancies kept and leaves the protocol
// disputed. Unknown actions and missing official results leave the match
// untouched and return false.
func Resolve(um *speedway.UserMatch, action ResolutionAction) bool {
	if um == nil {
		return false
	}
	switch action {
	case AcceptOfficial:
		if um.OfficialResults == nil {
			return false
		}
		um.UserResults.HomeScore = um.OfficialResults.HomeScore
		um.UserResults.AwayScore = um.OfficialResults.AwayScore
		um.Discrepancies = []speedway.Discrepancy{}
		um.Status = speedway.UserMatchValidated
		return true
	case KeepUser:
		for i := range um.Discrepancies {
			if um.Discrepancies[i].Resolution == "" {
				um.Discrepancies[i].Resolution = "kept"
			}
		}
		um.Status = speedway.UserMatchDisputed
		return true
	default:
		return false
	}
}
