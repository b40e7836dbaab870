// Package rules is the authoritative rule engine for scoring and
// reconciling a speedway match protocol: heat validation, per-heat scoring
// and bonuses, match aggregation, tactical-reserve and lane-choice
// eligibility, and discrepancy resolution against official results.
//
// Every function here is pure: it operates on an in-memory snapshot and
// returns a value or a decision, never mutating its inputs and never
// erroring. Missing or malformed input degrades to the most conservative
// outcome (incomplete, zero bonuses, substitution rejected). Hosts must
// re-evaluate decisions against the latest match state immediately before
// committing a mutation.
package rules

import "github.com/Jakkmalm/speedway-protocol/internal/speedway"

// Competition rule defaults, per the Elitserien regulations this protocol
// follows. Kept here as the single source of truth; call sites receive them
// through Config rather than repeating literals.
const (
	// Base points by finishing position 1-4.
	DefaultPointsFirst  = 3
	DefaultPointsSecond = 2
	DefaultPointsThird  = 1
	DefaultPointsFourth = 0

	// Tactical reserve window and entry condition.
	DefaultTacticalStartHeat  = 5
	DefaultTacticalEndHeat    = 13
	DefaultTacticalMinDeficit = 6

	// 8-point rule: the trailing team may choose its gate pair.
	DefaultLaneChoiceDeficit = 8

	// Per-match heat limits by rider role.
	DefaultMainRiderMaxHeats    = 6
	DefaultReserveRiderMaxHeats = 5

	// Raised limits when rider replacement (RR) is declared for the match.
	DefaultRRMainRiderMaxHeats    = 7
	DefaultRRReserveRiderMaxHeats = 6
)

// TacticalConfig bounds when a tactical reserve may be invoked.
type TacticalConfig struct {
	StartHeat  int
	EndHeat    int
	MinDeficit int
}

// RideLimits caps how many heats a rider may be assigned to in one match.
// RiderReplacement switches to the raised RR limits; whether the exemption
// applies is an integrator decision, not guessed by the engine.
type RideLimits struct {
	MainMax          int
	ReserveMax       int
	RRMainMax        int
	RRReserveMax     int
	RiderReplacement bool
}

// Limit returns the applicable heat cap for a rider.
func (l RideLimits) Limit(r speedway.Rider) int {
	if l.RiderReplacement {
		if r.IsReserve {
			return l.RRReserveMax
		}
		return l.RRMainMax
	}
	if r.IsReserve {
		return l.ReserveMax
	}
	return l.MainMax
}

// Config carries all tunable competition rules. The engine never reads
// globals; hosts load overrides from the environment and pass the result in.
type Config struct {
	// BasePoints[pos-1] is the points awarded for finishing position pos.
	BasePoints        [4]int
	Tactical          TacticalConfig
	LaneChoiceDeficit int
	RideLimits        RideLimits
}

// Default returns the Elitserien rule set.
func Default() Config {
	return Config{
		BasePoints: [4]int{DefaultPointsFirst, DefaultPointsSecond, DefaultPointsThird, DefaultPointsFourth},
		Tactical: TacticalConfig{
			StartHeat:  DefaultTacticalStartHeat,
			EndHeat:    DefaultTacticalEndHeat,
			MinDeficit: DefaultTacticalMinDeficit,
		},
		LaneChoiceDeficit: DefaultLaneChoiceDeficit,
		RideLimits: RideLimits{
			MainMax:      DefaultMainRiderMaxHeats,
			ReserveMax:   DefaultReserveRiderMaxHeats,
			RRMainMax:    DefaultRRMainRiderMaxHeats,
			RRReserveMax: DefaultRRReserveRiderMaxHeats,
		},
	}
}
