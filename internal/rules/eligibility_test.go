package rules

import (
	"testing"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// trailingMatch returns a match in heat 7 where home trails 10-22 with all
// 15 heats populated, matching the standard tactical-reserve scenario.
func trailingMatch() *speedway.Match {
	m := &speedway.Match{
		ID:         "m1",
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		HomeScore:  10,
		AwayScore:  22,
	}
	for i := 1; i <= speedway.HeatsPerMatch; i++ {
		m.Heats = append(m.Heats, *fourRiderHeat(i))
	}
	return m
}

func TestCanUseTactical(t *testing.T) {
	cfg := Default().Tactical

	tests := []struct {
		name       string
		mutate     func(*speedway.Match)
		team       speedway.TeamSide
		heat       int
		allowed    bool
		wantReason Reason
	}{
		{
			name: "trailing team inside window", team: speedway.Home, heat: 7,
			allowed: true,
		},
		{
			name: "leading team never eligible", team: speedway.Away, heat: 7,
			allowed: false, wantReason: ReasonNotTrailing,
		},
		{
			name: "tied teams never eligible", team: speedway.Home, heat: 7,
			mutate:  func(m *speedway.Match) { m.AwayScore = m.HomeScore },
			allowed: false, wantReason: ReasonNotTrailing,
		},
		{
			name: "before window", team: speedway.Home, heat: 4,
			allowed: false, wantReason: ReasonOutsideWindow,
		},
		{
			name: "after window", team: speedway.Home, heat: 14,
			allowed: false, wantReason: ReasonOutsideWindow,
		},
		{
			name: "exactly minimum deficit at window start", team: speedway.Home, heat: 5,
			mutate:  func(m *speedway.Match) { m.HomeScore, m.AwayScore = 10, 16 },
			allowed: true,
		},
		{
			name: "one point short of minimum deficit", team: speedway.Home, heat: 5,
			mutate:  func(m *speedway.Match) { m.HomeScore, m.AwayScore = 11, 16 },
			allowed: false, wantReason: ReasonDeficitTooSmall,
		},
		{
			name: "already used", team: speedway.Home, heat: 7,
			mutate:  func(m *speedway.Match) { m.JokerUsedHome = true },
			allowed: false, wantReason: ReasonTacticalUsed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := trailingMatch()
			if tt.mutate != nil {
				tt.mutate(m)
			}
			d := CanUseTactical(cfg, m, tt.team, tt.heat)
			if d.Allowed != tt.allowed {
				t.Fatalf("CanUseTactical() = %+v, want allowed=%v", d, tt.allowed)
			}
			if !tt.allowed && d.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestCheckSubstitution(t *testing.T) {
	cfg := Default()
	reserve := speedway.Rider{ID: "res1", TeamID: "team-home", Name: "Home Reserve", IsReserve: true}

	t.Run("permits home reserve in heat 7", func(t *testing.T) {
		m := trailingMatch()
		d := CheckSubstitution(cfg, m, m.HeatByNumber(7), speedway.Gate1, reserve)
		if !d.Allowed {
			t.Fatalf("expected permit, got %+v", d)
		}
		d = CheckSubstitution(cfg, m, m.HeatByNumber(7), speedway.Gate3, reserve)
		if !d.Allowed {
			t.Fatalf("expected permit on gate 3 as well, got %+v", d)
		}
	})

	t.Run("rejects second tactical in same heat", func(t *testing.T) {
		m := trailingMatch()
		h := m.HeatByNumber(7)
		h.Tactical = &speedway.TacticalPick{Team: speedway.Home, Gate: speedway.Gate3, RiderID: "other"}
		d := CheckSubstitution(cfg, m, h, speedway.Gate1, reserve)
		if d.Allowed || d.Reason != ReasonHeatHasTactical {
			t.Errorf("expected heat_already_has_tactical, got %+v", d)
		}
	})

	t.Run("allows revising the same gate", func(t *testing.T) {
		m := trailingMatch()
		h := m.HeatByNumber(7)
		h.Tactical = &speedway.TacticalPick{Team: speedway.Home, Gate: speedway.Gate1, RiderID: "other"}
		d := CheckSubstitution(cfg, m, h, speedway.Gate1, reserve)
		if !d.Allowed {
			t.Errorf("revision of the same gate should be permitted, got %+v", d)
		}
	})

	t.Run("allows revising after the joker is committed", func(t *testing.T) {
		// A staged pick persists with the team's joker flag set; the
		// revision must not trip the already-used gate.
		m := trailingMatch()
		h := m.HeatByNumber(7)
		h.Tactical = &speedway.TacticalPick{Team: speedway.Home, Gate: speedway.Gate1, RiderID: "other"}
		m.SetJokerUsed(speedway.Home)
		d := CheckSubstitution(cfg, m, h, speedway.Gate1, reserve)
		if !d.Allowed {
			t.Fatalf("revision with the joker committed should be permitted, got %+v", d)
		}

		// Moving the pick to another gate is a new substitution, not a
		// revision, and the joker is spent.
		d = CheckSubstitution(cfg, m, h, speedway.Gate3, reserve)
		if d.Allowed || d.Reason != ReasonTacticalUsed {
			t.Errorf("expected tactical_already_used on a different gate, got %+v", d)
		}
	})

	t.Run("rejects rider from the wrong team", func(t *testing.T) {
		m := trailingMatch()
		awayRider := speedway.Rider{ID: "x", TeamID: "team-away", Name: "Wrong Side"}
		d := CheckSubstitution(cfg, m, m.HeatByNumber(7), speedway.Gate1, awayRider)
		if d.Allowed || d.Reason != ReasonWrongTeam {
			t.Errorf("expected rider_wrong_team, got %+v", d)
		}
	})

	t.Run("rejects completed heat", func(t *testing.T) {
		m := trailingMatch()
		h := m.HeatByNumber(7)
		h.Status = speedway.HeatCompleted
		d := CheckSubstitution(cfg, m, h, speedway.Gate1, reserve)
		if d.Allowed || d.Reason != ReasonHeatCompleted {
			t.Errorf("expected heat_completed, got %+v", d)
		}
	})
}

// assignRiderToHeats puts a rider into gate 1 of the first n heats.
func assignRiderToHeats(m *speedway.Match, r speedway.Rider, n int) {
	for i := 0; i < n; i++ {
		m.Heats[i].Riders[speedway.Gate1] = speedway.RiderAssignment{
			RiderID: r.ID, Name: r.Name, Team: speedway.Home,
		}
	}
}

func TestCheckSubstitution_HeatLimits(t *testing.T) {
	cfg := Default()

	t.Run("main rider capped at six heats", func(t *testing.T) {
		main := speedway.Rider{ID: "m6", TeamID: "team-home", Name: "Main Six"}
		m := trailingMatch()
		assignRiderToHeats(m, main, 6)
		d := CheckSubstitution(cfg, m, m.HeatByNumber(8), speedway.Gate3, main)
		if d.Allowed || d.Reason != ReasonRiderAtHeatLimit {
			t.Errorf("main rider with 6 assignments must not get a 7th, got %+v", d)
		}

		m = trailingMatch()
		assignRiderToHeats(m, main, 5)
		if d := CheckSubstitution(cfg, m, m.HeatByNumber(8), speedway.Gate3, main); !d.Allowed {
			t.Errorf("main rider with 5 assignments should be allowed a 6th, got %+v", d)
		}
	})

	t.Run("reserve capped at five heats", func(t *testing.T) {
		res := speedway.Rider{ID: "r5", TeamID: "team-home", Name: "Reserve Five", IsReserve: true}
		m := trailingMatch()
		assignRiderToHeats(m, res, 5)
		d := CheckSubstitution(cfg, m, m.HeatByNumber(8), speedway.Gate3, res)
		if d.Allowed || d.Reason != ReasonRiderAtHeatLimit {
			t.Errorf("reserve with 5 assignments must not get a 6th, got %+v", d)
		}
	})

	t.Run("rider replacement raises the caps", func(t *testing.T) {
		rr := cfg
		rr.RideLimits.RiderReplacement = true
		main := speedway.Rider{ID: "m6", TeamID: "team-home", Name: "Main Six"}
		m := trailingMatch()
		assignRiderToHeats(m, main, 6)
		if d := CheckSubstitution(rr, m, m.HeatByNumber(8), speedway.Gate3, main); !d.Allowed {
			t.Errorf("RR main limit is 7, 6 rides should pass, got %+v", d)
		}
	})

	t.Run("swapping a rider into their own slot adds no ride", func(t *testing.T) {
		main := speedway.Rider{ID: "m6", TeamID: "team-home", Name: "Main Six"}
		m := trailingMatch()
		assignRiderToHeats(m, main, 6)
		// Heat 6 already has this rider in gate 1; re-picking them there
		// keeps the count at six.
		if d := CheckSubstitution(cfg, m, m.HeatByNumber(6), speedway.Gate1, main); !d.Allowed {
			t.Errorf("re-assigning a rider to their own gate should pass, got %+v", d)
		}
	})
}

func TestCanChooseGates(t *testing.T) {
	min := Default().LaneChoiceDeficit

	m := trailingMatch() // home trails by 12
	if !CanChooseGates(min, m, speedway.Home) {
		t.Error("home trailing by 12 should have lane choice")
	}
	if CanChooseGates(min, m, speedway.Away) {
		t.Error("the leading team never has lane choice")
	}

	m.HomeScore, m.AwayScore = 20, 27 // deficit 7
	if CanChooseGates(min, m, speedway.Home) {
		t.Error("deficit below 8 grants no lane choice")
	}
	if !LaneChoiceLapsed(min, m) {
		t.Error("lane choices must lapse once no side qualifies")
	}

	m.HomeScore, m.AwayScore = 20, 28 // deficit exactly 8
	if !CanChooseGates(min, m, speedway.Home) {
		t.Error("deficit of exactly 8 grants lane choice")
	}
	if LaneChoiceLapsed(min, m) {
		t.Error("lane choice has not lapsed at deficit 8")
	}
}
