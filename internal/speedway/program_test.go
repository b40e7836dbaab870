package speedway

import (
	"fmt"
	"testing"
)

func lineup(teamID, prefix string) []Rider {
	riders := make([]Rider, 0, 6)
	for i := 0; i < 6; i++ {
		riders = append(riders, Rider{
			ID:     fmt.Sprintf("%s-%d", prefix, i+1),
			TeamID: teamID,
			Name:   fmt.Sprintf("%s Rider %d", prefix, i+1),
			Number: i + 1,
		})
	}
	return riders
}

func TestGenerateHeats_Program(t *testing.T) {
	heats := GenerateHeats("Dackarna", "Smederna", lineup("t1", "home"), lineup("t2", "away"))

	if len(heats) != HeatsPerMatch {
		t.Fatalf("generated %d heats, want %d", len(heats), HeatsPerMatch)
	}

	rideCounts := make(map[string]int)
	for _, h := range heats {
		if len(h.Riders) != 4 {
			t.Errorf("heat %d has %d riders, want 4", h.HeatNumber, len(h.Riders))
		}
		if h.Status != HeatUpcoming {
			t.Errorf("heat %d status = %s, want upcoming", h.HeatNumber, h.Status)
		}
		if h.IsTacticalHeat {
			t.Errorf("heat %d marked tactical before any substitution", h.HeatNumber)
		}
		for _, gate := range Gates {
			ra, ok := h.Riders[gate]
			if !ok {
				t.Fatalf("heat %d gate %d unassigned", h.HeatNumber, gate)
			}
			if want := TeamForGate(gate); ra.Team != want {
				t.Errorf("heat %d gate %d team = %s, want %s", h.HeatNumber, gate, ra.Team, want)
			}
			if want := HelmetColor(ra.Team, gate); ra.HelmetColor != want {
				t.Errorf("heat %d gate %d helmet = %s, want %s", h.HeatNumber, gate, ra.HelmetColor, want)
			}
			rideCounts[ra.RiderID]++
		}
	}

	// 60 gate slots distributed over the twelve main riders.
	total := 0
	for _, n := range rideCounts {
		total += n
	}
	if total != HeatsPerMatch*4 {
		t.Errorf("total gate assignments = %d, want %d", total, HeatsPerMatch*4)
	}
	if len(rideCounts) != 12 {
		t.Errorf("distinct riders scheduled = %d, want 12", len(rideCounts))
	}
}

func TestGenerateHeats_PlaceholderFallback(t *testing.T) {
	heats := GenerateHeats("Dackarna", "Smederna", lineup("t1", "home")[:4], lineup("t2", "away"))
	if len(heats) != HeatsPerMatch {
		t.Fatalf("generated %d heats, want %d", len(heats), HeatsPerMatch)
	}
	ra := heats[0].Riders[Gate1]
	if ra.Name != "Dackarna Rider 1A" {
		t.Errorf("placeholder name = %q", ra.Name)
	}
	ra = heats[2].Riders[Gate4]
	if ra.Team != Away || ra.Name != "Smederna Rider 3B" {
		t.Errorf("placeholder away assignment = %+v", ra)
	}
}

func TestHelmetColor(t *testing.T) {
	tests := []struct {
		team TeamSide
		gate Gate
		want string
	}{
		{Home, Gate1, HelmetRed},
		{Home, Gate3, HelmetRed},
		{Home, Gate2, HelmetBlue},
		{Home, Gate4, HelmetBlue},
		{Away, Gate2, HelmetYellow},
		{Away, Gate4, HelmetYellow},
		{Away, Gate1, HelmetWhite},
		{Away, Gate3, HelmetWhite},
	}
	for _, tt := range tests {
		if got := HelmetColor(tt.team, tt.gate); got != tt.want {
			t.Errorf("HelmetColor(%s, %d) = %s, want %s", tt.team, tt.gate, got, tt.want)
		}
	}
}

func TestApplyAndRevertLaneChoice(t *testing.T) {
	heats := GenerateHeats("Dackarna", "Smederna", lineup("t1", "home"), lineup("t2", "away"))
	h := &heats[7]
	origGate1 := h.Riders[Gate1]
	origGate2 := h.Riders[Gate2]

	ApplyLaneChoice(h, Away, PairInside)

	if h.LaneChoice == nil {
		t.Fatal("lane choice not recorded")
	}
	if got := h.Riders[Gate1]; got.RiderID != origGate2.RiderID {
		t.Errorf("gate 1 after swap = %s, want %s", got.RiderID, origGate2.RiderID)
	}
	if got := h.Riders[Gate1]; got.HelmetColor != HelmetColor(Away, Gate1) {
		t.Errorf("helmet color must follow the new gate, got %s", got.HelmetColor)
	}

	// Choosing the pair the team already occupies is a no-op.
	before := h.Riders[Gate1].RiderID
	ApplyLaneChoice(h, Away, PairInside)
	if h.Riders[Gate1].RiderID != before {
		t.Error("re-choosing the same pair must not swap again")
	}

	RevertLaneChoice(h)
	if h.LaneChoice != nil {
		t.Error("revert should clear the recorded choice")
	}
	if got := h.Riders[Gate1]; got.RiderID != origGate1.RiderID {
		t.Errorf("gate 1 after revert = %s, want %s", got.RiderID, origGate1.RiderID)
	}
}

func TestRevertLapsedLaneChoices_SkipsCompletedHeats(t *testing.T) {
	heats := GenerateHeats("Dackarna", "Smederna", lineup("t1", "home"), lineup("t2", "away"))
	m := &Match{Heats: heats}

	ApplyLaneChoice(&m.Heats[5], Away, PairInside)
	ApplyLaneChoice(&m.Heats[6], Away, PairInside)
	m.Heats[5].Status = HeatCompleted

	reverted := RevertLapsedLaneChoices(m)
	if len(reverted) != 1 || reverted[0] != m.Heats[6].HeatNumber {
		t.Errorf("reverted = %v, want only heat %d", reverted, m.Heats[6].HeatNumber)
	}
	if m.Heats[5].LaneChoice == nil {
		t.Error("completed heats keep their recorded layout")
	}
}

func TestRideCount(t *testing.T) {
	home := lineup("t1", "home")
	heats := GenerateHeats("Dackarna", "Smederna", home, lineup("t2", "away"))
	m := &Match{Heats: heats}

	// Rider index 0 rides home gates in program heats 1, 2, 7, 12 and 13.
	if got := m.RideCount(home[0].ID); got != 5 {
		t.Errorf("RideCount(%s) = %d, want 5", home[0].ID, got)
	}
	if got := m.RideCount("nobody"); got != 0 {
		t.Errorf("RideCount(nobody) = %d, want 0", got)
	}
}
