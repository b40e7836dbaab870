package rules

import (
	"testing"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// heatWithOrder builds a four-rider heat whose completed results place the
// given rider ids in positions 1..n. Riders h1/h2 ride home, a1/a2 away.
func heatWithOrder(order ...string) *speedway.Heat {
	h := fourRiderHeat(7)
	for i, id := range order {
		h.Results = append(h.Results, speedway.Result{
			RiderID:  id,
			Status:   speedway.ResultCompleted,
			Position: i + 1,
		})
	}
	return h
}

func TestBasePoints(t *testing.T) {
	table := Default().BasePoints

	tests := []struct {
		name string
		res  speedway.Result
		want int
	}{
		{"first", speedway.Result{Status: speedway.ResultCompleted, Position: 1}, 3},
		{"second", speedway.Result{Status: speedway.ResultCompleted, Position: 2}, 2},
		{"third", speedway.Result{Status: speedway.ResultCompleted, Position: 3}, 1},
		{"fourth", speedway.Result{Status: speedway.ResultCompleted, Position: 4}, 0},
		{"excluded", speedway.Result{Status: speedway.ResultExcluded, Position: 1}, 0},
		{"position out of range", speedway.Result{Status: speedway.ResultCompleted, Position: 9}, 0},
		{"no position", speedway.Result{Status: speedway.ResultCompleted}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BasePoints(table, tt.res); got != tt.want {
				t.Errorf("BasePoints(%+v) = %d, want %d", tt.res, got, tt.want)
			}
		})
	}
}

func TestHeatBonuses(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		want  map[string]int
	}{
		{
			// X X Y Y: 2nd same team as 1st gets the bonus, 3rd does not.
			name:  "five-one up front",
			order: []string{"h1", "h2", "a1", "a2"},
			want:  map[string]int{"h2": 1},
		},
		{
			// X Y Y X: 3rd same team as 2nd gets the bonus.
			name:  "three-three split",
			order: []string{"h1", "a1", "a2", "h2"},
			want:  map[string]int{"a2": 1},
		},
		{
			name:  "alternating teams no bonus",
			order: []string{"h1", "a1", "h2", "a2"},
			want:  map[string]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeatBonuses(heatWithOrder(tt.order...))
			if len(got) != len(tt.want) {
				t.Fatalf("HeatBonuses() = %v, want %v", got, tt.want)
			}
			for id, b := range tt.want {
				if got[id] != b {
					t.Errorf("bonus for %s = %d, want %d", id, got[id], b)
				}
			}
		})
	}
}

func TestHeatBonuses_BothPairsApply(t *testing.T) {
	// Three home riders in front: 1st/2nd same team and 2nd/3rd same team,
	// so both independent bonuses apply in the same heat.
	h := &speedway.Heat{
		HeatNumber: 9,
		Riders: map[speedway.Gate]speedway.RiderAssignment{
			speedway.Gate1: {RiderID: "h1", Team: speedway.Home},
			speedway.Gate2: {RiderID: "h2", Team: speedway.Home},
			speedway.Gate3: {RiderID: "h3", Team: speedway.Home},
			speedway.Gate4: {RiderID: "a1", Team: speedway.Away},
		},
		Results: []speedway.Result{
			{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1},
			{RiderID: "h2", Status: speedway.ResultCompleted, Position: 2},
			{RiderID: "h3", Status: speedway.ResultCompleted, Position: 3},
			{RiderID: "a1", Status: speedway.ResultCompleted, Position: 4},
		},
	}
	got := HeatBonuses(h)
	if got["h2"] != 1 || got["h3"] != 1 {
		t.Errorf("expected bonuses for h2 and h3, got %v", got)
	}
	if len(got) != 2 {
		t.Errorf("no other rider may receive a bonus, got %v", got)
	}
}

func TestHeatBonuses_FewerThanThreeFinishers(t *testing.T) {
	h := fourRiderHeat(5)
	h.Results = []speedway.Result{
		{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1},
		{RiderID: "h2", Status: speedway.ResultCompleted, Position: 2},
		{RiderID: "a1", Status: speedway.ResultExcluded},
		{RiderID: "a2", Status: speedway.ResultExcluded},
	}
	if got := HeatBonuses(h); len(got) != 0 {
		t.Errorf("fewer than three finishers must yield no bonuses, got %v", got)
	}
}

func TestHeatBonuses_ExcludedDoesNotBreakRanking(t *testing.T) {
	// a1 excluded; the remaining finishers rank 1-2-3 by relative order and
	// h1/h2 in the top two still form a 5-1 pair.
	h := fourRiderHeat(11)
	h.Results = []speedway.Result{
		{RiderID: "a1", Status: speedway.ResultExcluded},
		{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1},
		{RiderID: "h2", Status: speedway.ResultCompleted, Position: 2},
		{RiderID: "a2", Status: speedway.ResultCompleted, Position: 3},
	}
	got := HeatBonuses(h)
	if got["h2"] != 1 || len(got) != 1 {
		t.Errorf("expected only h2 to earn a bonus, got %v", got)
	}
}

func TestScoreHeat(t *testing.T) {
	cfg := Default()
	heat := fourRiderHeat(2)
	form := map[string]DraftResult{
		"h1": {Status: speedway.ResultCompleted, Position: 1},
		"h2": {Status: speedway.ResultCompleted, Position: 2},
		"a1": {Status: speedway.ResultCompleted, Position: 3},
		"a2": {Status: speedway.ResultExcluded},
	}

	results := ScoreHeat(cfg, heat, form)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	byID := make(map[string]speedway.Result, len(results))
	for _, r := range results {
		byID[r.RiderID] = r
	}

	if r := byID["h1"]; r.Points != 3 || r.BonusPoints != 0 {
		t.Errorf("h1 = %+v, want 3 points no bonus", r)
	}
	if r := byID["h2"]; r.Points != 2 || r.BonusPoints != 1 {
		t.Errorf("h2 = %+v, want 2 points +1 bonus", r)
	}
	if r := byID["a1"]; r.Points != 1 || r.BonusPoints != 0 {
		t.Errorf("a1 = %+v, want 1 point no bonus", r)
	}
	if r := byID["a2"]; r.Status != speedway.ResultExcluded || r.Points != 0 || r.Position != 0 {
		t.Errorf("a2 = %+v, want excluded with zero points and no position", r)
	}
}

func TestScoreHeat_CustomTable(t *testing.T) {
	cfg := Default()
	cfg.BasePoints = [4]int{4, 3, 2, 1}
	heat := fourRiderHeat(2)
	results := ScoreHeat(cfg, heat, completedForm(map[string]int{"h1": 1, "a1": 2, "h2": 3, "a2": 4}))
	total := 0
	for _, r := range results {
		total += r.Points
	}
	if total != 10 {
		t.Errorf("custom table total = %d, want 10", total)
	}
}
