package rules

import (
	"testing"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

func fourRiderHeat(n int) *speedway.Heat {
	return &speedway.Heat{
		HeatNumber: n,
		Status:     speedway.HeatUpcoming,
		Riders: map[speedway.Gate]speedway.RiderAssignment{
			speedway.Gate1: {RiderID: "h1", Name: "Home One", Team: speedway.Home},
			speedway.Gate2: {RiderID: "a1", Name: "Away One", Team: speedway.Away},
			speedway.Gate3: {RiderID: "h2", Name: "Home Two", Team: speedway.Home},
			speedway.Gate4: {RiderID: "a2", Name: "Away Two", Team: speedway.Away},
		},
	}
}

func completedForm(positions map[string]int) map[string]DraftResult {
	form := make(map[string]DraftResult, len(positions))
	for id, pos := range positions {
		form[id] = DraftResult{Status: speedway.ResultCompleted, Position: pos}
	}
	return form
}

func TestHeatCompleteFromForm(t *testing.T) {
	heat := fourRiderHeat(1)

	tests := []struct {
		name string
		form map[string]DraftResult
		want bool
	}{
		{
			name: "all completed distinct positions",
			form: completedForm(map[string]int{"h1": 1, "a1": 2, "h2": 3, "a2": 4}),
			want: true,
		},
		{
			name: "missing rider entry",
			form: completedForm(map[string]int{"h1": 1, "a1": 2, "h2": 3}),
			want: false,
		},
		{
			name: "duplicate position",
			form: completedForm(map[string]int{"h1": 1, "a1": 1, "h2": 3, "a2": 4}),
			want: false,
		},
		{
			name: "position out of range",
			form: completedForm(map[string]int{"h1": 1, "a1": 2, "h2": 3, "a2": 5}),
			want: false,
		},
		{
			name: "position zero",
			form: completedForm(map[string]int{"h1": 0, "a1": 2, "h2": 3, "a2": 4}),
			want: false,
		},
		{
			name: "excluded rider needs no position",
			form: map[string]DraftResult{
				"h1": {Status: speedway.ResultCompleted, Position: 1},
				"a1": {Status: speedway.ResultCompleted, Position: 2},
				"h2": {Status: speedway.ResultCompleted, Position: 3},
				"a2": {Status: speedway.ResultExcluded},
			},
			want: true,
		},
		{
			name: "unknown status",
			form: map[string]DraftResult{
				"h1": {Status: "dnf", Position: 1},
				"a1": {Status: speedway.ResultCompleted, Position: 2},
				"h2": {Status: speedway.ResultCompleted, Position: 3},
				"a2": {Status: speedway.ResultCompleted, Position: 4},
			},
			want: false,
		},
		{
			name: "empty form",
			form: map[string]DraftResult{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeatCompleteFromForm(heat, tt.form); got != tt.want {
				t.Errorf("HeatCompleteFromForm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeatCompleteFromForm_NoRiders(t *testing.T) {
	heat := &speedway.Heat{HeatNumber: 1, Riders: map[speedway.Gate]speedway.RiderAssignment{}}
	if HeatCompleteFromForm(heat, map[string]DraftResult{}) {
		t.Error("heat with no assigned riders should not be complete")
	}
	if HeatCompleteFromForm(nil, nil) {
		t.Error("nil heat should not be complete")
	}
}

func TestHeatSavedComplete(t *testing.T) {
	heat := fourRiderHeat(3)

	heat.Results = nil
	if HeatSavedComplete(heat) {
		t.Error("heat with zero recorded results must be incomplete, not vacuously valid")
	}

	heat.Results = []speedway.Result{
		{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1},
		{RiderID: "a1", Status: speedway.ResultCompleted, Position: 2},
		{RiderID: "h2", Status: speedway.ResultCompleted, Position: 3},
		{RiderID: "a2", Status: speedway.ResultCompleted, Position: 4},
	}
	if !HeatSavedComplete(heat) {
		t.Error("fully recorded heat should be saved complete")
	}

	heat.Results[3].Position = 2
	if HeatSavedComplete(heat) {
		t.Error("duplicate positions should fail the saved-complete check")
	}

	heat.Results[3] = speedway.Result{RiderID: "a2", Status: speedway.ResultExcluded}
	if !HeatSavedComplete(heat) {
		t.Error("excluded rider should not block the saved-complete check")
	}

	heat.Results = heat.Results[:3]
	if HeatSavedComplete(heat) {
		t.Error("a rider without a recorded result should fail the check")
	}
}

func TestHeatEnterable_StrictOrder(t *testing.T) {
	m := &speedway.Match{}
	for i := 1; i <= speedway.HeatsPerMatch; i++ {
		m.Heats = append(m.Heats, *fourRiderHeat(i))
	}

	if !HeatEnterable(m, 1) {
		t.Error("heat 1 has no predecessor and must always be enterable")
	}
	if HeatEnterable(m, 2) {
		t.Error("heat 2 must not be enterable before heat 1 is saved complete")
	}

	m.Heats[0].Results = []speedway.Result{
		{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1},
		{RiderID: "a1", Status: speedway.ResultCompleted, Position: 2},
		{RiderID: "h2", Status: speedway.ResultCompleted, Position: 3},
		{RiderID: "a2", Status: speedway.ResultCompleted, Position: 4},
	}
	if !HeatEnterable(m, 2) {
		t.Error("heat 2 should be enterable once heat 1 is saved complete")
	}
	if HeatEnterable(m, 3) {
		t.Error("heat 3 must wait for heat 2")
	}

	if HeatEnterable(m, 0) || HeatEnterable(m, speedway.HeatsPerMatch+1) {
		t.Error("out-of-range heat numbers are never enterable")
	}
}
