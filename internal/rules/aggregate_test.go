package rules

import (
	"math/rand"
	"testing"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

func scoredHeat(n int, results ...speedway.Result) speedway.Heat {
	h := *fourRiderHeat(n)
	h.Status = speedway.HeatCompleted
	h.Results = results
	return h
}

func TestMatchTotals(t *testing.T) {
	m := &speedway.Match{
		Heats: []speedway.Heat{
			scoredHeat(1,
				speedway.Result{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1, Points: 3},
				speedway.Result{RiderID: "h2", Status: speedway.ResultCompleted, Position: 2, Points: 2, BonusPoints: 1},
				speedway.Result{RiderID: "a1", Status: speedway.ResultCompleted, Position: 3, Points: 1},
				speedway.Result{RiderID: "a2", Status: speedway.ResultCompleted, Position: 4, Points: 0},
			),
			scoredHeat(2,
				speedway.Result{RiderID: "a1", Status: speedway.ResultCompleted, Position: 1, Points: 3},
				speedway.Result{RiderID: "h1", Status: speedway.ResultCompleted, Position: 2, Points: 2},
				speedway.Result{RiderID: "a2", Status: speedway.ResultCompleted, Position: 3, Points: 1},
				speedway.Result{RiderID: "h2", Status: speedway.ResultExcluded},
			),
		},
	}

	got := MatchTotals(m)
	want := speedway.ScorePair{HomeScore: 3 + 2 + 1 + 2, AwayScore: 1 + 0 + 3 + 1}
	if got != want {
		t.Errorf("MatchTotals() = %+v, want %+v", got, want)
	}
}

func TestMatchTotals_SkipsUnresolvableRiders(t *testing.T) {
	m := &speedway.Match{
		Heats: []speedway.Heat{
			scoredHeat(1,
				speedway.Result{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1, Points: 3},
				speedway.Result{RiderID: "ghost", Status: speedway.ResultCompleted, Position: 2, Points: 2},
			),
		},
	}
	got := MatchTotals(m)
	if got.HomeScore != 3 || got.AwayScore != 0 {
		t.Errorf("unresolvable rider must be skipped, got %+v", got)
	}
}

func TestMatchTotals_OrderIndependent(t *testing.T) {
	var heats []speedway.Heat
	for i := 1; i <= speedway.HeatsPerMatch; i++ {
		heats = append(heats, scoredHeat(i,
			speedway.Result{RiderID: "h1", Status: speedway.ResultCompleted, Position: 1, Points: 3},
			speedway.Result{RiderID: "a1", Status: speedway.ResultCompleted, Position: 2, Points: 2},
			speedway.Result{RiderID: "h2", Status: speedway.ResultCompleted, Position: 3, Points: 1, BonusPoints: 1},
			speedway.Result{RiderID: "a2", Status: speedway.ResultCompleted, Position: 4, Points: 0},
		))
	}
	m := &speedway.Match{Heats: heats}
	want := MatchTotals(m)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]speedway.Heat, len(heats))
		copy(shuffled, heats)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for k := range shuffled {
			rs := shuffled[k].Results
			rng.Shuffle(len(rs), func(i, j int) { rs[i], rs[j] = rs[j], rs[i] })
		}
		if got := MatchTotals(&speedway.Match{Heats: shuffled}); got != want {
			t.Fatalf("shuffled totals = %+v, want %+v", got, want)
		}
	}
}

func TestConfirmable(t *testing.T) {
	m := &speedway.Match{}
	for i := 1; i <= speedway.HeatsPerMatch; i++ {
		m.Heats = append(m.Heats, *fourRiderHeat(i))
	}
	if Confirmable(m) {
		t.Error("match with no completed heats must not be confirmable")
	}
	for i := range m.Heats {
		m.Heats[i].Status = speedway.HeatCompleted
	}
	if !Confirmable(m) {
		t.Error("match with all 15 heats completed must be confirmable")
	}
	m.Heats[14].Status = speedway.HeatUpcoming
	if Confirmable(m) {
		t.Error("14 of 15 completed heats is not confirmable")
	}
}
