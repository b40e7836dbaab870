package rules

import (
	"testing"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		user     speedway.ScorePair
		official speedway.ScorePair
		want     []speedway.DiscrepancyType
	}{
		{
			name: "identical scores",
			user: speedway.ScorePair{HomeScore: 48, AwayScore: 42},
			official: speedway.ScorePair{HomeScore: 48, AwayScore: 42},
		},
		{
			name:     "home differs",
			user:     speedway.ScorePair{HomeScore: 47, AwayScore: 42},
			official: speedway.ScorePair{HomeScore: 48, AwayScore: 42},
			want:     []speedway.DiscrepancyType{speedway.DiscrepancyHomeScore},
		},
		{
			name:     "away differs",
			user:     speedway.ScorePair{HomeScore: 48, AwayScore: 41},
			official: speedway.ScorePair{HomeScore: 48, AwayScore: 42},
			want:     []speedway.DiscrepancyType{speedway.DiscrepancyAwayScore},
		},
		{
			name:     "both differ",
			user:     speedway.ScorePair{HomeScore: 40, AwayScore: 50},
			official: speedway.ScorePair{HomeScore: 48, AwayScore: 42},
			want:     []speedway.DiscrepancyType{speedway.DiscrepancyHomeScore, speedway.DiscrepancyAwayScore},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.user, tt.official)
			if len(got) != len(tt.want) {
				t.Fatalf("Compare() = %v, want types %v", got, tt.want)
			}
			for i, d := range got {
				if d.Type != tt.want[i] {
					t.Errorf("discrepancy %d type = %s, want %s", i, d.Type, tt.want[i])
				}
			}
		})
	}
}

func TestCompare_RetainsBothValues(t *testing.T) {
	got := Compare(
		speedway.ScorePair{HomeScore: 47, AwayScore: 42},
		speedway.ScorePair{HomeScore: 48, AwayScore: 42},
	)
	if len(got) != 1 {
		t.Fatalf("expected exactly one discrepancy, got %v", got)
	}
	if got[0].UserValue != 47 || got[0].OfficialValue != 48 {
		t.Errorf("both values must be retained, got %+v", got[0])
	}
}

func TestStatusFor(t *testing.T) {
	official := &speedway.ScorePair{HomeScore: 48, AwayScore: 42}

	if s := StatusFor(nil, nil); s != speedway.UserMatchCompleted {
		t.Errorf("no official result: status = %s, want completed", s)
	}
	if s := StatusFor(official, nil); s != speedway.UserMatchValidated {
		t.Errorf("no discrepancies: status = %s, want validated", s)
	}
	open := []speedway.Discrepancy{{Type: speedway.DiscrepancyHomeScore, UserValue: 47, OfficialValue: 48}}
	if s := StatusFor(official, open); s != speedway.UserMatchDisputed {
		t.Errorf("unresolved discrepancy: status = %s, want disputed", s)
	}
	kept := []speedway.Discrepancy{{Type: speedway.DiscrepancyHomeScore, UserValue: 47, OfficialValue: 48, Resolution: "kept"}}
	if s := StatusFor(official, kept); s != speedway.UserMatchDisputed {
		t.Errorf("kept discrepancy: status = %s, want disputed", s)
	}
}

func disputedUserMatch() *speedway.UserMatch {
	official := &speedway.ScorePair{HomeScore: 48, AwayScore: 42}
	um := &speedway.UserMatch{
		ID:          "um1",
		UserResults: speedway.ScoreSheet{HomeScore: 47, AwayScore: 42},
	}
	ds := Compare(
		speedway.ScorePair{HomeScore: um.UserResults.HomeScore, AwayScore: um.UserResults.AwayScore},
		*official,
	)
	um.OfficialResults = official
	um.Discrepancies = ds
	um.Status = StatusFor(official, ds)
	return um
}

func TestResolve_AcceptOfficial(t *testing.T) {
	um := disputedUserMatch()
	if um.Status != speedway.UserMatchDisputed {
		t.Fatalf("precondition: status = %s, want disputed", um.Status)
	}
	if !Resolve(um, AcceptOfficial) {
		t.Fatal("Resolve(accept_official) should succeed")
	}
	if um.Status != speedway.UserMatchValidated {
		t.Errorf("status = %s, want validated", um.Status)
	}
	if um.UserResults.HomeScore != 48 || um.UserResults.AwayScore != 42 {
		t.Errorf("user values must be overwritten with official, got %+v", um.UserResults)
	}
	if len(um.Discrepancies) != 0 {
		t.Errorf("discrepancies must be cleared, got %v", um.Discrepancies)
	}
}

func TestResolve_KeepUser(t *testing.T) {
	um := disputedUserMatch()
	if !Resolve(um, KeepUser) {
		t.Fatal("Resolve(keep_user) should succeed")
	}
	if um.Status != speedway.UserMatchDisputed {
		t.Errorf("status = %s, want disputed", um.Status)
	}
	if um.UserResults.HomeScore != 47 {
		t.Errorf("user value must be retained, got %d", um.UserResults.HomeScore)
	}
	if um.Discrepancies[0].Resolution != "kept" {
		t.Errorf("discrepancy should be marked kept, got %+v", um.Discrepancies[0])
	}
}

func TestResolve_InvalidAction(t *testing.T) {
	um := disputedUserMatch()
	if Resolve(um, "merge") {
		t.Error("unknown action must be rejected")
	}
	if um.Status != speedway.UserMatchDisputed {
		t.Errorf("rejected resolution must leave the match untouched, status = %s", um.Status)
	}
}

func TestRevalidate(t *testing.T) {
	um := &speedway.UserMatch{
		ID:          "um2",
		Status:      speedway.UserMatchCompleted,
		UserResults: speedway.ScoreSheet{HomeScore: 45, AwayScore: 45},
	}

	// Official results arrive and match.
	Revalidate(um, &speedway.ScorePair{HomeScore: 45, AwayScore: 45})
	if um.Status != speedway.UserMatchValidated || len(um.Discrepancies) != 0 {
		t.Errorf("clean comparison: got status %s, discrepancies %v", um.Status, um.Discrepancies)
	}

	// Corrected official results disagree.
	Revalidate(um, &speedway.ScorePair{HomeScore: 46, AwayScore: 44})
	if um.Status != speedway.UserMatchDisputed || len(um.Discrepancies) != 2 {
		t.Errorf("diverging comparison: got status %s, discrepancies %v", um.Status, um.Discrepancies)
	}

	// Official result withdrawn.
	Revalidate(um, nil)
	if um.Status != speedway.UserMatchCompleted || um.Discrepancies != nil {
		t.Errorf("no official result: got status %s, discrepancies %v", um.Status, um.Discrepancies)
	}
}
