package speedway

import "fmt"

// Helmet colors are fixed by team and gate: home rides red from gates 1 and
// 3 and blue from 2 and 4; away rides yellow from gates 2 and 4 and white
// from 1 and 3. The hex values match the broadcast palette.
const (
	HelmetRed    = "#DC2626"
	HelmetBlue   = "#1D4ED8"
	HelmetYellow = "#EAB308"
	HelmetWhite  = "#FFFFFF"
)

// HelmetColor returns the deterministic helmet color for a side and gate.
func HelmetColor(team TeamSide, gate Gate) string {
	inside := gate == Gate1 || gate == Gate3
	if team == Home {
		if inside {
			return HelmetRed
		}
		return HelmetBlue
	}
	if inside {
		return HelmetWhite
	}
	return HelmetYellow
}

// heatProgram is the predetermined gate plan for the 15 heats. Each entry
// maps gate to the zero-based index of the rider in the team's declared
// lineup of six main riders. Gates 1/3 draw from the home lineup, 2/4 from
// the away lineup.
var heatProgram = [HeatsPerMatch]map[Gate]int{
	{Gate1: 0, Gate2: 0, Gate3: 1, Gate4: 1},
	{Gate1: 1, Gate2: 2, Gate3: 0, Gate4: 2},
	{Gate1: 2, Gate2: 1, Gate3: 3, Gate4: 0},
	{Gate1: 3, Gate2: 3, Gate3: 2, Gate4: 4},
	{Gate1: 4, Gate2: 0, Gate3: 5, Gate4: 3},
	{Gate1: 5, Gate2: 5, Gate3: 4, Gate4: 1},
	{Gate1: 0, Gate2: 4, Gate3: 1, Gate4: 5},
	{Gate1: 1, Gate2: 3, Gate3: 2, Gate4: 0},
	{Gate1: 2, Gate2: 2, Gate3: 3, Gate4: 3},
	{Gate1: 3, Gate2: 1, Gate3: 4, Gate4: 2},
	{Gate1: 4, Gate2: 5, Gate3: 5, Gate4: 4},
	{Gate1: 5, Gate2: 0, Gate3: 0, Gate4: 1},
	{Gate1: 0, Gate2: 2, Gate3: 1, Gate4: 3},
	{Gate1: 1, Gate2: 4, Gate3: 2, Gate4: 5},
	{Gate1: 2, Gate2: 1, Gate3: 3, Gate4: 0},
}

// mainRidersPerTeam is the lineup size the heat program indexes into.
const mainRidersPerTeam = 6

// GenerateHeats builds the 15 predetermined heats for a fixture. Each team
// needs six declared main riders; with fewer, placeholder riders are
// generated so a protocol can still be kept by hand.
func GenerateHeats(homeTeam, awayTeam string, homeRiders, awayRiders []Rider) []Heat {
	if len(homeRiders) < mainRidersPerTeam || len(awayRiders) < mainRidersPerTeam {
		return placeholderHeats(homeTeam, awayTeam)
	}

	heats := make([]Heat, 0, HeatsPerMatch)
	for i, plan := range heatProgram {
		h := Heat{
			HeatNumber: i + 1,
			Status:     HeatUpcoming,
			Riders:     make(map[Gate]RiderAssignment, len(Gates)),
			Results:    []Result{},
		}
		for _, gate := range Gates {
			idx := plan[gate]
			team := TeamForGate(gate)
			var r Rider
			if team == Home {
				r = homeRiders[idx]
			} else {
				r = awayRiders[idx]
			}
			h.Riders[gate] = RiderAssignment{
				RiderID:     r.ID,
				Name:        r.Name,
				Team:        team,
				HelmetColor: HelmetColor(team, gate),
			}
		}
		heats = append(heats, h)
	}
	return heats
}

// placeholderHeats fills all 15 heats with synthetic riders named after the
// teams, two per team per heat.
func placeholderHeats(homeTeam, awayTeam string) []Heat {
	heats := make([]Heat, 0, HeatsPerMatch)
	for i := 1; i <= HeatsPerMatch; i++ {
		h := Heat{
			HeatNumber: i,
			Status:     HeatUpcoming,
			Riders:     make(map[Gate]RiderAssignment, len(Gates)),
			Results:    []Result{},
		}
		for _, gate := range Gates {
			team := TeamForGate(gate)
			teamName := homeTeam
			if team == Away {
				teamName = awayTeam
			}
			slot := "A"
			if gate == Gate3 || gate == Gate4 {
				slot = "B"
			}
			h.Riders[gate] = RiderAssignment{
				RiderID:     fmt.Sprintf("%s_%d_%s", team, i, slot),
				Name:        fmt.Sprintf("%s Rider %d%s", teamName, i, slot),
				Team:        team,
				HelmetColor: HelmetColor(team, gate),
			}
		}
		heats = append(heats, h)
	}
	return heats
}

// GatePair identifies one of the two gate pairs a team's riders occupy.
type GatePair string

const (
	PairInside  GatePair = "1_3"
	PairOutside GatePair = "2_4"
)

// ApplyLaneChoice swaps the heat's four gate assignments so the choosing
// team's riders occupy the requested pair, recording the original layout so
// the swap can be reverted. Helmet colors follow the new gates. A second
// choice on the same heat replaces the first but keeps the initial original.
func ApplyLaneChoice(h *Heat, team TeamSide, pair GatePair) {
	// Derive the team's current pair from where its riders actually sit,
	// since a previous choice may already have swapped them.
	current := PairOutside
	if ra, ok := h.Riders[Gate1]; ok && ra.Team == team {
		current = PairInside
	}
	if current == pair {
		return
	}

	if h.LaneChoice == nil {
		orig := make(map[Gate]RiderAssignment, len(h.Riders))
		for g, ra := range h.Riders {
			orig[g] = ra
		}
		h.LaneChoice = &LaneChoice{Team: team, Original: orig}
	} else {
		h.LaneChoice.Team = team
	}

	swapped := map[Gate]RiderAssignment{
		Gate1: h.Riders[Gate2],
		Gate2: h.Riders[Gate1],
		Gate3: h.Riders[Gate4],
		Gate4: h.Riders[Gate3],
	}
	for g, ra := range swapped {
		ra.HelmetColor = HelmetColor(ra.Team, g)
		swapped[g] = ra
	}
	h.Riders = swapped
}

// RevertLaneChoice restores the original assignments recorded by
// ApplyLaneChoice. No-op when no choice is staged.
func RevertLaneChoice(h *Heat) {
	if h.LaneChoice == nil {
		return
	}
	h.Riders = h.LaneChoice.Original
	h.LaneChoice = nil
}

// RevertLapsedLaneChoices restores original gate assignments on every still
// upcoming heat. Called when the score deficit drops back below the
// lane-choice threshold. Returns the heat numbers reverted.
func RevertLapsedLaneChoices(m *Match) []int {
	var reverted []int
	for i := range m.Heats {
		h := &m.Heats[i]
		if h.Status != HeatUpcoming || h.LaneChoice == nil {
			continue
		}
		RevertLaneChoice(h)
		reverted = append(reverted, h.HeatNumber)
	}
	return reverted
}
