// Package speedway defines the domain model for Elitserien team speedway:
// matches of 15 heats, four gates per heat, rider assignments, recorded
// results, and the user-facing protocol records compared against official
// results.
package speedway

import "time"

// TeamSide identifies which side of the fixture a rider or gate belongs to.
type TeamSide string

const (
	Home TeamSide = "home"
	Away TeamSide = "away"
)

// Opponent returns the other side.
func (s TeamSide) Opponent() TeamSide {
	if s == Home {
		return Away
	}
	return Home
}

// Match lifecycle statuses.
type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchConfirmed MatchStatus = "confirmed"
)

// Heat statuses.
type HeatStatus string

const (
	HeatUpcoming  HeatStatus = "upcoming"
	HeatCompleted HeatStatus = "completed"
)

// Result statuses for one rider in one heat.
type ResultStatus string

const (
	ResultCompleted ResultStatus = "completed"
	ResultExcluded  ResultStatus = "excluded"
)

// UserMatch statuses. A protocol with no official result to compare against
// stays "completed"; a clean comparison is "validated"; unresolved or
// deliberately kept differences are "disputed".
type UserMatchStatus string

const (
	UserMatchCompleted UserMatchStatus = "completed"
	UserMatchValidated UserMatchStatus = "validated"
	UserMatchDisputed  UserMatchStatus = "disputed"
)

// Gate is one of the four starting positions in a heat.
type Gate int

const (
	Gate1 Gate = 1
	Gate2 Gate = 2
	Gate3 Gate = 3
	Gate4 Gate = 4
)

// Gates lists all four gates in order.
var Gates = []Gate{Gate1, Gate2, Gate3, Gate4}

// TeamForGate returns which side starts from a gate: 1 and 3 are home
// gates, 2 and 4 away gates.
func TeamForGate(g Gate) TeamSide {
	if g == Gate1 || g == Gate3 {
		return Home
	}
	return Away
}

// HeatsPerMatch is fixed by the competition format.
const HeatsPerMatch = 15

// RiderAssignment identifies the rider occupying a gate in a heat.
type RiderAssignment struct {
	RiderID     string   `json:"rider_id"`
	Name        string   `json:"name"`
	Team        TeamSide `json:"team"`
	HelmetColor string   `json:"helmet_color"`
}

// Result records the outcome for one rider in one heat. Position, Points and
// BonusPoints are only meaningful when Status is completed.
type Result struct {
	RiderID     string       `json:"rider_id"`
	Status      ResultStatus `json:"status"`
	Position    int          `json:"position"`
	Points      int          `json:"points"`
	BonusPoints int          `json:"bonus_points"`
}

// TacticalPick records a staged tactical-reserve substitution in a heat.
// At most one exists per heat, across both teams.
type TacticalPick struct {
	Team    TeamSide `json:"team"`
	Gate    Gate     `json:"gate"`
	RiderID string   `json:"rider_id"`
}

// LaneChoice records an applied 8-point-rule gate swap together with the
// assignments it replaced, so the swap can be reverted if the deficit
// shrinks below the threshold before the heat runs.
type LaneChoice struct {
	Team     TeamSide                 `json:"team"`
	Original map[Gate]RiderAssignment `json:"original"`
}

// Heat is one race within a match. Riders maps starting gate to assignment;
// integer map keys marshal as JSON object keys "1".."4", matching the wire
// shape consumed by clients.
type Heat struct {
	HeatNumber     int                      `json:"heat_number"`
	Status         HeatStatus               `json:"status"`
	Riders         map[Gate]RiderAssignment `json:"riders"`
	Results        []Result                 `json:"results"`
	IsTacticalHeat bool                     `json:"is_tactical_heat"`
	Tactical       *TacticalPick            `json:"tactical,omitempty"`
	LaneChoice     *LaneChoice              `json:"lane_choice,omitempty"`
}

// TeamOf resolves a rider id to its side via the gate assignments.
func (h *Heat) TeamOf(riderID string) (TeamSide, bool) {
	for _, ra := range h.Riders {
		if ra.RiderID == riderID {
			return ra.Team, true
		}
	}
	return "", false
}

// ResultFor returns the persisted result for a rider, if any.
func (h *Heat) ResultFor(riderID string) (Result, bool) {
	for _, r := range h.Results {
		if r.RiderID == riderID {
			return r, true
		}
	}
	return Result{}, false
}

// Match is a single fixture between two teams with its 15 heats.
// HomeScore/AwayScore are derived from heat results and not authoritative.
type Match struct {
	ID              string      `json:"id"`
	HomeTeamID      string      `json:"home_team_id"`
	AwayTeamID      string      `json:"away_team_id"`
	HomeTeam        string      `json:"home_team"`
	AwayTeam        string      `json:"away_team"`
	Date            time.Time   `json:"date"`
	Venue           string      `json:"venue"`
	Status          MatchStatus `json:"status"`
	HomeScore       int         `json:"home_score"`
	AwayScore       int         `json:"away_score"`
	JokerUsedHome   bool        `json:"joker_used_home"`
	JokerUsedAway   bool        `json:"joker_used_away"`
	Heats           []Heat      `json:"heats"`
	CreatedBy       string      `json:"created_by,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	OfficialMatchID *string     `json:"official_match_id"`
}

// HeatByNumber returns a pointer into Heats for the given heat number.
func (m *Match) HeatByNumber(n int) *Heat {
	for i := range m.Heats {
		if m.Heats[i].HeatNumber == n {
			return &m.Heats[i]
		}
	}
	return nil
}

// Score returns the recorded score for one side.
func (m *Match) Score(side TeamSide) int {
	if side == Home {
		return m.HomeScore
	}
	return m.AwayScore
}

// JokerUsed reports whether a side has already invoked its tactical reserve.
func (m *Match) JokerUsed(side TeamSide) bool {
	if side == Home {
		return m.JokerUsedHome
	}
	return m.JokerUsedAway
}

// SetJokerUsed marks a side's tactical reserve as spent.
func (m *Match) SetJokerUsed(side TeamSide) {
	if side == Home {
		m.JokerUsedHome = true
	} else {
		m.JokerUsedAway = true
	}
}

// RideCount counts the heats in which a rider currently holds any gate
// assignment, completed and upcoming alike. Used for per-match heat limits.
func (m *Match) RideCount(riderID string) int {
	n := 0
	for i := range m.Heats {
		for _, ra := range m.Heats[i].Riders {
			if ra.RiderID == riderID {
				n++
				break
			}
		}
	}
	return n
}

// Team is a club participating in the series.
type Team struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	City          string `json:"city"`
	Points        int    `json:"points"`
	MatchesPlayed int    `json:"matches_played"`
}

// Rider is a person who can occupy gates. IsReserve affects the per-match
// heat limit applied when substituting.
type Rider struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id"`
	Name      string `json:"name"`
	Number    int    `json:"number"`
	IsReserve bool   `json:"is_reserve"`
}

// ScorePair is an aggregated home/away score.
type ScorePair struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// ScoreSheet is a user's full recorded result for a match.
type ScoreSheet struct {
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Heats     []Heat `json:"heats"`
}

// DiscrepancyType names which aggregated field differs.
type DiscrepancyType string

const (
	DiscrepancyHomeScore DiscrepancyType = "home_score"
	DiscrepancyAwayScore DiscrepancyType = "away_score"
)

// Discrepancy is a detected difference between a user's aggregated result
// and the official one. Both values are retained for display and resolution.
// Resolution is empty while unresolved and "kept" after keep_user;
// accept_official removes the entry entirely.
type Discrepancy struct {
	Type          DiscrepancyType `json:"type"`
	UserValue     int             `json:"user_value"`
	OfficialValue int             `json:"official_value"`
	Resolution    string          `json:"resolution,omitempty"`
}

// UserMatch is the persisted record of one user's completed protocol for a
// match, distinct from the canonical Match record. Immutable after creation
// except for discrepancy resolution.
type UserMatch struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	MatchID         string          `json:"match_id"`
	Status          UserMatchStatus `json:"status"`
	UserResults     ScoreSheet      `json:"user_results"`
	OfficialResults *ScorePair      `json:"official_results,omitempty"`
	Discrepancies   []Discrepancy   `json:"discrepancies"`
	CompletedAt     time.Time       `json:"completed_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// OfficialMatch is a fixture imported from the official source. Scores are
// nil until the match has been run and results published.
type OfficialMatch struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Date      time.Time `json:"date"`
	HomeScore *int      `json:"home_score,omitempty"`
	AwayScore *int      `json:"away_score,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	Used      bool      `json:"used"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// HasScore reports whether official scores have been published.
func (o *OfficialMatch) HasScore() bool {
	return o.HomeScore != nil && o.AwayScore != nil
}

// User is an account that records protocols.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
