package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// teamEntry is one Elitserien club with home venue city.
type teamEntry struct {
	Name string
	City string
}

// elitserienTeams is the current Elitserien lineup. Rosters are filled with
// numbered placeholder riders until real rosters are entered through the API.
var elitserienTeams = []teamEntry{
	{Name: "Dackarna", City: "Malilla"},
	{Name: "Masarna", City: "Avesta"},
	{Name: "Vetlanda", City: "Vetlanda"},
	{Name: "Indianerna", City: "Kumla"},
	{Name: "Vargarna", City: "Norrkoping"},
	{Name: "Rospiggarna", City: "Hallstavik"},
	{Name: "Smederna", City: "Eskilstuna"},
}

// ridersPerTeam is six main riders plus one reserve, the standard
// team speedway lineup.
const ridersPerTeam = 7

// SeedTeams upserts the Elitserien teams and gives each team a full
// placeholder roster. Existing rosters are replaced only when a team has
// no riders yet, so manually maintained rosters survive a re-run.
func SeedTeams(ctx context.Context, st *store.Store, logger *slog.Logger) SeedResult {
	var result SeedResult

	for _, entry := range elitserienTeams {
		teamID, err := st.UpsertTeam(ctx, entry.Name, entry.City)
		if err != nil {
			result.AddErrorf("upsert team %s: %v", entry.Name, err)
			continue
		}
		result.TeamsUpserted++

		existing, err := st.RidersByTeam(ctx, teamID)
		if err != nil {
			result.AddErrorf("list riders for %s: %v", entry.Name, err)
			continue
		}
		if len(existing) > 0 {
			logger.Debug("Roster already present, skipping", "team", entry.Name, "riders", len(existing))
			continue
		}

		riders := make([]speedway.Rider, 0, ridersPerTeam)
		for i := 1; i <= ridersPerTeam; i++ {
			riders = append(riders, speedway.Rider{
				TeamID:    teamID,
				Name:      fmt.Sprintf("%s Forare %d", entry.Name, i),
				Number:    i,
				IsReserve: i == ridersPerTeam,
			})
		}
		if err := st.ReplaceRoster(ctx, teamID, riders); err != nil {
			result.AddErrorf("seed roster for %s: %v", entry.Name, err)
			continue
		}
		result.RidersUpserted += len(riders)
		logger.Info("Seeded team", "team", entry.Name, "riders", len(riders))
	}

	return result
}
