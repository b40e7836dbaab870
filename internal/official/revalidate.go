package official

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/rules"
	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

// Validator compares confirmed user protocols against official scores and
// updates their validation status. Driven by the result listener and the
// maintenance catch-up sweep.
type Validator struct {
	store  *store.Store
	hub    *live.Hub
	logger *slog.Logger
}

// NewValidator wires a Validator.
func NewValidator(st *store.Store, hub *live.Hub, logger *slog.Logger) *Validator {
	return &Validator{store: st, hub: hub, logger: logger}
}

// RevalidateForOfficial re-runs validation for every pending protocol that
// matches the given official fixture. Called when an official score lands.
func (v *Validator) RevalidateForOfficial(ctx context.Context, officialMatchID string) error {
	om, err := v.store.OfficialMatchByID(ctx, officialMatchID)
	if err != nil {
		return fmt.Errorf("load official match: %w", err)
	}
	if !om.HasScore() {
		return nil
	}

	pending, err := v.store.PendingUserMatches(ctx)
	if err != nil {
		return fmt.Errorf("list pending protocols: %w", err)
	}

	updated := 0
	for i := range pending {
		um := &pending[i]
		m, err := v.store.MatchByID(ctx, um.MatchID)
		if err != nil {
			v.logger.Warn("revalidate: load match", "match_id", um.MatchID, "error", err)
			continue
		}
		if !sameFixture(m, om) {
			continue
		}
		if err := v.apply(ctx, um, om); err != nil {
			v.logger.Warn("revalidate protocol", "user_match_id", um.ID, "error", err)
			continue
		}
		updated++
	}

	if updated > 0 {
		v.logger.Info("protocols revalidated against official result",
			"official_id", om.ID, "home", om.HomeTeam, "away", om.AwayTeam, "updated", updated)
	}
	return nil
}

// RevalidateUserMatch re-runs validation for one pending protocol, looking
// the official fixture up by team names and date. Returns false when no
// official score was available.
func (v *Validator) RevalidateUserMatch(ctx context.Context, userMatchID string) (bool, error) {
	um, err := v.store.UserMatchByID(ctx, userMatchID)
	if err != nil {
		return false, fmt.Errorf("load protocol: %w", err)
	}
	if um.Status != speedway.UserMatchCompleted {
		return false, nil
	}
	m, err := v.store.MatchByID(ctx, um.MatchID)
	if err != nil {
		return false, fmt.Errorf("load match: %w", err)
	}

	om, err := v.store.FindOfficialMatch(ctx, m.HomeTeam, m.AwayTeam, m.Date)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup official match: %w", err)
	}
	if !om.HasScore() {
		return false, nil
	}

	if err := v.apply(ctx, um, om); err != nil {
		return false, err
	}
	return true, nil
}

func (v *Validator) apply(ctx context.Context, um *speedway.UserMatch, om *speedway.OfficialMatch) error {
	pair := &speedway.ScorePair{HomeScore: *om.HomeScore, AwayScore: *om.AwayScore}
	rules.Revalidate(um, pair)
	if err := v.store.UpdateUserMatch(ctx, um); err != nil {
		return err
	}
	if err := v.store.MarkOfficialUsed(ctx, om.ID); err != nil {
		v.logger.Warn("mark official used", "official_id", om.ID, "error", err)
	}
	v.hub.Publish(&live.Event{Type: live.EventValidation, MatchID: um.MatchID, Data: um})
	return nil
}

// sameFixture matches a user's match record to an official fixture by team
// names and calendar date.
func sameFixture(m *speedway.Match, om *speedway.OfficialMatch) bool {
	if m.HomeTeam != om.HomeTeam || m.AwayTeam != om.AwayTeam {
		return false
	}
	my, mm, md := m.Date.Date()
	oy, omm, od := om.Date.Date()
	return my == oy && mm == omm && md == od
}
