package lifecycle

import (
	"context"
	"fmt"

	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/rs/zerolog/log"
)

// CreateProfile registers a new player as available at their current team
func (e *Engine) CreateProfile(ctx context.Context, req CreateProfileRequest) (models.PlayerProfile, error) {
	if err := ValidateProfile(req); err != nil {
		return models.PlayerProfile{}, err
	}

	var profile models.PlayerProfile
	err := e.store.Update(ctx, func(tx store.Tx) error {
		id, err := tx.NextID(ctx)
		if err != nil {
			return err
		}

		profile = models.PlayerProfile{
			ID:             id,
			Name:           req.Name,
			Position:       req.Position,
			CurrentTeam:    req.CurrentTeam,
			MarketValue:    req.MarketValue,
			TransferStatus: models.TransferStatusAvailable,
			ContractUntil:  req.ContractUntil,
			Age:            req.Age,
			Nationality:    req.Nationality,
			CreatedAt:      e.now(),
		}
		if err := tx.PutProfile(ctx, profile); err != nil {
			return err
		}

		return e.recordEvent(ctx, tx, id, events.EventTypePlayerProfileCreated, events.PlayerProfileCreatedPayload{
			PlayerID:    id,
			Name:        profile.Name,
			Position:    profile.Position,
			CurrentTeam: profile.CurrentTeam,
			MarketValue: profile.MarketValue,
		})
	})
	if err != nil {
		return models.PlayerProfile{}, fmt.Errorf("failed to create player profile: %w", err)
	}

	log.Info().
		Uint64("player_id", profile.ID).
		Str("team", profile.CurrentTeam).
		Msg("player profile created")

	return profile, nil
}
