package lifecycle

import (
	"context"
	"fmt"

	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/rs/zerolog/log"
)

const errNotEligible = "player is not available for transfer or is not a member of the source team"

// ExecuteTransfer moves an available player from their current team to another.
// The transfer record, the profile update and the outbox event commit together.
func (e *Engine) ExecuteTransfer(ctx context.Context, req TransferRequest) (models.PlayerTransfer, error) {
	if err := ValidateTransfer(req); err != nil {
		return models.PlayerTransfer{}, err
	}

	var transfer models.PlayerTransfer
	err := e.store.Update(ctx, func(tx store.Tx) error {
		profile, err := loadProfile(ctx, tx, req.PlayerID)
		if err != nil {
			return err
		}
		if !eligibleForTransfer(profile, req.FromTeam) {
			return conflict(errNotEligible)
		}

		id, err := tx.NextID(ctx)
		if err != nil {
			return err
		}
		transfer = models.PlayerTransfer{
			ID:               id,
			PlayerID:         req.PlayerID,
			FromTeam:         req.FromTeam,
			ToTeam:           req.ToTeam,
			TransferFee:      req.TransferFee,
			TransferDate:     req.TransferDate,
			ContractDuration: req.ContractDuration,
			CreatedAt:        e.now(),
		}
		if err := tx.PutTransfer(ctx, transfer); err != nil {
			return err
		}

		profile.TransferStatus = models.TransferStatusTransferred
		profile.CurrentTeam = req.ToTeam
		profile.ContractUntil = req.TransferDate + req.ContractDuration
		if err := tx.PutProfile(ctx, profile); err != nil {
			return err
		}

		return e.recordEvent(ctx, tx, profile.ID, events.EventTypePlayerTransferred, events.PlayerTransferredPayload{
			TransferID:    transfer.ID,
			PlayerID:      profile.ID,
			FromTeam:      transfer.FromTeam,
			ToTeam:        transfer.ToTeam,
			TransferFee:   transfer.TransferFee,
			TransferDate:  transfer.TransferDate,
			ContractUntil: profile.ContractUntil,
		})
	})
	if err != nil {
		return models.PlayerTransfer{}, fmt.Errorf("failed to execute transfer: %w", err)
	}

	log.Info().
		Uint64("player_id", transfer.PlayerID).
		Uint64("transfer_id", transfer.ID).
		Str("from_team", transfer.FromTeam).
		Str("to_team", transfer.ToTeam).
		Msg("player transferred")

	return transfer, nil
}
