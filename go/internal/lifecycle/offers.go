package lifecycle

import (
	"context"
	"fmt"

	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/rs/zerolog/log"
)

// Confirmation is returned when an offer is resolved.
// Transfer is set only for accepted offers.
type Confirmation struct {
	Message  string                 `json:"message"`
	Offer    models.TransferOffer   `json:"offer"`
	Transfer *models.PlayerTransfer `json:"transfer,omitempty"`
}

// CreateOffer records a pending offer for an existing player.
// Eligibility is not checked until the offer is accepted.
func (e *Engine) CreateOffer(ctx context.Context, req OfferRequest) (models.TransferOffer, error) {
	if err := ValidateOffer(req); err != nil {
		return models.TransferOffer{}, err
	}

	var offer models.TransferOffer
	err := e.store.Update(ctx, func(tx store.Tx) error {
		if _, err := loadProfile(ctx, tx, req.PlayerID); err != nil {
			return err
		}

		id, err := tx.NextID(ctx)
		if err != nil {
			return err
		}
		offer = models.TransferOffer{
			ID:          id,
			PlayerID:    req.PlayerID,
			FromTeam:    req.FromTeam,
			ToTeam:      req.ToTeam,
			OfferAmount: req.OfferAmount,
			OfferStatus: models.OfferStatusPending,
			CreatedAt:   e.now(),
		}
		if err := tx.PutOffer(ctx, offer); err != nil {
			return err
		}

		return e.recordEvent(ctx, tx, offer.PlayerID, events.EventTypeTransferOfferCreated, events.TransferOfferCreatedPayload{
			OfferID:     offer.ID,
			PlayerID:    offer.PlayerID,
			FromTeam:    offer.FromTeam,
			ToTeam:      offer.ToTeam,
			OfferAmount: offer.OfferAmount,
		})
	})
	if err != nil {
		return models.TransferOffer{}, fmt.Errorf("failed to create transfer offer: %w", err)
	}

	log.Info().
		Uint64("player_id", offer.PlayerID).
		Uint64("offer_id", offer.ID).
		Str("to_team", offer.ToTeam).
		Msg("transfer offer created")

	return offer, nil
}

// AcceptOffer accepts a pending offer and moves the player to the offering team.
// The offer, the new transfer record and the profile change commit together.
func (e *Engine) AcceptOffer(ctx context.Context, offerID uint64) (Confirmation, error) {
	var result Confirmation
	err := e.store.Update(ctx, func(tx store.Tx) error {
		offer, err := loadOffer(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if offer.OfferStatus != models.OfferStatusPending {
			return conflict("only pending offers can be accepted")
		}

		profile, err := loadProfile(ctx, tx, offer.PlayerID)
		if err != nil {
			return err
		}
		if e.cfg.StrictOfferAcceptance && !eligibleForTransfer(profile, offer.FromTeam) {
			return conflict(errNotEligible)
		}

		now := e.now()
		if profile.ContractUntil <= now {
			return conflict("player contract has expired")
		}
		duration := profile.ContractUntil - now

		offer.OfferStatus = models.OfferStatusAccepted
		if err := tx.PutOffer(ctx, offer); err != nil {
			return err
		}

		id, err := tx.NextID(ctx)
		if err != nil {
			return err
		}
		transfer := models.PlayerTransfer{
			ID:               id,
			PlayerID:         offer.PlayerID,
			FromTeam:         offer.FromTeam,
			ToTeam:           offer.ToTeam,
			TransferFee:      offer.OfferAmount,
			TransferDate:     now,
			ContractDuration: duration,
			CreatedAt:        now,
		}
		if err := tx.PutTransfer(ctx, transfer); err != nil {
			return err
		}

		profile.TransferStatus = models.TransferStatusTransferred
		profile.CurrentTeam = offer.ToTeam
		profile.ContractUntil = now + duration
		if err := tx.PutProfile(ctx, profile); err != nil {
			return err
		}

		if err := e.recordEvent(ctx, tx, profile.ID, events.EventTypeTransferOfferAccepted, events.TransferOfferResolvedPayload{
			OfferID:    offer.ID,
			PlayerID:   offer.PlayerID,
			FromTeam:   offer.FromTeam,
			ToTeam:     offer.ToTeam,
			Status:     string(offer.OfferStatus),
			TransferID: transfer.ID,
		}); err != nil {
			return err
		}
		if err := e.recordEvent(ctx, tx, profile.ID, events.EventTypePlayerTransferred, events.PlayerTransferredPayload{
			TransferID:    transfer.ID,
			OfferID:       offer.ID,
			PlayerID:      profile.ID,
			FromTeam:      transfer.FromTeam,
			ToTeam:        transfer.ToTeam,
			TransferFee:   transfer.TransferFee,
			TransferDate:  transfer.TransferDate,
			ContractUntil: profile.ContractUntil,
		}); err != nil {
			return err
		}

		result = Confirmation{
			Message:  fmt.Sprintf("offer %d accepted", offer.ID),
			Offer:    offer,
			Transfer: &transfer,
		}
		return nil
	})
	if err != nil {
		return Confirmation{}, fmt.Errorf("failed to accept offer: %w", err)
	}

	log.Info().
		Uint64("player_id", result.Offer.PlayerID).
		Uint64("offer_id", result.Offer.ID).
		Uint64("transfer_id", result.Transfer.ID).
		Str("to_team", result.Offer.ToTeam).
		Msg("transfer offer accepted")

	return result, nil
}

// RejectOffer closes a pending offer without moving the player
func (e *Engine) RejectOffer(ctx context.Context, offerID uint64) (Confirmation, error) {
	var result Confirmation
	err := e.store.Update(ctx, func(tx store.Tx) error {
		offer, err := loadOffer(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if offer.OfferStatus != models.OfferStatusPending {
			return conflict("only pending offers can be rejected")
		}

		offer.OfferStatus = models.OfferStatusRejected
		if err := tx.PutOffer(ctx, offer); err != nil {
			return err
		}

		if err := e.recordEvent(ctx, tx, offer.PlayerID, events.EventTypeTransferOfferRejected, events.TransferOfferResolvedPayload{
			OfferID:  offer.ID,
			PlayerID: offer.PlayerID,
			FromTeam: offer.FromTeam,
			ToTeam:   offer.ToTeam,
			Status:   string(offer.OfferStatus),
		}); err != nil {
			return err
		}

		result = Confirmation{
			Message: fmt.Sprintf("offer %d rejected", offer.ID),
			Offer:   offer,
		}
		return nil
	})
	if err != nil {
		return Confirmation{}, fmt.Errorf("failed to reject offer: %w", err)
	}

	log.Info().
		Uint64("player_id", result.Offer.PlayerID).
		Uint64("offer_id", result.Offer.ID).
		Msg("transfer offer rejected")

	return result, nil
}
