package lifecycle

import (
	"context"
	"fmt"

	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
)

// Read-only queries. List operations fail NotFound when nothing matches.

// ListProfiles returns every player profile ordered by ID
func (e *Engine) ListProfiles(ctx context.Context) ([]models.PlayerProfile, error) {
	var profiles []models.PlayerProfile
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		profiles, err = r.ListProfiles(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list player profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, notFound("no player profiles found")
	}
	return profiles, nil
}

// GetProfile returns a single player profile
func (e *Engine) GetProfile(ctx context.Context, id uint64) (models.PlayerProfile, error) {
	var profile models.PlayerProfile
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		profile, err = loadProfile(ctx, r, id)
		return err
	})
	return profile, err
}

// ListProfilesByTeam returns the profiles whose current team matches team
func (e *Engine) ListProfilesByTeam(ctx context.Context, team string) ([]models.PlayerProfile, error) {
	var all []models.PlayerProfile
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		all, err = r.ListProfiles(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list player profiles: %w", err)
	}

	var matched []models.PlayerProfile
	for _, p := range all {
		if p.CurrentTeam == team {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return nil, notFound("no player profiles found for team %q", team)
	}
	return matched, nil
}

// ListTransfers returns every completed transfer ordered by ID
func (e *Engine) ListTransfers(ctx context.Context) ([]models.PlayerTransfer, error) {
	var transfers []models.PlayerTransfer
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		transfers, err = r.ListTransfers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list player transfers: %w", err)
	}
	if len(transfers) == 0 {
		return nil, notFound("no player transfers found")
	}
	return transfers, nil
}

// GetTransfer returns a single transfer record
func (e *Engine) GetTransfer(ctx context.Context, id uint64) (models.PlayerTransfer, error) {
	var transfer models.PlayerTransfer
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		transfer, err = loadTransfer(ctx, r, id)
		return err
	})
	return transfer, err
}

// ListOffers returns every offer ordered by ID
func (e *Engine) ListOffers(ctx context.Context) ([]models.TransferOffer, error) {
	var offers []models.TransferOffer
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		offers, err = r.ListOffers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer offers: %w", err)
	}
	if len(offers) == 0 {
		return nil, notFound("no transfer offers found")
	}
	return offers, nil
}

// GetOffer returns a single offer
func (e *Engine) GetOffer(ctx context.Context, id uint64) (models.TransferOffer, error) {
	var offer models.TransferOffer
	err := e.store.View(ctx, func(r store.Reader) error {
		var err error
		offer, err = loadOffer(ctx, r, id)
		return err
	})
	return offer, err
}
