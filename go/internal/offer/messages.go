package offer

import "github.com/mcdev12/rugbytransfers/go/internal/models"

type CreateTransferOfferRequest struct {
	PlayerID    uint64 `json:"player_id"`
	FromTeam    string `json:"from_team"`
	ToTeam      string `json:"to_team"`
	OfferAmount uint64 `json:"offer_amount"`
}

type CreateTransferOfferResponse struct {
	Offer models.TransferOffer `json:"offer"`
}

type ListTransferOffersRequest struct{}

type ListTransferOffersResponse struct {
	Offers []models.TransferOffer `json:"offers"`
}

type GetTransferOfferRequest struct {
	ID uint64 `json:"id"`
}

type GetTransferOfferResponse struct {
	Offer models.TransferOffer `json:"offer"`
}

type AcceptTransferOfferRequest struct {
	ID uint64 `json:"id"`
}

// AcceptTransferOfferResponse confirms the acceptance and carries the
// resulting transfer
type AcceptTransferOfferResponse struct {
	Message  string                `json:"message"`
	Offer    models.TransferOffer  `json:"offer"`
	Transfer models.PlayerTransfer `json:"transfer"`
}

type RejectTransferOfferRequest struct {
	ID uint64 `json:"id"`
}

type RejectTransferOfferResponse struct {
	Message string               `json:"message"`
	Offer   models.TransferOffer `json:"offer"`
}
