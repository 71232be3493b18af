package models

import "fmt"

// OfferStatus represents where a transfer offer is in its lifecycle.
// Offers move from pending to exactly one of accepted or rejected.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Valid reports whether s is one of the known offer statuses
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected:
		return true
	default:
		return false
	}
}

// Resolved reports whether the offer has left the pending state
func (s OfferStatus) Resolved() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

// UnmarshalText rejects statuses outside the closed set
func (s *OfferStatus) UnmarshalText(text []byte) error {
	status := OfferStatus(text)
	if !status.Valid() {
		return fmt.Errorf("invalid offer status: %q", string(text))
	}
	*s = status
	return nil
}

// TransferOffer is a proposed transfer awaiting acceptance or rejection
type TransferOffer struct {
	ID          uint64      `json:"id"`
	PlayerID    uint64      `json:"player_id"`
	FromTeam    string      `json:"from_team"`
	ToTeam      string      `json:"to_team"`
	OfferAmount uint64      `json:"offer_amount"`
	OfferStatus OfferStatus `json:"offer_status"`
	CreatedAt   uint64      `json:"created_at"`
}
