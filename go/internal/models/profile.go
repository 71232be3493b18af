package models

import "fmt"

// TransferStatus represents whether a player can still be moved by a direct transfer
type TransferStatus string

const (
	TransferStatusAvailable   TransferStatus = "available"
	TransferStatusTransferred TransferStatus = "transferred"
)

// Valid reports whether s is one of the known transfer statuses
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusAvailable, TransferStatusTransferred:
		return true
	default:
		return false
	}
}

// UnmarshalText rejects statuses outside the closed set
func (s *TransferStatus) UnmarshalText(text []byte) error {
	status := TransferStatus(text)
	if !status.Valid() {
		return fmt.Errorf("invalid transfer status: %q", string(text))
	}
	*s = status
	return nil
}

// PlayerProfile represents a rugby player and their current contract
type PlayerProfile struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	Position       string         `json:"position"`
	CurrentTeam    string         `json:"current_team"`
	MarketValue    uint64         `json:"market_value"`
	TransferStatus TransferStatus `json:"transfer_status"`
	ContractUntil  uint64         `json:"contract_until"` // Unix nanoseconds
	Age            uint32         `json:"age"`
	Nationality    string         `json:"nationality"`
	CreatedAt      uint64         `json:"created_at"`
}
