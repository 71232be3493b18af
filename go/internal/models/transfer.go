package models

// PlayerTransfer is the immutable record of a completed move between teams.
// It is produced either by a direct transfer or by accepting an offer.
type PlayerTransfer struct {
	ID               uint64 `json:"id"`
	PlayerID         uint64 `json:"player_id"`
	FromTeam         string `json:"from_team"`
	ToTeam           string `json:"to_team"`
	TransferFee      uint64 `json:"transfer_fee"`
	TransferDate     uint64 `json:"transfer_date"`
	ContractDuration uint64 `json:"contract_duration"`
	CreatedAt        uint64 `json:"created_at"`
}
