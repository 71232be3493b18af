package transfer

import "github.com/mcdev12/rugbytransfers/go/internal/models"

type CreatePlayerTransferRequest struct {
	PlayerID         uint64 `json:"player_id"`
	FromTeam         string `json:"from_team"`
	ToTeam           string `json:"to_team"`
	TransferFee      uint64 `json:"transfer_fee"`
	TransferDate     uint64 `json:"transfer_date"`
	ContractDuration uint64 `json:"contract_duration"`
}

type CreatePlayerTransferResponse struct {
	Transfer models.PlayerTransfer `json:"transfer"`
}

type ListPlayerTransfersRequest struct{}

type ListPlayerTransfersResponse struct {
	Transfers []models.PlayerTransfer `json:"transfers"`
}

type GetPlayerTransferRequest struct {
	ID uint64 `json:"id"`
}

type GetPlayerTransferResponse struct {
	Transfer models.PlayerTransfer `json:"transfer"`
}
