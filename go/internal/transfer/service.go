package transfer

import (
	"context"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
)

// TransferApp defines what the service layer needs from the lifecycle engine
type TransferApp interface {
	ExecuteTransfer(ctx context.Context, req lifecycle.TransferRequest) (models.PlayerTransfer, error)
	ListTransfers(ctx context.Context) ([]models.PlayerTransfer, error)
	GetTransfer(ctx context.Context, id uint64) (models.PlayerTransfer, error)
}

// Service implements the TransferService connect interface
type Service struct {
	app TransferApp
}

// NewService creates a new transfer service
func NewService(app TransferApp) *Service {
	return &Service{
		app: app,
	}
}

var _ TransferServiceHandler = (*Service)(nil)

// CreatePlayerTransfer executes a direct transfer
func (s *Service) CreatePlayerTransfer(ctx context.Context, req *connect.Request[CreatePlayerTransferRequest]) (*connect.Response[CreatePlayerTransferResponse], error) {
	transfer, err := s.app.ExecuteTransfer(ctx, lifecycle.TransferRequest{
		PlayerID:         req.Msg.PlayerID,
		FromTeam:         req.Msg.FromTeam,
		ToTeam:           req.Msg.ToTeam,
		TransferFee:      req.Msg.TransferFee,
		TransferDate:     req.Msg.TransferDate,
		ContractDuration: req.Msg.ContractDuration,
	})
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&CreatePlayerTransferResponse{
		Transfer: transfer,
	}), nil
}

func (s *Service) ListPlayerTransfers(ctx context.Context, req *connect.Request[ListPlayerTransfersRequest]) (*connect.Response[ListPlayerTransfersResponse], error) {
	transfers, err := s.app.ListTransfers(ctx)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&ListPlayerTransfersResponse{
		Transfers: transfers,
	}), nil
}

func (s *Service) GetPlayerTransfer(ctx context.Context, req *connect.Request[GetPlayerTransferRequest]) (*connect.Response[GetPlayerTransferResponse], error) {
	transfer, err := s.app.GetTransfer(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&GetPlayerTransferResponse{
		Transfer: transfer,
	}), nil
}
