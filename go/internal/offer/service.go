package offer

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
)

// OfferApp defines what the service layer needs from the lifecycle engine
type OfferApp interface {
	CreateOffer(ctx context.Context, req lifecycle.OfferRequest) (models.TransferOffer, error)
	ListOffers(ctx context.Context) ([]models.TransferOffer, error)
	GetOffer(ctx context.Context, id uint64) (models.TransferOffer, error)
	AcceptOffer(ctx context.Context, id uint64) (lifecycle.Confirmation, error)
	RejectOffer(ctx context.Context, id uint64) (lifecycle.Confirmation, error)
}

// Service implements the OfferService connect interface
type Service struct {
	app OfferApp
}

// NewService creates a new offer service
func NewService(app OfferApp) *Service {
	return &Service{
		app: app,
	}
}

var _ OfferServiceHandler = (*Service)(nil)

// CreateTransferOffer records a pending offer
func (s *Service) CreateTransferOffer(ctx context.Context, req *connect.Request[CreateTransferOfferRequest]) (*connect.Response[CreateTransferOfferResponse], error) {
	offer, err := s.app.CreateOffer(ctx, lifecycle.OfferRequest{
		PlayerID:    req.Msg.PlayerID,
		FromTeam:    req.Msg.FromTeam,
		ToTeam:      req.Msg.ToTeam,
		OfferAmount: req.Msg.OfferAmount,
	})
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&CreateTransferOfferResponse{
		Offer: offer,
	}), nil
}

func (s *Service) ListTransferOffers(ctx context.Context, req *connect.Request[ListTransferOffersRequest]) (*connect.Response[ListTransferOffersResponse], error) {
	offers, err := s.app.ListOffers(ctx)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&ListTransferOffersResponse{
		Offers: offers,
	}), nil
}

func (s *Service) GetTransferOffer(ctx context.Context, req *connect.Request[GetTransferOfferRequest]) (*connect.Response[GetTransferOfferResponse], error) {
	offer, err := s.app.GetOffer(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&GetTransferOfferResponse{
		Offer: offer,
	}), nil
}

// AcceptTransferOffer accepts a pending offer and returns the resulting transfer
func (s *Service) AcceptTransferOffer(ctx context.Context, req *connect.Request[AcceptTransferOfferRequest]) (*connect.Response[AcceptTransferOfferResponse], error) {
	confirmation, err := s.app.AcceptOffer(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectjson.Error(err)
	}
	if confirmation.Transfer == nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("offer %d accepted without a transfer", req.Msg.ID))
	}

	return connect.NewResponse(&AcceptTransferOfferResponse{
		Message:  confirmation.Message,
		Offer:    confirmation.Offer,
		Transfer: *confirmation.Transfer,
	}), nil
}

// RejectTransferOffer rejects a pending offer
func (s *Service) RejectTransferOffer(ctx context.Context, req *connect.Request[RejectTransferOfferRequest]) (*connect.Response[RejectTransferOfferResponse], error) {
	confirmation, err := s.app.RejectOffer(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&RejectTransferOfferResponse{
		Message: confirmation.Message,
		Offer:   confirmation.Offer,
	}), nil
}
