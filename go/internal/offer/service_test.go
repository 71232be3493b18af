package offer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, app OfferApp) OfferServiceClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(NewOfferServiceHandler(NewService(app)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewOfferServiceClient(server.Client(), server.URL)
}

func TestOfferLifecycle(t *testing.T) {
	ctx := context.Background()
	engine := lifecycle.NewEngine(store.NewMemoryStore(), clockwork.NewFakeClockAt(time.Unix(0, 100)), lifecycle.Config{})
	client := newClient(t, engine)

	_, err := engine.CreateProfile(ctx, lifecycle.CreateProfileRequest{
		Name: "A", Position: "Prop", CurrentTeam: "X", MarketValue: 100, ContractUntil: 1000, Age: 25, Nationality: "NZ",
	})
	require.NoError(t, err)

	_, err = client.CreateTransferOffer(ctx, connect.NewRequest(&CreateTransferOfferRequest{PlayerID: 1, FromTeam: "X", ToTeam: "Z"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = client.CreateTransferOffer(ctx, connect.NewRequest(&CreateTransferOfferRequest{PlayerID: 8, FromTeam: "X", ToTeam: "Z", OfferAmount: 75}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	created, err := client.CreateTransferOffer(ctx, connect.NewRequest(&CreateTransferOfferRequest{PlayerID: 1, FromTeam: "X", ToTeam: "Z", OfferAmount: 75}))
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPending, created.Msg.Offer.OfferStatus)
	second, err := client.CreateTransferOffer(ctx, connect.NewRequest(&CreateTransferOfferRequest{PlayerID: 1, FromTeam: "X", ToTeam: "Q", OfferAmount: 60}))
	require.NoError(t, err)

	list, err := client.ListTransferOffers(ctx, connect.NewRequest(&ListTransferOffersRequest{}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Offers, 2)

	accepted, err := client.AcceptTransferOffer(ctx, connect.NewRequest(&AcceptTransferOfferRequest{ID: created.Msg.Offer.ID}))
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Msg.Offer.OfferStatus)
	assert.Equal(t, uint64(75), accepted.Msg.Transfer.TransferFee)
	assert.NotEmpty(t, accepted.Msg.Message)

	_, err = client.AcceptTransferOffer(ctx, connect.NewRequest(&AcceptTransferOfferRequest{ID: created.Msg.Offer.ID}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	rejected, err := client.RejectTransferOffer(ctx, connect.NewRequest(&RejectTransferOfferRequest{ID: second.Msg.Offer.ID}))
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, rejected.Msg.Offer.OfferStatus)

	_, err = client.RejectTransferOffer(ctx, connect.NewRequest(&RejectTransferOfferRequest{ID: second.Msg.Offer.ID}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	got, err := client.GetTransferOffer(ctx, connect.NewRequest(&GetTransferOfferRequest{ID: second.Msg.Offer.ID}))
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, got.Msg.Offer.OfferStatus)

	_, err = client.GetTransferOffer(ctx, connect.NewRequest(&GetTransferOfferRequest{ID: 99}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

type mockOfferApp struct {
	mock.Mock
	OfferApp
}

func (m *mockOfferApp) AcceptOffer(ctx context.Context, id uint64) (lifecycle.Confirmation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(lifecycle.Confirmation), args.Error(1)
}

func TestAcceptWithoutTransferIsInternal(t *testing.T) {
	app := new(mockOfferApp)
	app.On("AcceptOffer", mock.Anything, uint64(3)).Return(lifecycle.Confirmation{Message: "offer 3 accepted"}, nil).Once()
	app.On("AcceptOffer", mock.Anything, uint64(4)).Return(lifecycle.Confirmation{}, errors.New("disk full")).Once()
	client := newClient(t, app)

	_, err := client.AcceptTransferOffer(context.Background(), connect.NewRequest(&AcceptTransferOfferRequest{ID: 3}))
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	_, err = client.AcceptTransferOffer(context.Background(), connect.NewRequest(&AcceptTransferOfferRequest{ID: 4}))
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	app.AssertExpectations(t)
}
