package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*lifecycle.Engine, TransferServiceClient) {
	t.Helper()
	engine := lifecycle.NewEngine(store.NewMemoryStore(), clockwork.NewFakeClockAt(time.Unix(0, 100)), lifecycle.Config{})

	mux := http.NewServeMux()
	mux.Handle(NewTransferServiceHandler(NewService(engine)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return engine, NewTransferServiceClient(server.Client(), server.URL)
}

func TestCreatePlayerTransfer(t *testing.T) {
	ctx := context.Background()
	engine, client := setup(t)

	_, err := engine.CreateProfile(ctx, lifecycle.CreateProfileRequest{
		Name: "A", Position: "Prop", CurrentTeam: "X", MarketValue: 100, ContractUntil: 1000, Age: 25, Nationality: "NZ",
	})
	require.NoError(t, err)

	resp, err := client.CreatePlayerTransfer(ctx, connect.NewRequest(&CreatePlayerTransferRequest{
		PlayerID: 1, FromTeam: "X", ToTeam: "Y", TransferFee: 50, TransferDate: 200, ContractDuration: 300,
	}))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resp.Msg.Transfer.ID)

	got, err := client.GetPlayerTransfer(ctx, connect.NewRequest(&GetPlayerTransferRequest{ID: 2}))
	require.NoError(t, err)
	assert.Equal(t, resp.Msg.Transfer, got.Msg.Transfer)

	list, err := client.ListPlayerTransfers(ctx, connect.NewRequest(&ListPlayerTransfersRequest{}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Transfers, 1)

	profile, err := engine.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Y", profile.CurrentTeam)
	assert.Equal(t, uint64(500), profile.ContractUntil)

	// a second move from the old team is refused
	_, err = client.CreatePlayerTransfer(ctx, connect.NewRequest(&CreatePlayerTransferRequest{
		PlayerID: 1, FromTeam: "X", ToTeam: "Z", TransferFee: 50, TransferDate: 200, ContractDuration: 300,
	}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestTransferErrorCodes(t *testing.T) {
	ctx := context.Background()
	_, client := setup(t)

	_, err := client.CreatePlayerTransfer(ctx, connect.NewRequest(&CreatePlayerTransferRequest{
		PlayerID: 1, FromTeam: "X", ToTeam: "X",
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	violations := connectjson.Violations(err)
	assert.Contains(t, violations, "transfer_fee")
	assert.Contains(t, violations, "to_team")

	_, err = client.CreatePlayerTransfer(ctx, connect.NewRequest(&CreatePlayerTransferRequest{
		PlayerID: 1, FromTeam: "X", ToTeam: "Y", TransferFee: 1, ContractDuration: 1,
	}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.ListPlayerTransfers(ctx, connect.NewRequest(&ListPlayerTransfersRequest{}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client.GetPlayerTransfer(ctx, connect.NewRequest(&GetPlayerTransferRequest{ID: 5}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}
