package transfers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/clients"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/feed"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/offer"
	"github.com/mcdev12/rugbytransfers/go/internal/player"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/mcdev12/rugbytransfers/go/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	client *Client
	store  *store.MemoryStore
	feed   *feed.ConnectionManager
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	s := store.NewMemoryStore()
	engine := lifecycle.NewEngine(s, clockwork.NewFakeClockAt(time.Unix(0, 100)), lifecycle.Config{})

	cm := feed.NewConnectionManager(feed.DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go cm.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle(player.NewPlayerServiceHandler(player.NewService(engine)))
	mux.Handle(transfer.NewTransferServiceHandler(transfer.NewService(engine)))
	mux.Handle(offer.NewOfferServiceHandler(offer.NewService(engine)))
	feed.NewWebSocketHandler(cm).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	base := clients.NewBaseClient().WithHTTPClient(srv.Client())
	return testServer{client: NewClient(srv.URL, base), store: s, feed: cm}
}

func TestClientWalkthrough(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t).client

	profile, err := c.CreateProfile(ctx, &player.CreatePlayerProfileRequest{
		Name:          "A",
		Position:      "Prop",
		CurrentTeam:   "X",
		MarketValue:   100,
		ContractUntil: 1000,
		Age:           25,
		Nationality:   "NZ",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), profile.ID)
	assert.Equal(t, models.TransferStatusAvailable, profile.TransferStatus)

	moved, err := c.ExecuteTransfer(ctx, &transfer.CreatePlayerTransferRequest{
		PlayerID:         1,
		FromTeam:         "X",
		ToTeam:           "Y",
		TransferFee:      50,
		TransferDate:     200,
		ContractDuration: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), moved.ID)

	profile, err = c.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Y", profile.CurrentTeam)
	assert.Equal(t, models.TransferStatusTransferred, profile.TransferStatus)
	assert.Equal(t, uint64(500), profile.ContractUntil)

	created, err := c.CreateOffer(ctx, &offer.CreateTransferOfferRequest{
		PlayerID:    1,
		FromTeam:    "Y",
		ToTeam:      "Z",
		OfferAmount: 75,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), created.ID)
	assert.Equal(t, models.OfferStatusPending, created.OfferStatus)

	accepted, err := c.AcceptOffer(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Offer.OfferStatus)
	assert.Equal(t, uint64(4), accepted.Transfer.ID)
	assert.Equal(t, uint64(75), accepted.Transfer.TransferFee)

	profile, err = c.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Z", profile.CurrentTeam)

	byTeam, err := c.ListProfilesByTeam(ctx, "Z")
	require.NoError(t, err)
	assert.Len(t, byTeam, 1)

	all, err := c.ListTransfers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := c.GetTransfer(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Z", got.ToTeam)

	offers, err := c.ListOffers(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 1)

	profiles, err := c.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestClientErrorCodes(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t).client

	_, err := c.GetProfile(ctx, 99)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = c.ListOffers(ctx)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = c.CreateProfile(ctx, &player.CreatePlayerProfileRequest{Position: "Prop", CurrentTeam: "X"})
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	violations := connectjson.Violations(err)
	assert.Contains(t, violations, "name")
	assert.Contains(t, violations, "market_value")

	_, err = c.CreateProfile(ctx, &player.CreatePlayerProfileRequest{
		Name: "B", Position: "Wing", CurrentTeam: "X", MarketValue: 10, ContractUntil: 1000,
	})
	require.NoError(t, err)
	_, err = c.CreateOffer(ctx, &offer.CreateTransferOfferRequest{PlayerID: 1, FromTeam: "X", ToTeam: "Y", OfferAmount: 5})
	require.NoError(t, err)

	_, err = c.RejectOffer(ctx, 2)
	require.NoError(t, err)
	_, err = c.RejectOffer(ctx, 2)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	_, err = c.AcceptOffer(ctx, 2)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestClientSendsCorrelationID(t *testing.T) {
	ts := newTestServer(t)
	ctx := events.WithCorrelationID(context.Background(), "req-42")

	_, err := ts.client.CreateProfile(ctx, &player.CreatePlayerProfileRequest{
		Name: "A", Position: "Prop", CurrentTeam: "X", MarketValue: 100, ContractUntil: 1000,
	})
	require.NoError(t, err)

	unsent, err := ts.store.FetchUnsentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 1)

	var meta events.Metadata
	require.NoError(t, json.Unmarshal(unsent[0].Metadata, &meta))
	assert.Equal(t, "req-42", meta.CorrelationID)
}

func TestWatchTransfers(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := ts.client.WatchTransfers(ctx, "Z")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return ts.feed.Stats().TotalConnections == 1 }, time.Second, 5*time.Millisecond)

	ts.feed.Broadcast(&feed.Event{ID: "a", Type: events.EventTypePlayerTransferred, PlayerID: 1, Teams: []string{"X", "Y"}})
	ts.feed.Broadcast(&feed.Event{ID: "b", Type: events.EventTypeTransferOfferCreated, PlayerID: 1, Teams: []string{"Y", "Z"}})

	select {
	case ev := <-stream:
		assert.Equal(t, "b", ev.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no feed event received")
	}

	cancel()
	select {
	case _, open := <-stream:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("feed channel not closed after cancel")
	}
}

func TestWatchTransfersEndsWhenFeedDrops(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteJSON(feed.Event{ID: "last", Type: events.EventTypePlayerTransferred})
		conn.Close()
	}))
	defer srv.Close()

	// ctx is never cancelled; the stream must still end
	stream, err := NewClient(srv.URL, nil).WatchTransfers(context.Background(), "")
	require.NoError(t, err)

	select {
	case ev := <-stream:
		assert.Equal(t, "last", ev.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no feed event received")
	}
	select {
	case _, open := <-stream:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("feed channel not closed after the server dropped")
	}
}
