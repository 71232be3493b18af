package transfers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/rugbytransfers/go/clients"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/feed"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/offer"
	"github.com/mcdev12/rugbytransfers/go/internal/player"
	"github.com/mcdev12/rugbytransfers/go/internal/transfer"
	"github.com/rs/zerolog/log"
)

// Client wraps the player, transfer and offer services behind one typed API.
// A correlation ID attached with events.WithCorrelationID is sent with every call.
type Client struct {
	baseURL   string
	players   player.PlayerServiceClient
	transfers transfer.TransferServiceClient
	offers    offer.OfferServiceClient
}

func NewClient(baseURL string, base *clients.BaseClient) *Client {
	if base == nil {
		base = clients.NewBaseClient()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL:   baseURL,
		players:   player.NewPlayerServiceClient(base, baseURL),
		transfers: transfer.NewTransferServiceClient(base, baseURL),
		offers:    offer.NewOfferServiceClient(base, baseURL),
	}
}

func newRequest[T any](ctx context.Context, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if id := events.CorrelationID(ctx); id != "" {
		req.Header().Set(connectjson.CorrelationHeader, id)
	}
	return req
}

func (c *Client) CreateProfile(ctx context.Context, msg *player.CreatePlayerProfileRequest) (models.PlayerProfile, error) {
	resp, err := c.players.CreatePlayerProfile(ctx, newRequest(ctx, msg))
	if err != nil {
		return models.PlayerProfile{}, err
	}
	return resp.Msg.Profile, nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]models.PlayerProfile, error) {
	resp, err := c.players.ListPlayerProfiles(ctx, newRequest(ctx, &player.ListPlayerProfilesRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Profiles, nil
}

func (c *Client) GetProfile(ctx context.Context, id uint64) (models.PlayerProfile, error) {
	resp, err := c.players.GetPlayerProfile(ctx, newRequest(ctx, &player.GetPlayerProfileRequest{ID: id}))
	if err != nil {
		return models.PlayerProfile{}, err
	}
	return resp.Msg.Profile, nil
}

func (c *Client) ListProfilesByTeam(ctx context.Context, team string) ([]models.PlayerProfile, error) {
	resp, err := c.players.ListPlayerProfilesByTeam(ctx, newRequest(ctx, &player.ListPlayerProfilesByTeamRequest{Team: team}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Profiles, nil
}

func (c *Client) ExecuteTransfer(ctx context.Context, msg *transfer.CreatePlayerTransferRequest) (models.PlayerTransfer, error) {
	resp, err := c.transfers.CreatePlayerTransfer(ctx, newRequest(ctx, msg))
	if err != nil {
		return models.PlayerTransfer{}, err
	}
	return resp.Msg.Transfer, nil
}

func (c *Client) ListTransfers(ctx context.Context) ([]models.PlayerTransfer, error) {
	resp, err := c.transfers.ListPlayerTransfers(ctx, newRequest(ctx, &transfer.ListPlayerTransfersRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Transfers, nil
}

func (c *Client) GetTransfer(ctx context.Context, id uint64) (models.PlayerTransfer, error) {
	resp, err := c.transfers.GetPlayerTransfer(ctx, newRequest(ctx, &transfer.GetPlayerTransferRequest{ID: id}))
	if err != nil {
		return models.PlayerTransfer{}, err
	}
	return resp.Msg.Transfer, nil
}

func (c *Client) CreateOffer(ctx context.Context, msg *offer.CreateTransferOfferRequest) (models.TransferOffer, error) {
	resp, err := c.offers.CreateTransferOffer(ctx, newRequest(ctx, msg))
	if err != nil {
		return models.TransferOffer{}, err
	}
	return resp.Msg.Offer, nil
}

func (c *Client) ListOffers(ctx context.Context) ([]models.TransferOffer, error) {
	resp, err := c.offers.ListTransferOffers(ctx, newRequest(ctx, &offer.ListTransferOffersRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Offers, nil
}

func (c *Client) GetOffer(ctx context.Context, id uint64) (models.TransferOffer, error) {
	resp, err := c.offers.GetTransferOffer(ctx, newRequest(ctx, &offer.GetTransferOfferRequest{ID: id}))
	if err != nil {
		return models.TransferOffer{}, err
	}
	return resp.Msg.Offer, nil
}

func (c *Client) AcceptOffer(ctx context.Context, id uint64) (*offer.AcceptTransferOfferResponse, error) {
	resp, err := c.offers.AcceptTransferOffer(ctx, newRequest(ctx, &offer.AcceptTransferOfferRequest{ID: id}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) RejectOffer(ctx context.Context, id uint64) (*offer.RejectTransferOfferResponse, error) {
	resp, err := c.offers.RejectTransferOffer(ctx, newRequest(ctx, &offer.RejectTransferOfferRequest{ID: id}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// WatchTransfers subscribes to the live feed, optionally limited to team. The
// channel is closed when ctx ends or the connection drops.
func (c *Client) WatchTransfers(ctx context.Context, team string) (<-chan feed.Event, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/transfers"
	if team != "" {
		u.RawQuery = url.Values{"team": []string{team}}.Encode()
	}

	header := http.Header{}
	if id := events.CorrelationID(ctx); id != "" {
		header.Set(connectjson.CorrelationHeader, id)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to transfer feed: %w", err)
	}

	out := make(chan feed.Event)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			var ev feed.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("transfer feed closed")
				}
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
