package player

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
)

// PlayerServiceName is the fully-qualified name of the PlayerService
const PlayerServiceName = "rugby.player.v1.PlayerService"

// Procedure paths served by the PlayerService
const (
	PlayerServiceCreatePlayerProfileProcedure      = "/rugby.player.v1.PlayerService/CreatePlayerProfile"
	PlayerServiceListPlayerProfilesProcedure       = "/rugby.player.v1.PlayerService/ListPlayerProfiles"
	PlayerServiceGetPlayerProfileProcedure         = "/rugby.player.v1.PlayerService/GetPlayerProfile"
	PlayerServiceListPlayerProfilesByTeamProcedure = "/rugby.player.v1.PlayerService/ListPlayerProfilesByTeam"
)

// PlayerServiceHandler is implemented by the player service
type PlayerServiceHandler interface {
	CreatePlayerProfile(context.Context, *connect.Request[CreatePlayerProfileRequest]) (*connect.Response[CreatePlayerProfileResponse], error)
	ListPlayerProfiles(context.Context, *connect.Request[ListPlayerProfilesRequest]) (*connect.Response[ListPlayerProfilesResponse], error)
	GetPlayerProfile(context.Context, *connect.Request[GetPlayerProfileRequest]) (*connect.Response[GetPlayerProfileResponse], error)
	ListPlayerProfilesByTeam(context.Context, *connect.Request[ListPlayerProfilesByTeamRequest]) (*connect.Response[ListPlayerProfilesByTeamResponse], error)
}

// NewPlayerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(connectjson.HandlerOptions(), opts...)

	createHandler := connect.NewUnaryHandler(PlayerServiceCreatePlayerProfileProcedure, svc.CreatePlayerProfile, opts...)
	listHandler := connect.NewUnaryHandler(PlayerServiceListPlayerProfilesProcedure, svc.ListPlayerProfiles, opts...)
	getHandler := connect.NewUnaryHandler(PlayerServiceGetPlayerProfileProcedure, svc.GetPlayerProfile, opts...)
	byTeamHandler := connect.NewUnaryHandler(PlayerServiceListPlayerProfilesByTeamProcedure, svc.ListPlayerProfilesByTeam, opts...)

	return "/" + PlayerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PlayerServiceCreatePlayerProfileProcedure:
			createHandler.ServeHTTP(w, r)
		case PlayerServiceListPlayerProfilesProcedure:
			listHandler.ServeHTTP(w, r)
		case PlayerServiceGetPlayerProfileProcedure:
			getHandler.ServeHTTP(w, r)
		case PlayerServiceListPlayerProfilesByTeamProcedure:
			byTeamHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// PlayerServiceClient calls the PlayerService
type PlayerServiceClient interface {
	CreatePlayerProfile(context.Context, *connect.Request[CreatePlayerProfileRequest]) (*connect.Response[CreatePlayerProfileResponse], error)
	ListPlayerProfiles(context.Context, *connect.Request[ListPlayerProfilesRequest]) (*connect.Response[ListPlayerProfilesResponse], error)
	GetPlayerProfile(context.Context, *connect.Request[GetPlayerProfileRequest]) (*connect.Response[GetPlayerProfileResponse], error)
	ListPlayerProfilesByTeam(context.Context, *connect.Request[ListPlayerProfilesByTeamRequest]) (*connect.Response[ListPlayerProfilesByTeamResponse], error)
}

// NewPlayerServiceClient constructs a client for the PlayerService at baseURL
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(connectjson.ClientOptions(), opts...)
	return &playerServiceClient{
		create: connect.NewClient[CreatePlayerProfileRequest, CreatePlayerProfileResponse](httpClient, baseURL+PlayerServiceCreatePlayerProfileProcedure, opts...),
		list:   connect.NewClient[ListPlayerProfilesRequest, ListPlayerProfilesResponse](httpClient, baseURL+PlayerServiceListPlayerProfilesProcedure, opts...),
		get:    connect.NewClient[GetPlayerProfileRequest, GetPlayerProfileResponse](httpClient, baseURL+PlayerServiceGetPlayerProfileProcedure, opts...),
		byTeam: connect.NewClient[ListPlayerProfilesByTeamRequest, ListPlayerProfilesByTeamResponse](httpClient, baseURL+PlayerServiceListPlayerProfilesByTeamProcedure, opts...),
	}
}

type playerServiceClient struct {
	create *connect.Client[CreatePlayerProfileRequest, CreatePlayerProfileResponse]
	list   *connect.Client[ListPlayerProfilesRequest, ListPlayerProfilesResponse]
	get    *connect.Client[GetPlayerProfileRequest, GetPlayerProfileResponse]
	byTeam *connect.Client[ListPlayerProfilesByTeamRequest, ListPlayerProfilesByTeamResponse]
}

func (c *playerServiceClient) CreatePlayerProfile(ctx context.Context, req *connect.Request[CreatePlayerProfileRequest]) (*connect.Response[CreatePlayerProfileResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *playerServiceClient) ListPlayerProfiles(ctx context.Context, req *connect.Request[ListPlayerProfilesRequest]) (*connect.Response[ListPlayerProfilesResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetPlayerProfile(ctx context.Context, req *connect.Request[GetPlayerProfileRequest]) (*connect.Response[GetPlayerProfileResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *playerServiceClient) ListPlayerProfilesByTeam(ctx context.Context, req *connect.Request[ListPlayerProfilesByTeamRequest]) (*connect.Response[ListPlayerProfilesByTeamResponse], error) {
	return c.byTeam.CallUnary(ctx, req)
}
