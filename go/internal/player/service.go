package player

import (
	"context"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
)

// ProfileApp defines what the service layer needs from the lifecycle engine
type ProfileApp interface {
	CreateProfile(ctx context.Context, req lifecycle.CreateProfileRequest) (models.PlayerProfile, error)
	ListProfiles(ctx context.Context) ([]models.PlayerProfile, error)
	GetProfile(ctx context.Context, id uint64) (models.PlayerProfile, error)
	ListProfilesByTeam(ctx context.Context, team string) ([]models.PlayerProfile, error)
}

// Service implements the PlayerService connect interface
type Service struct {
	app ProfileApp
}

// NewService creates a new player service
func NewService(app ProfileApp) *Service {
	return &Service{
		app: app,
	}
}

// Verify that Service implements the PlayerServiceHandler interface
var _ PlayerServiceHandler = (*Service)(nil)

// CreatePlayerProfile registers a new player
func (s *Service) CreatePlayerProfile(ctx context.Context, req *connect.Request[CreatePlayerProfileRequest]) (*connect.Response[CreatePlayerProfileResponse], error) {
	profile, err := s.app.CreateProfile(ctx, lifecycle.CreateProfileRequest{
		Name:          req.Msg.Name,
		Position:      req.Msg.Position,
		CurrentTeam:   req.Msg.CurrentTeam,
		MarketValue:   req.Msg.MarketValue,
		ContractUntil: req.Msg.ContractUntil,
		Age:           req.Msg.Age,
		Nationality:   req.Msg.Nationality,
	})
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&CreatePlayerProfileResponse{
		Profile: profile,
	}), nil
}

// ListPlayerProfiles returns every player
func (s *Service) ListPlayerProfiles(ctx context.Context, req *connect.Request[ListPlayerProfilesRequest]) (*connect.Response[ListPlayerProfilesResponse], error) {
	profiles, err := s.app.ListProfiles(ctx)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&ListPlayerProfilesResponse{
		Profiles: profiles,
	}), nil
}

// GetPlayerProfile retrieves a player by ID
func (s *Service) GetPlayerProfile(ctx context.Context, req *connect.Request[GetPlayerProfileRequest]) (*connect.Response[GetPlayerProfileResponse], error) {
	profile, err := s.app.GetProfile(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&GetPlayerProfileResponse{
		Profile: profile,
	}), nil
}

// ListPlayerProfilesByTeam returns the players currently at a team
func (s *Service) ListPlayerProfilesByTeam(ctx context.Context, req *connect.Request[ListPlayerProfilesByTeamRequest]) (*connect.Response[ListPlayerProfilesByTeamResponse], error) {
	profiles, err := s.app.ListProfilesByTeam(ctx, req.Msg.Team)
	if err != nil {
		return nil, connectjson.Error(err)
	}

	return connect.NewResponse(&ListPlayerProfilesByTeamResponse{
		Profiles: profiles,
	}), nil
}
