package player

import "github.com/mcdev12/rugbytransfers/go/internal/models"

type CreatePlayerProfileRequest struct {
	Name          string `json:"name"`
	Position      string `json:"position"`
	CurrentTeam   string `json:"current_team"`
	MarketValue   uint64 `json:"market_value"`
	ContractUntil uint64 `json:"contract_until"`
	Age           uint32 `json:"age"`
	Nationality   string `json:"nationality"`
}

type CreatePlayerProfileResponse struct {
	Profile models.PlayerProfile `json:"profile"`
}

type ListPlayerProfilesRequest struct{}

type ListPlayerProfilesResponse struct {
	Profiles []models.PlayerProfile `json:"profiles"`
}

type GetPlayerProfileRequest struct {
	ID uint64 `json:"id"`
}

type GetPlayerProfileResponse struct {
	Profile models.PlayerProfile `json:"profile"`
}

type ListPlayerProfilesByTeamRequest struct {
	Team string `json:"team"`
}

type ListPlayerProfilesByTeamResponse struct {
	Profiles []models.PlayerProfile `json:"profiles"`
}
