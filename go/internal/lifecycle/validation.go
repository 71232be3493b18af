package lifecycle

import "math/bits"

// CreateProfileRequest holds the fields a client supplies for a new player
type CreateProfileRequest struct {
	Name          string `json:"name"`
	Position      string `json:"position"`
	CurrentTeam   string `json:"current_team"`
	MarketValue   uint64 `json:"market_value"`
	ContractUntil uint64 `json:"contract_until"`
	Age           uint32 `json:"age"`
	Nationality   string `json:"nationality"`
}

// TransferRequest describes a direct move of a player between teams
type TransferRequest struct {
	PlayerID         uint64 `json:"player_id"`
	FromTeam         string `json:"from_team"`
	ToTeam           string `json:"to_team"`
	TransferFee      uint64 `json:"transfer_fee"`
	TransferDate     uint64 `json:"transfer_date"`
	ContractDuration uint64 `json:"contract_duration"`
}

// OfferRequest describes a proposed transfer
type OfferRequest struct {
	PlayerID    uint64 `json:"player_id"`
	FromTeam    string `json:"from_team"`
	ToTeam      string `json:"to_team"`
	OfferAmount uint64 `json:"offer_amount"`
}

// ValidateProfile reports every invalid field of a profile payload
func ValidateProfile(req CreateProfileRequest) error {
	var v []FieldViolation
	if req.Name == "" {
		v = append(v, FieldViolation{Field: "name", Description: "name is required"})
	}
	if req.Position == "" {
		v = append(v, FieldViolation{Field: "position", Description: "position is required"})
	}
	if req.CurrentTeam == "" {
		v = append(v, FieldViolation{Field: "current_team", Description: "current team is required"})
	}
	if req.MarketValue == 0 {
		v = append(v, FieldViolation{Field: "market_value", Description: "market value must be greater than 0"})
	}
	if len(v) > 0 {
		return invalidPayload("invalid player profile", v...)
	}
	return nil
}

// ValidateTransfer reports every invalid field of a direct transfer payload
func ValidateTransfer(req TransferRequest) error {
	var v []FieldViolation
	if req.TransferFee == 0 {
		v = append(v, FieldViolation{Field: "transfer_fee", Description: "transfer fee must be greater than 0"})
	}
	if req.ContractDuration == 0 {
		v = append(v, FieldViolation{Field: "contract_duration", Description: "contract duration must be greater than 0"})
	}
	if req.FromTeam == req.ToTeam {
		v = append(v, FieldViolation{Field: "to_team", Description: "source and destination teams must differ"})
	}
	if _, carry := bits.Add64(req.TransferDate, req.ContractDuration, 0); carry != 0 {
		v = append(v, FieldViolation{Field: "contract_duration", Description: "contract end overflows"})
	}
	if len(v) > 0 {
		return invalidPayload("invalid player transfer", v...)
	}
	return nil
}

// ValidateOffer reports every invalid field of an offer payload
func ValidateOffer(req OfferRequest) error {
	if req.OfferAmount == 0 {
		return invalidPayload("invalid transfer offer",
			FieldViolation{Field: "offer_amount", Description: "offer amount must be greater than 0"})
	}
	return nil
}
