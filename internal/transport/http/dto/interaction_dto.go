package dto

type InteractionRequest struct {
	ToUserID int64 `json:"to_user_id"`
	IsLike   bool  `json:"is_like"`
}

type InteractionResponse struct {
	InteractionID int64  `json:"interaction_id"`
	Matched       bool   `json:"matched"`
	MatchID       *int64 `json:"match_id"`
}
