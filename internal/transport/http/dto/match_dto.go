package dto

import "time"

type MatchItemResponse struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Bio          string    `json:"bio"`
	Photos       []string  `json:"photos"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type UnmatchRequest struct {
	TargetUserID int64 `json:"target_user_id"`
}

type UnmatchResponse struct {
	OK                 bool `json:"ok"`
	MatchInactivated   bool `json:"match_inactivated"`
	ConversationClosed bool `json:"conversation_closed"`
}
