package dto

import "time"

type ConversationStartRequest struct {
	OtherUserID int64 `json:"other_user_id"`
}

type ConversationResponse struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationItemResponse struct {
	ID            int64      `json:"id"`
	TargetUserID  int64      `json:"target_user_id"`
	Name          string     `json:"name"`
	Age           int        `json:"age"`
	Gender        string     `json:"gender"`
	Bio           string     `json:"bio"`
	Photos        []string   `json:"photos"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

type ConversationsResponse struct {
	Items []ConversationItemResponse `json:"items"`
}
