package model

import "time"

// Conversation stores the pair in canonical order: UserAID < UserBID.
type Conversation struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	IsActive  bool
	CreatedAt time.Time
}

func (c Conversation) Involves(userID int64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

func (c Conversation) OtherUser(userID int64) int64 {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}
