package model

import (
	"time"

	"github.com/pulsedate/backend/internal/domain/enums"
)

// Match stores the pair in canonical order: UserAID < UserBID.
type Match struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	Status    enums.MatchStatus
	CreatedAt time.Time
}

func (m Match) Involves(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m Match) OtherUser(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
