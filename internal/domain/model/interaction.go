package model

import "time"

// Interaction is one immutable swipe decision: who decided, about whom,
// and whether it was a like or a pass.
type Interaction struct {
	ID         int64
	FromUserID int64
	ToUserID   int64
	IsLike     bool
	CreatedAt  time.Time
}
