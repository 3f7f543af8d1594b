package enums

import "strings"

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchSuccess  MatchStatus = "success"
	MatchInactive MatchStatus = "inactive"
)

func ParseMatchStatus(input string) (MatchStatus, bool) {
	switch MatchStatus(strings.ToLower(strings.TrimSpace(input))) {
	case MatchPending:
		return MatchPending, true
	case MatchSuccess:
		return MatchSuccess, true
	case MatchInactive:
		return MatchInactive, true
	default:
		return "", false
	}
}

func (s MatchStatus) Valid() bool {
	return s == MatchPending || s == MatchSuccess || s == MatchInactive
}

// Terminal statuses never change again.
func (s MatchStatus) Terminal() bool {
	return s == MatchSuccess || s == MatchInactive
}

// CanTransitionTo allows pending -> success and pending -> inactive only.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return s == MatchPending && next != MatchPending
}
