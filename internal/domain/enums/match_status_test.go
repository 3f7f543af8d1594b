package enums

import "testing"

func TestMatchStatusTransitions(t *testing.T) {
	cases := []struct {
		from    MatchStatus
		to      MatchStatus
		allowed bool
	}{
		{MatchPending, MatchSuccess, true},
		{MatchPending, MatchInactive, true},
		{MatchPending, MatchPending, false},
		{MatchSuccess, MatchInactive, false},
		{MatchSuccess, MatchPending, false},
		{MatchInactive, MatchSuccess, false},
		{MatchInactive, MatchPending, false},
		{MatchStatus("bogus"), MatchSuccess, false},
		{MatchPending, MatchStatus("bogus"), false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("transition %s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestParseMatchStatus(t *testing.T) {
	status, ok := ParseMatchStatus("  Pending ")
	if !ok || status != MatchPending {
		t.Fatalf("parse pending: got %q ok=%v", status, ok)
	}

	if _, ok := ParseMatchStatus("deleted"); ok {
		t.Fatalf("expected unknown status to fail")
	}
}

func TestMatchStatusTerminal(t *testing.T) {
	if MatchPending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
	if !MatchSuccess.Terminal() || !MatchInactive.Terminal() {
		t.Fatalf("success and inactive must be terminal")
	}
}
