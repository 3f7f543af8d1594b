package interactions

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/domain/rules"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

type pairKey struct {
	from int64
	to   int64
}

type fakeInteractionStore struct {
	nextID    int64
	decisions map[pairKey]bool
	locked    []pairKey
}

func newFakeInteractionStore() *fakeInteractionStore {
	return &fakeInteractionStore{nextID: 1, decisions: make(map[pairKey]bool)}
}

func (s *fakeInteractionStore) LockPair(_ context.Context, _ pgx.Tx, userID, targetID int64) error {
	userA, userB := rules.CanonicalPair(userID, targetID)
	s.locked = append(s.locked, pairKey{from: userA, to: userB})
	return nil
}

func (s *fakeInteractionStore) Create(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64, isLike bool) (model.Interaction, error) {
	if len(s.locked) == 0 {
		return model.Interaction{}, errors.New("pair not locked before write")
	}
	key := pairKey{from: fromUserID, to: toUserID}
	if _, exists := s.decisions[key]; exists {
		return model.Interaction{}, pgrepo.ErrDuplicateInteraction
	}
	s.decisions[key] = isLike

	interaction := model.Interaction{
		ID:         s.nextID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		IsLike:     isLike,
	}
	s.nextID++
	return interaction, nil
}

func (s *fakeInteractionStore) HasLike(_ context.Context, _ pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	isLike, exists := s.decisions[pairKey{from: fromUserID, to: toUserID}]
	return exists && isLike, nil
}

type fakeMatchStore struct {
	nextID  int64
	byPair  map[pairKey]model.Match
	created int
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{nextID: 100, byPair: make(map[pairKey]model.Match)}
}

func (s *fakeMatchStore) Create(_ context.Context, _ pgx.Tx, userID, targetID int64) (model.Match, error) {
	userA, userB := rules.CanonicalPair(userID, targetID)
	key := pairKey{from: userA, to: userB}
	if _, exists := s.byPair[key]; exists {
		return model.Match{}, pgrepo.ErrDuplicateMatch
	}

	match := model.Match{
		ID:      s.nextID,
		UserAID: userA,
		UserBID: userB,
		Status:  enums.MatchPending,
	}
	s.nextID++
	s.created++
	s.byPair[key] = match
	return match, nil
}

func (s *fakeMatchStore) GetByUsers(_ context.Context, _ pgx.Tx, userID, targetID int64) (model.Match, error) {
	userA, userB := rules.CanonicalPair(userID, targetID)
	match, ok := s.byPair[pairKey{from: userA, to: userB}]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return match, nil
}

func newTestService(interactions *fakeInteractionStore, matches *fakeMatchStore) *Service {
	service := NewService(Dependencies{Interactions: interactions, Matches: matches})
	service.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return service
}

func TestRecordValidation(t *testing.T) {
	service := newTestService(newFakeInteractionStore(), newFakeMatchStore())

	if _, err := service.Record(context.Background(), 0, 2, true); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero user: got %v, want ErrValidation", err)
	}
	if _, err := service.Record(context.Background(), 5, 5, true); !errors.Is(err, ErrSelfInteraction) {
		t.Fatalf("self target: got %v, want ErrSelfInteraction", err)
	}
}

func TestRecordLikeWithoutReciprocal(t *testing.T) {
	interactions := newFakeInteractionStore()
	matches := newFakeMatchStore()
	service := newTestService(interactions, matches)

	result, err := service.Record(context.Background(), 1, 2, true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if result.InteractionID == 0 {
		t.Fatalf("interaction id not set")
	}
	if result.MatchID != nil {
		t.Fatalf("unexpected match id %d", *result.MatchID)
	}
	if matches.created != 0 {
		t.Fatalf("match created without reciprocal like")
	}
}

func TestRecordMutualLikeCreatesMatch(t *testing.T) {
	interactions := newFakeInteractionStore()
	matches := newFakeMatchStore()
	service := newTestService(interactions, matches)

	if _, err := service.Record(context.Background(), 2, 1, true); err != nil {
		t.Fatalf("first like: %v", err)
	}

	result, err := service.Record(context.Background(), 1, 2, true)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if result.MatchID == nil {
		t.Fatalf("mutual like did not produce a match")
	}
	if matches.created != 1 {
		t.Fatalf("created %d matches, want 1", matches.created)
	}

	match, err := matches.GetByUsers(context.Background(), nil, 1, 2)
	if err != nil {
		t.Fatalf("load match: %v", err)
	}
	if match.UserAID != 1 || match.UserBID != 2 {
		t.Fatalf("match pair not canonical: %+v", match)
	}
	if match.Status != enums.MatchPending {
		t.Fatalf("new match status %q, want pending", match.Status)
	}
}

func TestRecordPassNeverMatches(t *testing.T) {
	interactions := newFakeInteractionStore()
	matches := newFakeMatchStore()
	service := newTestService(interactions, matches)

	if _, err := service.Record(context.Background(), 2, 1, true); err != nil {
		t.Fatalf("like: %v", err)
	}
	result, err := service.Record(context.Background(), 1, 2, false)
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if result.MatchID != nil {
		t.Fatalf("pass produced a match")
	}
}

func TestRecordLocksCanonicalPairFirst(t *testing.T) {
	interactions := newFakeInteractionStore()
	matches := newFakeMatchStore()
	service := newTestService(interactions, matches)

	if _, err := service.Record(context.Background(), 9, 4, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := service.Record(context.Background(), 4, 9, true); err != nil {
		t.Fatalf("reciprocal record: %v", err)
	}

	if len(interactions.locked) != 2 {
		t.Fatalf("took %d pair locks, want 2", len(interactions.locked))
	}
	for i, lock := range interactions.locked {
		if lock.from != 4 || lock.to != 9 {
			t.Fatalf("lock %d not canonical: %+v", i, lock)
		}
	}
}

func TestRecordDuplicateInteraction(t *testing.T) {
	service := newTestService(newFakeInteractionStore(), newFakeMatchStore())

	if _, err := service.Record(context.Background(), 1, 2, true); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := service.Record(context.Background(), 1, 2, false); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second record: got %v, want ErrDuplicate", err)
	}
}

func TestRecordReconcilesLostMatchRace(t *testing.T) {
	interactions := newFakeInteractionStore()
	matches := newFakeMatchStore()
	service := newTestService(interactions, matches)

	// the other request already created the match for this pair
	existing, err := matches.Create(context.Background(), nil, 2, 1)
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if err := interactions.LockPair(context.Background(), nil, 2, 1); err != nil {
		t.Fatalf("seed lock: %v", err)
	}
	if _, err := interactions.Create(context.Background(), nil, 2, 1, true); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	result, err := service.Record(context.Background(), 1, 2, true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if result.MatchID == nil || *result.MatchID != existing.ID {
		t.Fatalf("got match id %v, want existing %d", result.MatchID, existing.ID)
	}
	if matches.created != 1 {
		t.Fatalf("race created a second match")
	}
}
