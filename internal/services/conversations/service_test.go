package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/domain/rules"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

type fakeConversationStore struct {
	nextID int64
	byID   map[int64]model.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{nextID: 1, byID: make(map[int64]model.Conversation)}
}

func (s *fakeConversationStore) Create(_ context.Context, _ pgx.Tx, userID, otherID int64) (model.Conversation, bool, error) {
	userA, userB := rules.CanonicalPair(userID, otherID)
	for _, conversation := range s.byID {
		if conversation.UserAID == userA && conversation.UserBID == userB {
			return conversation, false, nil
		}
	}

	conversation := model.Conversation{
		ID:       s.nextID,
		UserAID:  userA,
		UserBID:  userB,
		IsActive: true,
	}
	s.nextID++
	s.byID[conversation.ID] = conversation
	return conversation, true, nil
}

func (s *fakeConversationStore) GetByUsers(_ context.Context, userID, otherID int64) (model.Conversation, error) {
	userA, userB := rules.CanonicalPair(userID, otherID)
	for _, conversation := range s.byID {
		if conversation.UserAID == userA && conversation.UserBID == userB {
			return conversation, nil
		}
	}
	return model.Conversation{}, pgrepo.ErrConversationNotFound
}

func (s *fakeConversationStore) GetByID(_ context.Context, conversationID int64) (model.Conversation, error) {
	conversation, ok := s.byID[conversationID]
	if !ok {
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	return conversation, nil
}

func (s *fakeConversationStore) Deactivate(_ context.Context, _ pgx.Tx, conversationID int64) (bool, error) {
	conversation, ok := s.byID[conversationID]
	if !ok || !conversation.IsActive {
		return false, nil
	}
	conversation.IsActive = false
	s.byID[conversationID] = conversation
	return true, nil
}

func (s *fakeConversationStore) ListActiveForUser(_ context.Context, _ int64) ([]pgrepo.ConversationItemRecord, error) {
	return []pgrepo.ConversationItemRecord{}, nil
}

type fakeMatchStore struct {
	byPair  map[[2]int64]model.Match
	updates int
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{byPair: make(map[[2]int64]model.Match)}
}

func (s *fakeMatchStore) put(match model.Match) {
	s.byPair[[2]int64{match.UserAID, match.UserBID}] = match
}

func (s *fakeMatchStore) GetByUsers(_ context.Context, _ pgx.Tx, userID, targetID int64) (model.Match, error) {
	userA, userB := rules.CanonicalPair(userID, targetID)
	match, ok := s.byPair[[2]int64{userA, userB}]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return match, nil
}

func (s *fakeMatchStore) UpdateStatus(_ context.Context, _ pgx.Tx, matchID int64, from, to enums.MatchStatus) (bool, error) {
	for key, match := range s.byPair {
		if match.ID == matchID && match.Status == from {
			match.Status = to
			s.byPair[key] = match
			s.updates++
			return true, nil
		}
	}
	return false, nil
}

type fakeMessageStore struct {
	nextID   int64
	messages map[int64][]model.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{nextID: 1, messages: make(map[int64][]model.Message)}
}

func (s *fakeMessageStore) Create(_ context.Context, conversationID, senderID int64, text string) (model.Message, error) {
	message := model.Message{
		ID:             s.nextID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	s.nextID++
	s.messages[conversationID] = append(s.messages[conversationID], message)
	return message, nil
}

func (s *fakeMessageStore) ListByConversation(_ context.Context, conversationID int64) ([]model.Message, error) {
	return s.messages[conversationID], nil
}

func newTestService(conversations *fakeConversationStore, matches *fakeMatchStore, messages *fakeMessageStore) *Service {
	service := NewService(Dependencies{Conversations: conversations, Matches: matches, Messages: messages})
	service.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return service
}

func TestStartRequiresMatch(t *testing.T) {
	service := newTestService(newFakeConversationStore(), newFakeMatchStore(), newFakeMessageStore())

	if _, err := service.Start(context.Background(), 1, 2); !errors.Is(err, ErrNotMatched) {
		t.Fatalf("got %v, want ErrNotMatched", err)
	}
}

func TestStartFlipsPendingMatchToSuccess(t *testing.T) {
	conversations := newFakeConversationStore()
	matches := newFakeMatchStore()
	matches.put(model.Match{ID: 9, UserAID: 1, UserBID: 2, Status: enums.MatchPending})
	service := newTestService(conversations, matches, newFakeMessageStore())

	result, err := service.Start(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected a new conversation")
	}
	if result.Conversation.UserAID != 1 || result.Conversation.UserBID != 2 {
		t.Fatalf("pair not canonical: %+v", result.Conversation)
	}

	match, _ := matches.GetByUsers(context.Background(), nil, 1, 2)
	if match.Status != enums.MatchSuccess {
		t.Fatalf("match status %q, want success", match.Status)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	conversations := newFakeConversationStore()
	matches := newFakeMatchStore()
	matches.put(model.Match{ID: 9, UserAID: 1, UserBID: 2, Status: enums.MatchPending})
	service := newTestService(conversations, matches, newFakeMessageStore())

	first, err := service.Start(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := service.Start(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.Created {
		t.Fatalf("second start created a new conversation")
	}
	if second.Conversation.ID != first.Conversation.ID {
		t.Fatalf("second start returned conversation %d, want %d", second.Conversation.ID, first.Conversation.ID)
	}
	if matches.updates != 1 {
		t.Fatalf("match updated %d times, want 1", matches.updates)
	}
}

func TestStartLeavesTerminalMatchAlone(t *testing.T) {
	conversations := newFakeConversationStore()
	matches := newFakeMatchStore()
	matches.put(model.Match{ID: 4, UserAID: 3, UserBID: 5, Status: enums.MatchInactive})
	service := newTestService(conversations, matches, newFakeMessageStore())

	if _, err := service.Start(context.Background(), 3, 5); err != nil {
		t.Fatalf("start: %v", err)
	}
	match, _ := matches.GetByUsers(context.Background(), nil, 3, 5)
	if match.Status != enums.MatchInactive {
		t.Fatalf("terminal match status changed to %q", match.Status)
	}
}

func seedConversation(t *testing.T, service *Service, matches *fakeMatchStore, userA, userB int64) model.Conversation {
	t.Helper()
	matches.put(model.Match{ID: userA*100 + userB, UserAID: userA, UserBID: userB, Status: enums.MatchPending})
	result, err := service.Start(context.Background(), userA, userB)
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return result.Conversation
}

func TestSendMessageGates(t *testing.T) {
	conversations := newFakeConversationStore()
	matches := newFakeMatchStore()
	messages := newFakeMessageStore()
	service := newTestService(conversations, matches, messages)
	conversation := seedConversation(t, service, matches, 1, 2)

	if _, err := service.SendMessage(context.Background(), 999, 1, "hello"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown conversation: got %v, want ErrNotFound", err)
	}
	if _, err := service.SendMessage(context.Background(), conversation.ID, 7, "hello"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider: got %v, want ErrNotParticipant", err)
	}

	message, err := service.SendMessage(context.Background(), conversation.ID, 1, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.SenderID != 1 || message.Text != "hello" {
		t.Fatalf("unexpected message %+v", message)
	}

	if err := service.Close(context.Background(), conversation.ID, 2); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := service.SendMessage(context.Background(), conversation.ID, 1, "too late"); !errors.Is(err, ErrInactive) {
		t.Fatalf("inactive conversation: got %v, want ErrInactive", err)
	}
}

func TestListMessagesRequiresParticipant(t *testing.T) {
	conversations := newFakeConversationStore()
	matches := newFakeMatchStore()
	messages := newFakeMessageStore()
	service := newTestService(conversations, matches, messages)
	conversation := seedConversation(t, service, matches, 1, 2)

	if _, err := service.SendMessage(context.Background(), conversation.ID, 1, "first"); err != nil {
		t.Fatalf("send first: %v", err)
	}
	if _, err := service.SendMessage(context.Background(), conversation.ID, 2, "second"); err != nil {
		t.Fatalf("send second: %v", err)
	}

	history, err := service.ListMessages(context.Background(), conversation.ID, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 || history[0].Text != "first" || history[1].Text != "second" {
		t.Fatalf("history out of order: %+v", history)
	}

	if _, err := service.ListMessages(context.Background(), conversation.ID, 9); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider list: got %v, want ErrNotParticipant", err)
	}
}

func TestCloseRequiresParticipant(t *testing.T) {
	conversations := newFakeConversationStore()
	matches := newFakeMatchStore()
	service := newTestService(conversations, matches, newFakeMessageStore())
	conversation := seedConversation(t, service, matches, 1, 2)

	if err := service.Close(context.Background(), conversation.ID, 3); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider close: got %v, want ErrNotParticipant", err)
	}
	if err := service.Close(context.Background(), conversation.ID, 1); err != nil {
		t.Fatalf("participant close: %v", err)
	}
}
