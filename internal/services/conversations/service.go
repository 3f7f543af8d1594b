package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotMatched     = errors.New("users are not matched")
	ErrNotFound       = errors.New("conversation not found")
	ErrInactive       = errors.New("conversation is inactive")
	ErrNotParticipant = errors.New("user is not a conversation participant")
)

type ConversationStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID, otherID int64) (model.Conversation, bool, error)
	GetByUsers(ctx context.Context, userID, otherID int64) (model.Conversation, error)
	GetByID(ctx context.Context, conversationID int64) (model.Conversation, error)
	Deactivate(ctx context.Context, tx pgx.Tx, conversationID int64) (bool, error)
	ListActiveForUser(ctx context.Context, userID int64) ([]pgrepo.ConversationItemRecord, error)
}

type MatchStore interface {
	GetByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, matchID int64, from, to enums.MatchStatus) (bool, error)
}

type MessageStore interface {
	Create(ctx context.Context, conversationID, senderID int64, text string) (model.Message, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error)
}

type StartResult struct {
	Conversation model.Conversation
	Created      bool
}

type ConversationItem struct {
	ID            int64
	TargetUserID  int64
	Name          string
	Gender        enums.Gender
	Age           int
	Bio           string
	Photos        []string
	CreatedAt     time.Time
	LastMessage   *string
	LastMessageAt *time.Time
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Conversations ConversationStore
	Matches       MatchStore
	Messages      MessageStore
}

type Service struct {
	conversations ConversationStore
	matches       MatchStore
	messages      MessageStore
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies) *Service {
	return &Service{
		conversations: deps.Conversations,
		matches:       deps.Matches,
		messages:      deps.Messages,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// Start opens the conversation for a matched pair. Calling it again for
// the same pair returns the existing conversation unchanged. The first
// successful open flips a still-pending match to success in the same
// transaction; matches already in a terminal status are untouched.
func (s *Service) Start(ctx context.Context, userID, otherID int64) (StartResult, error) {
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return StartResult{}, ErrValidation
	}
	if s.conversations == nil || s.matches == nil {
		return StartResult{}, fmt.Errorf("conversation dependencies are not configured")
	}

	existing, err := s.conversations.GetByUsers(ctx, userID, otherID)
	if err == nil {
		return StartResult{Conversation: existing, Created: false}, nil
	}
	if !errors.Is(err, pgrepo.ErrConversationNotFound) {
		return StartResult{}, fmt.Errorf("lookup conversation: %w", err)
	}

	var result StartResult
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		match, err := s.matches.GetByUsers(txCtx, tx, userID, otherID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrNotMatched
			}
			return err
		}

		conversation, created, err := s.conversations.Create(txCtx, tx, userID, otherID)
		if err != nil {
			return err
		}
		result.Conversation = conversation
		result.Created = created

		if created && match.Status.CanTransitionTo(enums.MatchSuccess) {
			if _, err := s.matches.UpdateStatus(txCtx, tx, match.ID, match.Status, enums.MatchSuccess); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return StartResult{}, err
	}

	return result, nil
}

// Authorize loads the conversation and checks that the user belongs to it.
func (s *Service) Authorize(ctx context.Context, conversationID, userID int64) (model.Conversation, error) {
	if conversationID <= 0 || userID <= 0 {
		return model.Conversation{}, ErrValidation
	}
	if s.conversations == nil {
		return model.Conversation{}, fmt.Errorf("conversation dependencies are not configured")
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrConversationNotFound) {
			return model.Conversation{}, ErrNotFound
		}
		return model.Conversation{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if !conversation.Involves(userID) {
		return model.Conversation{}, ErrNotParticipant
	}

	return conversation, nil
}

func (s *Service) Close(ctx context.Context, conversationID, userID int64) error {
	if _, err := s.Authorize(ctx, conversationID, userID); err != nil {
		return err
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.conversations.Deactivate(txCtx, tx, conversationID); err != nil {
			return err
		}
		return nil
	})
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]ConversationItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.conversations == nil {
		return nil, fmt.Errorf("conversation dependencies are not configured")
	}

	records, err := s.conversations.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	items := make([]ConversationItem, 0, len(records))
	for _, record := range records {
		items = append(items, ConversationItem{
			ID:            record.ID,
			TargetUserID:  record.TargetUserID,
			Name:          record.Name,
			Gender:        enums.Gender(record.Gender),
			Age:           record.Age,
			Bio:           record.Bio,
			Photos:        record.Photos,
			CreatedAt:     record.CreatedAt,
			LastMessage:   record.LastMessage,
			LastMessageAt: record.LastMessageAt,
		})
	}

	return items, nil
}

// SendMessage persists a message after the business gates pass: the
// conversation exists, is active, and the sender belongs to it. Shape
// validation (trimming, length caps) happens at the transport boundary.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID int64, text string) (model.Message, error) {
	if conversationID <= 0 || senderID <= 0 || strings.TrimSpace(text) == "" {
		return model.Message{}, ErrValidation
	}
	if s.messages == nil {
		return model.Message{}, fmt.Errorf("conversation dependencies are not configured")
	}

	conversation, err := s.Authorize(ctx, conversationID, senderID)
	if err != nil {
		return model.Message{}, err
	}
	if !conversation.IsActive {
		return model.Message{}, ErrInactive
	}

	message, err := s.messages.Create(ctx, conversationID, senderID, text)
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}

	return message, nil
}

func (s *Service) ListMessages(ctx context.Context, conversationID, userID int64) ([]model.Message, error) {
	if s.messages == nil {
		return nil, fmt.Errorf("conversation dependencies are not configured")
	}

	if _, err := s.Authorize(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}
