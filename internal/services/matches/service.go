package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("match not found")
)

type MatchStore interface {
	GetByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, matchID int64, from, to enums.MatchStatus) (bool, error)
	ListPendingForUser(ctx context.Context, userID int64) ([]pgrepo.MatchItemRecord, error)
}

type ConversationStore interface {
	DeactivateByUsers(ctx context.Context, tx pgx.Tx, userID, otherID int64) (bool, error)
}

type MatchItem struct {
	ID           int64
	TargetUserID int64
	Name         string
	Gender       enums.Gender
	Age          int
	Bio          string
	Photos       []string
	CreatedAt    time.Time
}

type UnmatchResult struct {
	MatchInactivated   bool
	ConversationClosed bool
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	MatchStore    MatchStore
	Conversations ConversationStore
}

type Service struct {
	matches       MatchStore
	conversations ConversationStore
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matches:       deps.MatchStore,
		conversations: deps.Conversations,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// List returns the user's pending matches with the other side's public
// profile. Success and inactive matches are not shown here: success
// pairs live in conversations, inactive pairs are gone.
func (s *Service) List(ctx context.Context, userID int64) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matches == nil {
		return nil, fmt.Errorf("match dependencies are not configured")
	}

	records, err := s.matches.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}

	items := make([]MatchItem, 0, len(records))
	for _, record := range records {
		items = append(items, MatchItem{
			ID:           record.ID,
			TargetUserID: record.TargetUserID,
			Name:         record.Name,
			Gender:       enums.Gender(record.Gender),
			Age:          record.Age,
			Bio:          record.Bio,
			Photos:       record.Photos,
			CreatedAt:    record.CreatedAt,
		})
	}

	return items, nil
}

// Unmatch is unilateral: either side may end the pair. A pending match
// goes inactive and any active conversation closes in one transaction.
// Terminal match statuses are left as they are.
func (s *Service) Unmatch(ctx context.Context, userID, targetID int64) (UnmatchResult, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return UnmatchResult{}, ErrValidation
	}
	if s.matches == nil || s.conversations == nil {
		return UnmatchResult{}, fmt.Errorf("match dependencies are not configured")
	}

	var result UnmatchResult
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		match, err := s.matches.GetByUsers(txCtx, tx, userID, targetID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchNotFound) {
				return ErrNotFound
			}
			return err
		}

		if match.Status.CanTransitionTo(enums.MatchInactive) {
			updated, err := s.matches.UpdateStatus(txCtx, tx, match.ID, match.Status, enums.MatchInactive)
			if err != nil {
				return err
			}
			result.MatchInactivated = updated
		}

		closed, err := s.conversations.DeactivateByUsers(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		result.ConversationClosed = closed
		return nil
	}); err != nil {
		return UnmatchResult{}, err
	}

	return result, nil
}
