package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedate/backend/internal/domain/model"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfInteraction = errors.New("cannot interact with yourself")
	ErrDuplicate       = errors.New("interaction already recorded")
)

type InteractionStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, userID, targetID int64) error
	Create(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64, isLike bool) (model.Interaction, error)
	HasLike(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error)
}

type MatchStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, error)
	GetByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, error)
}

type Result struct {
	InteractionID int64
	MatchID       *int64
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	Interactions InteractionStore
	Matches      MatchStore
}

type Service struct {
	interactions InteractionStore
	matches      MatchStore
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now          func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		interactions: deps.Interactions,
		matches:      deps.Matches,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now: time.Now,
	}
}

// Record writes the decision and, for a like that closes a reciprocal
// like, creates the pending match in the same transaction. The pair's
// advisory lock is taken first: two simultaneous mutual likes would
// otherwise each miss the other's uncommitted row and neither would
// create the match. When a concurrent request already created the
// match, the existing one is loaded and reported instead of failing
// the interaction.
func (s *Service) Record(ctx context.Context, userID, targetID int64, isLike bool) (Result, error) {
	if userID <= 0 || targetID <= 0 {
		return Result{}, ErrValidation
	}
	if userID == targetID {
		return Result{}, ErrSelfInteraction
	}
	if s.interactions == nil || s.matches == nil {
		return Result{}, fmt.Errorf("interaction dependencies are not configured")
	}

	var result Result
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.interactions.LockPair(txCtx, tx, userID, targetID); err != nil {
			return err
		}

		interaction, err := s.interactions.Create(txCtx, tx, userID, targetID, isLike)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateInteraction) {
				return ErrDuplicate
			}
			return err
		}
		result.InteractionID = interaction.ID

		if !isLike {
			return nil
		}

		reciprocal, err := s.interactions.HasLike(txCtx, tx, targetID, userID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		match, err := s.matches.Create(txCtx, tx, userID, targetID)
		if err != nil {
			if !errors.Is(err, pgrepo.ErrDuplicateMatch) {
				return err
			}
			match, err = s.matches.GetByUsers(txCtx, tx, userID, targetID)
			if err != nil {
				return err
			}
		}

		matchID := match.ID
		result.MatchID = &matchID
		return nil
	}); err != nil {
		return Result{}, err
	}

	return result, nil
}
