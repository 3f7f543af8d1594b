package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/domain/rules"
)

type InteractionRepo struct {
	pool *pgxpool.Pool
}

func NewInteractionRepo(pool *pgxpool.Pool) *InteractionRepo {
	return &InteractionRepo{pool: pool}
}

// LockPair serializes decision writes for one pair of users. Both
// directions map to the same advisory lock, so two simultaneous mutual
// likes cannot each miss the other's uncommitted row. The lock is
// released when the transaction ends.
func (r *InteractionRepo) LockPair(ctx context.Context, tx pgx.Tx, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return fmt.Errorf("invalid pair lock")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)
	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))
`, userA, userB); err != nil {
		return fmt.Errorf("lock pair: %w", err)
	}

	return nil
}

// Create inserts the decision row. Rows are immutable: a second decision
// for the same ordered pair hits the unique index and surfaces as
// ErrDuplicateInteraction instead of overwriting the first one.
func (r *InteractionRepo) Create(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64, isLike bool) (model.Interaction, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return model.Interaction{}, fmt.Errorf("invalid interaction payload")
	}
	if tx == nil {
		return model.Interaction{}, fmt.Errorf("transaction is required")
	}

	interaction := model.Interaction{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		IsLike:     isLike,
	}

	err := tx.QueryRow(ctx, `
INSERT INTO interactions (
	from_user_id,
	to_user_id,
	is_like
) VALUES ($1, $2, $3)
RETURNING id, created_at
`, fromUserID, toUserID, isLike).Scan(&interaction.ID, &interaction.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Interaction{}, ErrDuplicateInteraction
		}
		return model.Interaction{}, fmt.Errorf("create interaction: %w", err)
	}

	return interaction, nil
}

func (r *InteractionRepo) HasLike(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return false, fmt.Errorf("invalid like lookup")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM interactions
WHERE from_user_id = $1 AND to_user_id = $2 AND is_like
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}
