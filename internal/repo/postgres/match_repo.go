package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/domain/rules"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

type MatchItemRecord struct {
	ID           int64
	TargetUserID int64
	Name         string
	Gender       string
	Age          int
	Bio          string
	Photos       []string
	CreatedAt    time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Create inserts a pending match for the canonical pair. The unique
// index is the only duplicate guard: a concurrent insert for the same
// pair makes ON CONFLICT swallow this one, reported as ErrDuplicateMatch
// so the caller can load the winning row.
func (r *MatchRepo) Create(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return model.Match{}, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return model.Match{}, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)
	match := model.Match{
		UserAID: userA,
		UserBID: userB,
		Status:  enums.MatchPending,
	}

	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	status
) VALUES ($1, $2, 'pending')
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, created_at
`, userA, userB).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrDuplicateMatch
		}
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}

	return match, nil
}

func (r *MatchRepo) GetByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (model.Match, error) {
	if userID <= 0 || targetID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match lookup")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)
	row := r.queryRow(ctx, tx, `
SELECT id, user_a_id, user_b_id, status, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB)

	return scanMatch(row)
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID int64) (model.Match, error) {
	if matchID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match id")
	}
	if r.pool == nil {
		return model.Match{}, ErrMatchNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, status, created_at
FROM matches
WHERE id = $1
`, matchID)

	return scanMatch(row)
}

// UpdateStatus flips the status only when the row still carries the
// expected one, so a concurrent transition loses instead of clobbering.
func (r *MatchRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, matchID int64, from, to enums.MatchStatus) (bool, error) {
	if matchID <= 0 || !from.Valid() || !to.Valid() {
		return false, fmt.Errorf("invalid match status update")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET status = $3
WHERE id = $1 AND status = $2
`, matchID, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("update match status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *MatchRepo) ListPendingForUser(ctx context.Context, userID int64) ([]MatchItemRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []MatchItemRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	u.id,
	u.name,
	u.gender,
	COALESCE(DATE_PART('year', AGE(NOW(), u.birthday::timestamp))::int, 0),
	u.bio,
	u.profile_photos,
	m.created_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = 'pending'
ORDER BY m.created_at DESC, m.id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchItemRecord, 0)
	for rows.Next() {
		var item MatchItemRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.Name,
			&item.Gender,
			&item.Age,
			&item.Bio,
			&item.Photos,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pending match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate pending matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) queryRow(ctx context.Context, tx pgx.Tx, sql string, args ...any) pgx.Row {
	if tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var match model.Match
	var status string
	err := row.Scan(&match.ID, &match.UserAID, &match.UserBID, &status, &match.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("scan match: %w", err)
	}

	match.Status = enums.MatchStatus(status)
	return match, nil
}
