package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DiscoverRepo struct {
	pool *pgxpool.Pool
}

type CandidateRecord struct {
	UserID int64
	Name   string
	Gender string
	Age    int
	Bio    string
	Photos []string
}

func NewDiscoverRepo(pool *pgxpool.Pool) *DiscoverRepo {
	return &DiscoverRepo{pool: pool}
}

// ListCandidates excludes the viewer and everyone the viewer already
// decided about. Only the viewer's outgoing decisions count: someone
// who liked the viewer still shows up until the viewer decides. Order
// is randomized per call.
func (r *DiscoverRepo) ListCandidates(ctx context.Context, viewerID int64, gender string, limit int) ([]CandidateRecord, error) {
	if viewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []CandidateRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	u.id,
	u.name,
	u.gender,
	COALESCE(DATE_PART('year', AGE(NOW(), u.birthday::timestamp))::int, 0),
	u.bio,
	u.profile_photos
FROM users u
WHERE
	u.id <> $1
	AND u.gender = $2
	AND NOT EXISTS (
		SELECT 1
		FROM interactions i
		WHERE i.from_user_id = $1 AND i.to_user_id = u.id
	)
ORDER BY RANDOM()
LIMIT $3
`, viewerID, gender, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]CandidateRecord, 0, limit)
	for rows.Next() {
		var candidate CandidateRecord
		if err := rows.Scan(
			&candidate.UserID,
			&candidate.Name,
			&candidate.Gender,
			&candidate.Age,
			&candidate.Bio,
			&candidate.Photos,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, candidate)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return candidates, nil
}
