package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedate/backend/internal/domain/model"
	"github.com/pulsedate/backend/internal/domain/rules"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

type ConversationItemRecord struct {
	ID            int64
	TargetUserID  int64
	Name          string
	Gender        string
	Age           int
	Bio           string
	Photos        []string
	CreatedAt     time.Time
	LastMessage   *string
	LastMessageAt *time.Time
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// Create is idempotent per canonical pair: when a concurrent insert wins
// the unique index, the existing row is re-selected inside the same
// transaction and reported with created=false.
func (r *ConversationRepo) Create(ctx context.Context, tx pgx.Tx, userID, otherID int64) (model.Conversation, bool, error) {
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return model.Conversation{}, false, fmt.Errorf("invalid conversation payload")
	}
	if tx == nil {
		return model.Conversation{}, false, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, otherID)
	conversation := model.Conversation{
		UserAID:  userA,
		UserBID:  userB,
		IsActive: true,
	}

	err := tx.QueryRow(ctx, `
INSERT INTO conversations (
	user_a_id,
	user_b_id,
	is_active
) VALUES ($1, $2, TRUE)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, created_at
`, userA, userB).Scan(&conversation.ID, &conversation.CreatedAt)
	if err == nil {
		return conversation, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, false, fmt.Errorf("create conversation: %w", err)
	}

	existing, err := scanConversation(tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, created_at
FROM conversations
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB))
	if err != nil {
		return model.Conversation{}, false, err
	}

	return existing, false, nil
}

func (r *ConversationRepo) GetByUsers(ctx context.Context, userID, otherID int64) (model.Conversation, error) {
	if userID <= 0 || otherID <= 0 {
		return model.Conversation{}, fmt.Errorf("invalid conversation lookup")
	}
	if r.pool == nil {
		return model.Conversation{}, ErrConversationNotFound
	}

	userA, userB := rules.CanonicalPair(userID, otherID)
	return scanConversation(r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, created_at
FROM conversations
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB))
}

func (r *ConversationRepo) GetByID(ctx context.Context, conversationID int64) (model.Conversation, error) {
	if conversationID <= 0 {
		return model.Conversation{}, fmt.Errorf("invalid conversation id")
	}
	if r.pool == nil {
		return model.Conversation{}, ErrConversationNotFound
	}

	return scanConversation(r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, is_active, created_at
FROM conversations
WHERE id = $1
`, conversationID))
}

func (r *ConversationRepo) Deactivate(ctx context.Context, tx pgx.Tx, conversationID int64) (bool, error) {
	if conversationID <= 0 {
		return false, fmt.Errorf("invalid conversation id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE conversations
SET is_active = FALSE
WHERE id = $1 AND is_active
`, conversationID)
	if err != nil {
		return false, fmt.Errorf("deactivate conversation: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *ConversationRepo) DeactivateByUsers(ctx context.Context, tx pgx.Tx, userID, otherID int64) (bool, error) {
	if userID <= 0 || otherID <= 0 {
		return false, fmt.Errorf("invalid conversation lookup")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, otherID)
	result, err := tx.Exec(ctx, `
UPDATE conversations
SET is_active = FALSE
WHERE user_a_id = $1 AND user_b_id = $2 AND is_active
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("deactivate conversation by users: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *ConversationRepo) ListActiveForUser(ctx context.Context, userID int64) ([]ConversationItemRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []ConversationItemRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	u.id,
	u.name,
	u.gender,
	COALESCE(DATE_PART('year', AGE(NOW(), u.birthday::timestamp))::int, 0),
	u.bio,
	u.profile_photos,
	c.created_at,
	lm.text,
	lm.created_at
FROM conversations c
JOIN users u ON u.id = CASE WHEN c.user_a_id = $1 THEN c.user_b_id ELSE c.user_a_id END
LEFT JOIN LATERAL (
	SELECT text, created_at
	FROM messages m
	WHERE m.conversation_id = c.id
	ORDER BY m.created_at DESC, m.id DESC
	LIMIT 1
) lm ON TRUE
WHERE
	(c.user_a_id = $1 OR c.user_b_id = $1)
	AND c.is_active
ORDER BY COALESCE(lm.created_at, c.created_at) DESC, c.id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active conversations: %w", err)
	}
	defer rows.Close()

	items := make([]ConversationItemRecord, 0)
	for rows.Next() {
		var item ConversationItemRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.Name,
			&item.Gender,
			&item.Age,
			&item.Bio,
			&item.Photos,
			&item.CreatedAt,
			&item.LastMessage,
			&item.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation item: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversations: %w", rows.Err())
	}

	return items, nil
}

func scanConversation(row pgx.Row) (model.Conversation, error) {
	var conversation model.Conversation
	err := row.Scan(
		&conversation.ID,
		&conversation.UserAID,
		&conversation.UserBID,
		&conversation.IsActive,
		&conversation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("scan conversation: %w", err)
	}

	return conversation, nil
}
