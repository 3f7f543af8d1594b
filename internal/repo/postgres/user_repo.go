package postgres

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
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	Birthday     time.Time
	Gender       enums.Gender
	Bio          string
}

func (r *UserRepo) Create(ctx context.Context, params CreateUserParams) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(params.Email) == "" || params.PasswordHash == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	user := model.User{
		Email:    strings.ToLower(strings.TrimSpace(params.Email)),
		Name:     params.Name,
		Birthday: params.Birthday,
		Gender:   params.Gender,
		Bio:      params.Bio,
		Photos:   []string{},
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	email,
	name,
	password_hash,
	birthday,
	gender,
	bio
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at
`, user.Email, params.Name, params.PasswordHash, params.Birthday, string(params.Gender), params.Bio).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = params.PasswordHash
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, ErrUserNotFound
	}

	return r.scanUser(r.pool.QueryRow(ctx, `
SELECT id, email, name, password_hash, birthday, gender, bio, profile_photos, created_at, updated_at
FROM users
WHERE email = $1
`, strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, ErrUserNotFound
	}

	return r.scanUser(r.pool.QueryRow(ctx, `
SELECT id, email, name, password_hash, birthday, gender, bio, profile_photos, created_at, updated_at
FROM users
WHERE id = $1
`, userID))
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, name, bio string, photos []string) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, ErrUserNotFound
	}
	if photos == nil {
		photos = []string{}
	}

	return r.scanUser(r.pool.QueryRow(ctx, `
UPDATE users
SET name = $2, bio = $3, profile_photos = $4, updated_at = NOW()
WHERE id = $1
RETURNING id, email, name, password_hash, birthday, gender, bio, profile_photos, created_at, updated_at
`, userID, name, bio, photos))
}

func (r *UserRepo) AppendPhoto(ctx context.Context, userID int64, key string) ([]string, error) {
	if userID <= 0 || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("invalid photo payload")
	}
	if r.pool == nil {
		return nil, ErrUserNotFound
	}

	var photos []string
	err := r.pool.QueryRow(ctx, `
UPDATE users
SET profile_photos = array_append(profile_photos, $2), updated_at = NOW()
WHERE id = $1
RETURNING profile_photos
`, userID, key).Scan(&photos)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("append profile photo: %w", err)
	}

	return photos, nil
}

func (r *UserRepo) RemovePhoto(ctx context.Context, userID int64, key string) ([]string, error) {
	if userID <= 0 || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("invalid photo payload")
	}
	if r.pool == nil {
		return nil, ErrUserNotFound
	}

	var photos []string
	err := r.pool.QueryRow(ctx, `
UPDATE users
SET profile_photos = array_remove(profile_photos, $2), updated_at = NOW()
WHERE id = $1
RETURNING profile_photos
`, userID, key).Scan(&photos)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("remove profile photo: %w", err)
	}

	return photos, nil
}

func (r *UserRepo) scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var gender string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Birthday,
		&gender,
		&user.Bio,
		&user.Photos,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}

	user.Gender = enums.Gender(gender)
	return user, nil
}
