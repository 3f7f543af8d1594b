package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const (
	maxNameLen = 255
	maxBioLen  = 2000
	maxPhotos  = 9
)

type ProfileStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, bio string, photos []string) (model.User, error)
}

// PhotoSigner turns stored object keys into short-lived GET URLs.
type PhotoSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Profile struct {
	ID        int64
	Name      string
	Age       int
	Gender    enums.Gender
	Bio       string
	Photos    []string
	PhotoURLs []string
}

type Service struct {
	store  ProfileStore
	signer PhotoSigner
	urlTTL time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store ProfileStore, signer PhotoSigner, urlTTL time.Duration, logger *zap.Logger) *Service {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		signer: signer,
		urlTTL: urlTTL,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the public view of a profile. Email and credentials never
// leave this layer.
func (s *Service) Get(ctx context.Context, userID int64) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("profile dependencies are not configured")
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}

	return s.toProfile(ctx, user), nil
}

func (s *Service) Update(ctx context.Context, userID int64, name, bio string, photos []string) (Profile, error) {
	if userID <= 0 {
		return Profile{}, ErrValidation
	}
	if s.store == nil {
		return Profile{}, fmt.Errorf("profile dependencies are not configured")
	}

	name = strings.TrimSpace(name)
	bio = strings.TrimSpace(bio)
	if name == "" || len(name) > maxNameLen {
		return Profile{}, ErrValidation
	}
	if len(bio) > maxBioLen {
		return Profile{}, ErrValidation
	}
	if len(photos) > maxPhotos {
		return Profile{}, ErrValidation
	}
	for _, key := range photos {
		if strings.TrimSpace(key) == "" {
			return Profile{}, ErrValidation
		}
	}

	user, err := s.store.UpdateProfile(ctx, userID, name, bio, photos)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}

	return s.toProfile(ctx, user), nil
}

func (s *Service) toProfile(ctx context.Context, user model.User) Profile {
	profile := Profile{
		ID:     user.ID,
		Name:   user.Name,
		Age:    ageAt(user.Birthday, s.now().UTC()),
		Gender: user.Gender,
		Bio:    user.Bio,
		Photos: user.Photos,
	}

	if s.signer == nil {
		return profile
	}

	urls := make([]string, 0, len(user.Photos))
	for _, key := range user.Photos {
		url, err := s.signer.PresignGet(ctx, key, s.urlTTL)
		if err != nil {
			// a broken signer should not hide the profile itself
			s.logger.Warn("presign profile photo failed", zap.String("key", key), zap.Error(err))
			continue
		}
		urls = append(urls, url)
	}
	profile.PhotoURLs = urls

	return profile
}

func ageAt(birthday, now time.Time) int {
	if birthday.IsZero() {
		return 0
	}
	age := now.Year() - birthday.Year()
	anniversary := birthday.AddDate(age, 0, 0)
	if anniversary.After(now) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
