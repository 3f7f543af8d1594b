package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrUnsupportedType    = errors.New("unsupported content type")
	ErrPhotoTooLarge      = errors.New("photo exceeds size limit")
	ErrStorageUnavailable = errors.New("media storage is unavailable")
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// PhotoStore maintains the ordered list of photo keys on the profile.
type PhotoStore interface {
	AppendPhoto(ctx context.Context, userID int64, key string) ([]string, error)
	RemovePhoto(ctx context.Context, userID int64, key string) ([]string, error)
}

type Storage interface {
	EnsureBucket(ctx context.Context) error
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	MaxUploadBytes int64
	SignedURLTTL   time.Duration
}

type UploadResult struct {
	Key    string
	URL    string
	Photos []string
}

type Service struct {
	photos  PhotoStore
	storage Storage
	cfg     Config
}

func NewService(photos PhotoStore, storage Storage, cfg Config) *Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = signedURLTTL
	}

	return &Service{
		photos:  photos,
		storage: storage,
		cfg:     cfg,
	}
}

func (s *Service) UploadPhoto(ctx context.Context, userID int64, contentType string, size int64, body io.Reader) (UploadResult, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return UploadResult{}, ErrValidation
	}
	if s.photos == nil || s.storage == nil {
		return UploadResult{}, fmt.Errorf("media dependencies are not configured")
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return UploadResult{}, ErrUnsupportedType
	}
	if size > s.cfg.MaxUploadBytes {
		return UploadResult{}, ErrPhotoTooLarge
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return UploadResult{}, err
	}

	key := fmt.Sprintf("users/%d/photos/%s", userID, uuid.NewString())
	if err := s.storage.PutPhoto(ctx, key, body, size, contentType); err != nil {
		return UploadResult{}, err
	}

	photos, err := s.photos.AppendPhoto(ctx, userID, key)
	if err != nil {
		// roll the object back so storage does not leak orphans
		_ = s.storage.Delete(ctx, key)
		return UploadResult{}, fmt.Errorf("attach photo to profile: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, key, s.cfg.SignedURLTTL)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{Key: key, URL: url, Photos: photos}, nil
}

func (s *Service) RemovePhoto(ctx context.Context, userID int64, key string) ([]string, error) {
	if userID <= 0 || key == "" {
		return nil, ErrValidation
	}
	if s.photos == nil || s.storage == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	photos, err := s.photos.RemovePhoto(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("detach photo from profile: %w", err)
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return nil, err
	}

	return photos, nil
}
