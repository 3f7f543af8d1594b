package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulsedate/backend/internal/domain/enums"
	"github.com/pulsedate/backend/internal/domain/model"
	pgrepo "github.com/pulsedate/backend/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrViewerNotFound = errors.New("viewer profile not found")
)

type CandidateStore interface {
	ListCandidates(ctx context.Context, viewerID int64, gender string, limit int) ([]pgrepo.CandidateRecord, error)
}

type ViewerStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type Candidate struct {
	UserID int64
	Name   string
	Gender enums.Gender
	Age    int
	Bio    string
	Photos []string
}

type Config struct {
	FeedLimit int
}

type Service struct {
	candidates CandidateStore
	viewers    ViewerStore
	cfg        Config
}

func NewService(candidates CandidateStore, viewers ViewerStore, cfg Config) *Service {
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = 50
	}

	return &Service{
		candidates: candidates,
		viewers:    viewers,
		cfg:        cfg,
	}
}

// Discover returns a randomized batch of profiles the viewer has not
// decided about. Without an explicit filter the preference defaults to
// the opposite of the viewer's own gender.
func (s *Service) Discover(ctx context.Context, viewerID int64, genderFilter string) ([]Candidate, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if s.candidates == nil || s.viewers == nil {
		return nil, fmt.Errorf("discovery dependencies are not configured")
	}

	viewer, err := s.viewers.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return nil, ErrViewerNotFound
		}
		return nil, fmt.Errorf("load viewer: %w", err)
	}

	gender := viewer.Gender.Opposite()
	if strings.TrimSpace(genderFilter) != "" {
		parsed, ok := enums.ParseGender(genderFilter)
		if !ok {
			return nil, ErrValidation
		}
		gender = parsed
	}

	records, err := s.candidates.ListCandidates(ctx, viewerID, string(gender), s.cfg.FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	candidates := make([]Candidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, Candidate{
			UserID: record.UserID,
			Name:   record.Name,
			Gender: enums.Gender(record.Gender),
			Age:    record.Age,
			Bio:    record.Bio,
			Photos: record.Photos,
		})
	}

	return candidates, nil
}
