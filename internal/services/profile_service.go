package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/pkg/content"
)

// ProfileRepository defines the profile store
type ProfileRepository interface {
	Get(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

type ProfileService struct {
	repo   ProfileRepository
	logger *slog.Logger
}

func NewProfileService(repo ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// Get returns the profile, or nil when none has been saved yet.
func (s *ProfileService) Get(ctx context.Context) (*models.Profile, error) {
	p, err := s.repo.Get(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to get profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return p, nil
}

// Save replaces the profile. The avatar reference is normalised like covers.
func (s *ProfileService) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	p.Avatar = content.NormalizeImageURL(p.Avatar)

	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		s.logger.Error("failed to save profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.logger.Info("profile updated", slog.Int64("profile_id", saved.ID))
	return saved, nil
}
