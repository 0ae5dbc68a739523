package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/repository"
	"smarthub/internal/store"

	"go.uber.org/zap"
)

// ProfileService 用户档案：只保留最新的一条
type ProfileService struct {
	profiles repository.ProfileRepository
	now      func() time.Time
	logger   *zap.Logger
}

func NewProfileService(profiles repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now, logger: logger}
}

func (s *ProfileService) WithClock(now func() time.Time) *ProfileService {
	s.now = now
	return s
}

// CreateProfileRequest POST /profile 请求体
type CreateProfileRequest struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Color    *string `json:"color"`
}

// GetProfile returns the newest profile and deletes the older ones. A nil
// profile with a nil error means none exists.
func (s *ProfileService) GetProfile(ctx context.Context) (*domain.Profile, error) {
	latest, err := s.profiles.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	pruned, err := s.profiles.PruneExcept(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to prune profiles: %w", err)
	}
	if pruned > 0 {
		s.logger.Info("Pruned stale profiles", zap.Int64("count", pruned), zap.String("kept", latest.ID))
	}
	return latest, nil
}

func (s *ProfileService) CreateProfile(ctx context.Context, req CreateProfileRequest) (*domain.Profile, error) {
	stamp := s.now().Format(domain.ProfileTimeLayout)
	created, err := s.profiles.Create(ctx, &domain.Profile{
		Username:    req.Username,
		Role:        req.Role,
		Color:       req.Color,
		LastUpdated: &stamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}
