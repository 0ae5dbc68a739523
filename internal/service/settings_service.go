package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/repository"
	"smarthub/internal/schedule"

	"go.uber.org/zap"
)

// SettingsService 用户偏好（温度阈值 + 灯光计划）
type SettingsService struct {
	prefs    repository.PreferenceRepository
	resolver *schedule.Resolver
	now      func() time.Time
	logger   *zap.Logger
}

func NewSettingsService(prefs repository.PreferenceRepository, resolver *schedule.Resolver, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		prefs:    prefs,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the clock used for updated_at.
func (s *SettingsService) WithClock(now func() time.Time) *SettingsService {
	s.now = now
	return s
}

// UpdateSettingsRequest PUT /settings 请求体
type UpdateSettingsRequest struct {
	UserTemp      *float64 `json:"user_temp"`
	UserLight     string   `json:"user_light"`     // "sunset" 或 "HH:MM:SS"
	LightDuration string   `json:"light_duration"` // 如 "4h30m"
}

// UpdateSettings resolves the light schedule and upserts the singleton
// preference. An empty user_light clears the schedule; the duration is still
// validated.
func (s *SettingsService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*domain.UserPreference, error) {
	if req.UserTemp != nil && (math.IsNaN(*req.UserTemp) || math.IsInf(*req.UserTemp, 0)) {
		return nil, fmt.Errorf("%w: user_temp must be a finite number", ErrInvalidInput)
	}

	pref := &domain.UserPreference{
		UserTemp:  req.UserTemp,
		UpdatedAt: s.now().UTC(),
	}

	if strings.TrimSpace(req.UserLight) == "" {
		if _, err := schedule.ParseDuration(req.LightDuration); err != nil {
			return nil, err
		}
	} else {
		sched, err := s.resolver.Resolve(ctx, req.UserLight, req.LightDuration)
		if err != nil {
			s.logger.Warn("Failed to resolve light schedule",
				zap.String("user_light", req.UserLight),
				zap.String("light_duration", req.LightDuration),
				zap.Error(err),
			)
			return nil, err
		}
		pref.LightMode = sched.Mode
		pref.UserLight = sched.Base.String()
		pref.LightTimeOff = sched.LightOff
	}

	stored, err := s.prefs.Upsert(ctx, pref)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("Settings updated",
		zap.Any("user_temp", stored.UserTemp),
		zap.String("light_mode", stored.LightMode),
		zap.String("user_light", stored.UserLight),
		zap.String("light_time_off", stored.LightTimeOff.String()),
	)
	return stored, nil
}

// GetSettings returns store.ErrNotFound until the first PUT.
func (s *SettingsService) GetSettings(ctx context.Context) (*domain.UserPreference, error) {
	return s.prefs.Get(ctx)
}
