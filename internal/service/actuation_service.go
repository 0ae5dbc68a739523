package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/metrics"
	"smarthub/internal/repository"
	"smarthub/internal/schedule"
	"smarthub/internal/store"

	"go.uber.org/zap"
)

// LightPolicy 灯光判定策略
type LightPolicy string

const (
	// LightPolicyTemperature: light follows the fan threshold while a light schedule is set.
	LightPolicyTemperature LightPolicy = "temperature"
	// LightPolicySchedule: light is on while someone is present inside [user_light, light_time_off).
	LightPolicySchedule LightPolicy = "schedule"
)

// Decision 执行器状态
type Decision struct {
	Fan   bool `json:"fan"`
	Light bool `json:"light"`
}

// Decide computes the actuator state for one update. pref must not be nil.
func Decide(pref *domain.UserPreference, update domain.SensorUpdate, now time.Time, policy LightPolicy) Decision {
	thresholdMet := pref.HasThreshold() && update.Temperature != nil && *update.Temperature >= *pref.UserTemp

	d := Decision{
		Fan: thresholdMet && *pref.UserTemp > 0,
	}

	if pref.UserLight == "" {
		return d
	}
	switch policy {
	case LightPolicySchedule:
		if update.Presence == nil || !*update.Presence {
			return d
		}
		base, err := schedule.ParseTimeOfDay(pref.UserLight)
		if err != nil {
			return d
		}
		d.Light = schedule.FromTime(now).Within(base, pref.LightTimeOff)
	default:
		d.Light = thresholdMet
	}
	return d
}

// ActuatorPublisher pushes a persisted decision to the devices.
type ActuatorPublisher interface {
	PublishState(ctx context.Context, sample *domain.SensorSample) error
}

// ActuationService 决策引擎：读取偏好、计算风扇/灯光、持久化采样
type ActuationService struct {
	prefs     repository.PreferenceRepository
	samples   repository.SampleRepository
	policy    LightPolicy
	publisher ActuatorPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    *zap.Logger
}

func NewActuationService(prefs repository.PreferenceRepository, samples repository.SampleRepository, policy LightPolicy, logger *zap.Logger) *ActuationService {
	if policy == "" {
		policy = LightPolicyTemperature
	}
	return &ActuationService{
		prefs:   prefs,
		samples: samples,
		policy:  policy,
		now:     time.Now,
		logger:  logger,
	}
}

// WithPublisher enables pushing decisions (MQTT bridge).
func (s *ActuationService) WithPublisher(p ActuatorPublisher) *ActuationService {
	s.publisher = p
	return s
}

func (s *ActuationService) WithMetrics(m *metrics.Metrics) *ActuationService {
	s.metrics = m
	return s
}

func (s *ActuationService) WithClock(now func() time.Time) *ActuationService {
	s.now = now
	return s
}

// Update runs the decision for one sensor update. Without a stored preference
// or with an empty update it returns an all-off state and persists nothing.
func (s *ActuationService) Update(ctx context.Context, update domain.SensorUpdate) (*domain.SensorSample, error) {
	now := s.now()

	pref, err := s.prefs.Get(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.metrics.ObserveDecision(metrics.OutcomeFailed, false, false)
		return nil, fmt.Errorf("failed to load preference: %w", err)
	}
	if pref == nil || update.IsEmpty() {
		s.metrics.ObserveDecision(metrics.OutcomeSkipped, false, false)
		s.logger.Debug("Skipping actuation decision",
			zap.Bool("has_preference", pref != nil),
			zap.Bool("empty_update", update.IsEmpty()),
		)
		return &domain.SensorSample{CurrentTime: now}, nil
	}

	d := Decide(pref, update, now, s.policy)

	sample := &domain.SensorSample{
		Temperature: update.Temperature,
		Presence:    update.Presence,
		CurrentTime: now,
		Fan:         d.Fan,
		Light:       d.Light,
	}
	if update.Datetime != nil {
		sample.Datetime = *update.Datetime
	}

	stored, err := s.samples.Insert(ctx, sample)
	if err != nil {
		s.metrics.ObserveDecision(metrics.OutcomeFailed, d.Fan, d.Light)
		return nil, fmt.Errorf("failed to persist sample: %w", err)
	}
	s.metrics.ObserveDecision(metrics.OutcomePersisted, d.Fan, d.Light)

	s.logger.Info("Actuation decided",
		zap.String("sample_id", stored.ID),
		zap.Bool("fan", stored.Fan),
		zap.Bool("light", stored.Light),
		zap.String("policy", string(s.policy)),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishState(ctx, stored); err != nil {
			s.logger.Warn("Failed to publish actuator state", zap.String("sample_id", stored.ID), zap.Error(err))
		}
	}
	return stored, nil
}
