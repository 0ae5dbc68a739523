package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/repository"
	"smarthub/internal/store"

	"go.uber.org/zap"
)

// GET /graph 的 size 参数
const (
	DefaultGraphSize = 10
	MaxGraphSize     = 1000
)

// ParseGraphSize parses ?size=; empty means DefaultGraphSize and values are
// clamped to [1, MaxGraphSize].
func ParseGraphSize(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultGraphSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: size must be an integer, got %q", ErrInvalidInput, raw)
	}
	return clampSize(n), nil
}

func clampSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxGraphSize {
		return MaxGraphSize
	}
	return n
}

// ReadingsService 采样查询（图表/当前环境）
type ReadingsService struct {
	samples repository.SampleRepository
	now     func() time.Time
	logger  *zap.Logger
}

func NewReadingsService(samples repository.SampleRepository, logger *zap.Logger) *ReadingsService {
	return &ReadingsService{samples: samples, now: time.Now, logger: logger}
}

func (s *ReadingsService) WithClock(now func() time.Time) *ReadingsService {
	s.now = now
	return s
}

// Graph returns the most recent size samples, oldest first.
func (s *ReadingsService) Graph(ctx context.Context, size int) ([]*domain.SensorSample, error) {
	samples, err := s.samples.Recent(ctx, clampSize(size))
	if err != nil {
		return nil, fmt.Errorf("failed to load graph samples: %w", err)
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

// Output returns the latest environment snapshot, or a zero snapshot stamped
// with the current time when nothing has been recorded yet.
func (s *ReadingsService) Output(ctx context.Context) (domain.EnvironmentSnapshot, error) {
	latest, err := s.samples.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.EnvironmentSnapshot{Datetime: s.now().Format(time.RFC3339)}, nil
	}
	if err != nil {
		return domain.EnvironmentSnapshot{}, fmt.Errorf("failed to load latest sample: %w", err)
	}
	return latest.Snapshot(), nil
}
