package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/repository"
	"smarthub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseGraphSize(t *testing.T) {
	cases := map[string]int{
		"":     DefaultGraphSize,
		"5":    5,
		" 7 ":  7,
		"0":    1,
		"-3":   1,
		"5000": MaxGraphSize,
		"1000": 1000,
	}
	for raw, want := range cases {
		got, err := ParseGraphSize(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseGraphSize("ten")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGraph_ChronologicalTail(t *testing.T) {
	ctx := context.Background()
	samples := repository.NewSampleRepository(store.NewMemoryCollection())
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := samples.Insert(ctx, &domain.SensorSample{
			Temperature: ptr(float64(20 + i)),
			CurrentTime: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	svc := NewReadingsService(samples, zap.NewNop())

	got, err := svc.Graph(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 22.0, *got[0].Temperature)
	assert.Equal(t, 24.0, *got[2].Temperature)
	assert.True(t, got[0].CurrentTime.Before(got[2].CurrentTime))

	got, err = svc.Graph(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestOutput(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	samples := repository.NewSampleRepository(store.NewMemoryCollection())
	svc := NewReadingsService(samples, zap.NewNop()).WithClock(fixedClock(now))

	snap, err := svc.Output(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EnvironmentSnapshot{Datetime: "2024-03-10T12:00:00Z"}, snap)

	_, err = samples.Insert(ctx, &domain.SensorSample{
		Temperature: ptr(27.5),
		Presence:    ptr(true),
		Datetime:    "2024-03-10 12:05",
		CurrentTime: now,
	})
	require.NoError(t, err)

	snap, err = svc.Output(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EnvironmentSnapshot{Temperature: 27.5, Presence: true, Datetime: "2024-03-10 12:05"}, snap)
}

func TestOutput_StoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewReadingsService(failingSamples{err: boom}, zap.NewNop())
	_, err := svc.Output(context.Background())
	assert.True(t, errors.Is(err, boom))
}
