package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smarthub/internal/repository"
	"smarthub/internal/schedule"
	"smarthub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSettingsService(sunset schedule.SunsetSource) (*SettingsService, *store.MemoryCollection) {
	coll := store.NewMemoryCollection()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	resolver := schedule.NewResolver(sunset)
	svc := NewSettingsService(repository.NewPreferenceRepository(coll), resolver, zap.NewNop()).
		WithClock(fixedClock(now))
	return svc, coll
}

func TestUpdateSettings_ExplicitTime(t *testing.T) {
	svc, coll := newSettingsService(nil)

	pref, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		UserTemp:      ptr(25.0),
		UserLight:     "18:30:00",
		LightDuration: "2h",
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.ModeTime, pref.LightMode)
	assert.Equal(t, "18:30:00", pref.UserLight)
	assert.Equal(t, "20:30:00", pref.LightTimeOff.String())
	assert.Equal(t, 25.0, *pref.UserTemp)
	assert.Equal(t, 1, coll.Len())
}

func TestUpdateSettings_WrapsPastMidnight(t *testing.T) {
	svc, _ := newSettingsService(nil)

	pref, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		UserLight:     "23:00:00",
		LightDuration: "2h",
	})
	require.NoError(t, err)
	assert.Equal(t, "01:00:00", pref.LightTimeOff.String())
	assert.Nil(t, pref.UserTemp)
}

func TestUpdateSettings_SunsetMode(t *testing.T) {
	sunset := &fakeSunset{at: schedule.NewTimeOfDay(18, 14, 23)}
	svc, _ := newSettingsService(sunset)

	pref, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		UserTemp:      ptr(30.0),
		UserLight:     "Sunset",
		LightDuration: "1h30m",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sunset.calls)
	assert.Equal(t, schedule.ModeSunset, pref.LightMode)
	assert.Equal(t, "18:14:23", pref.UserLight)
	assert.Equal(t, "19:44:23", pref.LightTimeOff.String())
}

func TestUpdateSettings_UpstreamFailureWritesNothing(t *testing.T) {
	svc, coll := newSettingsService(&fakeSunset{err: ErrUpstream})

	_, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		UserTemp:      ptr(25.0),
		UserLight:     "sunset",
		LightDuration: "1h",
	})
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, 0, coll.Len())
}

func TestUpdateSettings_MalformedInput(t *testing.T) {
	sunset := &fakeSunset{at: schedule.NewTimeOfDay(18, 0, 0)}
	svc, coll := newSettingsService(sunset)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, UpdateSettingsRequest{UserLight: "sunset", LightDuration: "two hours"})
	assert.True(t, errors.Is(err, schedule.ErrInvalidDuration))
	assert.Equal(t, 0, sunset.calls)

	_, err = svc.UpdateSettings(ctx, UpdateSettingsRequest{UserLight: "evening", LightDuration: "1h"})
	assert.True(t, errors.Is(err, schedule.ErrInvalidTimeOfDay))

	_, err = svc.UpdateSettings(ctx, UpdateSettingsRequest{LightDuration: "soon"})
	assert.True(t, errors.Is(err, schedule.ErrInvalidDuration))

	assert.Equal(t, 0, coll.Len())
}

func TestUpdateSettings_IdempotentSingleton(t *testing.T) {
	svc, coll := newSettingsService(nil)
	ctx := context.Background()
	req := UpdateSettingsRequest{UserTemp: ptr(25.0), UserLight: "18:30:00", LightDuration: "2h"}

	_, err := svc.UpdateSettings(ctx, req)
	require.NoError(t, err)
	req.UserTemp = ptr(26.0)
	_, err = svc.UpdateSettings(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, coll.Len())
	got, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 26.0, *got.UserTemp)
}

func TestGetSettings_NotFoundBeforeFirstWrite(t *testing.T) {
	svc, _ := newSettingsService(nil)
	_, err := svc.GetSettings(context.Background())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
