package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/metrics"
	"smarthub/internal/repository"
	"smarthub/internal/schedule"
	"smarthub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var decisionNow = time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC)

func seedPreference(t *testing.T, prefs repository.PreferenceRepository, pref *domain.UserPreference) {
	t.Helper()
	_, err := prefs.Upsert(context.Background(), pref)
	require.NoError(t, err)
}

func newActuation(policy LightPolicy) (*ActuationService, repository.PreferenceRepository, *store.MemoryCollection) {
	samples := store.NewMemoryCollection()
	prefs := repository.NewPreferenceRepository(store.NewMemoryCollection())
	svc := NewActuationService(prefs, repository.NewSampleRepository(samples), policy, zap.NewNop()).
		WithMetrics(metrics.NewMetrics()).
		WithClock(fixedClock(decisionNow))
	return svc, prefs, samples
}

func TestDecide_TemperaturePolicy(t *testing.T) {
	pref := &domain.UserPreference{UserTemp: ptr(25.0), UserLight: "on"}

	d := Decide(pref, domain.SensorUpdate{Temperature: ptr(26.0)}, decisionNow, LightPolicyTemperature)
	assert.Equal(t, Decision{Fan: true, Light: true}, d)

	d = Decide(pref, domain.SensorUpdate{Temperature: ptr(24.0)}, decisionNow, LightPolicyTemperature)
	assert.Equal(t, Decision{}, d)

	d = Decide(pref, domain.SensorUpdate{Temperature: ptr(25.0)}, decisionNow, LightPolicyTemperature)
	assert.Equal(t, Decision{Fan: true, Light: true}, d)

	noLight := &domain.UserPreference{UserTemp: ptr(25.0)}
	d = Decide(noLight, domain.SensorUpdate{Temperature: ptr(30.0)}, decisionNow, LightPolicyTemperature)
	assert.Equal(t, Decision{Fan: true}, d)

	d = Decide(pref, domain.SensorUpdate{Presence: ptr(true)}, decisionNow, LightPolicyTemperature)
	assert.Equal(t, Decision{}, d)
}

func TestDecide_NonPositiveThresholdNeverStartsFan(t *testing.T) {
	pref := &domain.UserPreference{UserTemp: ptr(0.0)}
	d := Decide(pref, domain.SensorUpdate{Temperature: ptr(10.0)}, decisionNow, LightPolicyTemperature)
	assert.False(t, d.Fan)
}

func TestDecide_SchedulePolicy(t *testing.T) {
	pref := &domain.UserPreference{
		UserLight:    "18:30:00",
		LightTimeOff: schedule.NewTimeOfDay(20, 30, 0),
	}
	present := domain.SensorUpdate{Presence: ptr(true)}

	assert.True(t, Decide(pref, present, decisionNow, LightPolicySchedule).Light)
	assert.False(t, Decide(pref, domain.SensorUpdate{Presence: ptr(false)}, decisionNow, LightPolicySchedule).Light)
	assert.False(t, Decide(pref, present, decisionNow.Add(2*time.Hour), LightPolicySchedule).Light)

	overnight := &domain.UserPreference{
		UserLight:    "23:00:00",
		LightTimeOff: schedule.NewTimeOfDay(1, 0, 0),
	}
	at := time.Date(2024, 3, 11, 0, 30, 0, 0, time.UTC)
	assert.True(t, Decide(overnight, present, at, LightPolicySchedule).Light)
}

func TestActuation_PersistsDecision(t *testing.T) {
	svc, prefs, samples := newActuation(LightPolicyTemperature)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc.WithPublisher(pub)
	seedPreference(t, prefs, &domain.UserPreference{UserTemp: ptr(25.0), UserLight: "18:30:00"})

	got, err := svc.Update(context.Background(), domain.SensorUpdate{
		Temperature: ptr(26.0),
		Presence:    ptr(true),
		Datetime:    ptr("2024-03-10T19:00:00"),
	})
	require.NoError(t, err)
	assert.True(t, store.IsObjectID(got.ID))
	assert.True(t, got.Fan)
	assert.True(t, got.Light)
	assert.Equal(t, "2024-03-10T19:00:00", got.Datetime)
	assert.True(t, got.CurrentTime.Equal(decisionNow))
	assert.Equal(t, 1, samples.Len())
	require.Len(t, pub.published, 1)
	assert.Equal(t, got.ID, pub.published[0].ID)
}

func TestActuation_NoPreferenceWritesNothing(t *testing.T) {
	svc, _, samples := newActuation(LightPolicyTemperature)
	pub := &recordingPublisher{}
	svc.WithPublisher(pub)

	got, err := svc.Update(context.Background(), domain.SensorUpdate{Temperature: ptr(40.0)})
	require.NoError(t, err)
	assert.False(t, got.Fan)
	assert.False(t, got.Light)
	assert.Empty(t, got.ID)
	assert.True(t, got.CurrentTime.Equal(decisionNow))
	assert.Equal(t, 0, samples.Len())
	assert.Empty(t, pub.published)
}

func TestActuation_EmptyUpdateWritesNothing(t *testing.T) {
	svc, prefs, samples := newActuation(LightPolicyTemperature)
	seedPreference(t, prefs, &domain.UserPreference{UserTemp: ptr(25.0)})

	got, err := svc.Update(context.Background(), domain.SensorUpdate{})
	require.NoError(t, err)
	assert.Equal(t, domain.SensorSample{CurrentTime: decisionNow}, *got)
	assert.Equal(t, 0, samples.Len())
}

func TestActuation_PersistFailure(t *testing.T) {
	prefs := repository.NewPreferenceRepository(store.NewMemoryCollection())
	seedPreference(t, prefs, &domain.UserPreference{UserTemp: ptr(25.0)})
	boom := errors.New("disk full")
	svc := NewActuationService(prefs, failingSamples{err: boom}, "", zap.NewNop())

	_, err := svc.Update(context.Background(), domain.SensorUpdate{Temperature: ptr(26.0)})
	assert.True(t, errors.Is(err, boom))
}
