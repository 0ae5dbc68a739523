package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/metrics"
	"smarthub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeBroker 记录发布/订阅调用的内存 broker
type fakeBroker struct {
	mu       sync.Mutex
	handlers map[string]MessageHandler
	messages []published
	err      error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: map[string]MessageHandler{}}
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, published{topic, qos, retained, payload})
	return nil
}

func (b *fakeBroker) Subscribe(topic string, qos byte, handler MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBroker) Unsubscribe(topics ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		delete(b.handlers, t)
	}
	return nil
}

func (b *fakeBroker) handler(topic string) MessageHandler {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlers[topic]
}

type fakeUpdater struct {
	got []domain.SensorUpdate
	err error
}

func (f *fakeUpdater) Update(ctx context.Context, update domain.SensorUpdate) (*domain.SensorSample, error) {
	f.got = append(f.got, update)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SensorSample{ID: "65ee0000000000000000abcd", Fan: true}, nil
}

var (
	_ service.ActuatorPublisher = (*ActuatorPublisher)(nil)
	_ SampleUpdater             = (*service.ActuationService)(nil)
)

func TestActuatorPublisher(t *testing.T) {
	broker := newFakeBroker()
	pub := NewActuatorPublisher(broker, "smarthub/actuators/state", 1, metrics.NewMetrics())
	at := time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC)

	err := pub.PublishState(context.Background(), &domain.SensorSample{ID: "abc", Fan: true, Light: false, CurrentTime: at})
	require.NoError(t, err)
	require.Len(t, broker.messages, 1)

	msg := broker.messages[0]
	assert.Equal(t, "smarthub/actuators/state", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var state ActuatorState
	require.NoError(t, json.Unmarshal(msg.payload, &state))
	assert.Equal(t, ActuatorState{SampleID: "abc", Fan: true, CurrentTime: at}, state)

	broker.err = errors.New("not connected")
	assert.Error(t, pub.PublishState(context.Background(), &domain.SensorSample{}))
}

func TestSensorConsumer(t *testing.T) {
	broker := newFakeBroker()
	updater := &fakeUpdater{}
	consumer := NewSensorConsumer(broker, updater, "smarthub/sensors/update", 1, zap.NewNop()).
		WithMetrics(metrics.NewMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	require.Eventually(t, func() bool {
		return broker.handler("smarthub/sensors/update") != nil
	}, time.Second, 10*time.Millisecond)
	handle := broker.handler("smarthub/sensors/update")

	require.NoError(t, handle("smarthub/sensors/update", []byte(`{"temperature":26.5,"presence":true}`)))
	require.Len(t, updater.got, 1)
	assert.Equal(t, 26.5, *updater.got[0].Temperature)
	assert.True(t, *updater.got[0].Presence)
	assert.Nil(t, updater.got[0].Datetime)

	assert.Error(t, handle("smarthub/sensors/update", []byte(`{"temperature":`)))

	updater.err = errors.New("store down")
	assert.Error(t, handle("smarthub/sensors/update", []byte(`{"temperature":20}`)))

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, consumer.Stop())
	assert.Nil(t, broker.handler("smarthub/sensors/update"))
}
