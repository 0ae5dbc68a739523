package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/metrics"
)

// ActuatorState 下发给设备的执行器状态
type ActuatorState struct {
	SampleID    string    `json:"sample_id"`
	Fan         bool      `json:"fan"`
	Light       bool      `json:"light"`
	CurrentTime time.Time `json:"current_time"`
}

// ActuatorPublisher publishes each persisted decision as a retained message,
// so a reconnecting device picks up the current state.
type ActuatorPublisher struct {
	pub     Publisher
	topic   string
	qos     byte
	metrics *metrics.Metrics
}

func NewActuatorPublisher(pub Publisher, topic string, qos byte, m *metrics.Metrics) *ActuatorPublisher {
	return &ActuatorPublisher{pub: pub, topic: topic, qos: qos, metrics: m}
}

func (p *ActuatorPublisher) PublishState(ctx context.Context, sample *domain.SensorSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(ActuatorState{
		SampleID:    sample.ID,
		Fan:         sample.Fan,
		Light:       sample.Light,
		CurrentTime: sample.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("failed to encode actuator state: %w", err)
	}
	err = p.pub.Publish(p.topic, p.qos, true, payload)
	p.metrics.ObserveMQTT("out", err)
	return err
}
