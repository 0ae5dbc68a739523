package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/metrics"

	"go.uber.org/zap"
)

// SampleUpdater runs one sensor update through the decision engine.
type SampleUpdater interface {
	Update(ctx context.Context, update domain.SensorUpdate) (*domain.SensorSample, error)
}

// SensorConsumer 订阅设备上报主题，按 POST /update 同样的流程处理
type SensorConsumer struct {
	sub     Subscriber
	updater SampleUpdater
	topic   string
	qos     byte
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewSensorConsumer(sub Subscriber, updater SampleUpdater, topic string, qos byte, logger *zap.Logger) *SensorConsumer {
	return &SensorConsumer{
		sub:     sub,
		updater: updater,
		topic:   topic,
		qos:     qos,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

func (c *SensorConsumer) WithMetrics(m *metrics.Metrics) *SensorConsumer {
	c.metrics = m
	return c
}

// Start subscribes and blocks until ctx is cancelled.
func (c *SensorConsumer) Start(ctx context.Context) error {
	if err := c.sub.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}
	c.logger.Info("MQTT sensor consumer started", zap.String("topic", c.topic))

	<-ctx.Done()
	return nil
}

func (c *SensorConsumer) Stop() error {
	if err := c.sub.Unsubscribe(c.topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.String("topic", c.topic), zap.Error(err))
		return err
	}
	c.logger.Info("MQTT sensor consumer stopped")
	return nil
}

func (c *SensorConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	var update domain.SensorUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		c.metrics.ObserveMQTT("in", err)
		return fmt.Errorf("failed to unmarshal sensor update: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	sample, err := c.updater.Update(ctx, update)
	c.metrics.ObserveMQTT("in", err)
	if err != nil {
		return fmt.Errorf("failed to process sensor update: %w", err)
	}

	c.logger.Debug("Processed MQTT sensor update",
		zap.String("sample_id", sample.ID),
		zap.Bool("fan", sample.Fan),
		zap.Bool("light", sample.Light),
	)
	return nil
}
