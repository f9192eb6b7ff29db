package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"campuswatch/internal/config"
	"campuswatch/internal/engine"
)

// KafkaAlertSink forwards raised alerts to a Kafka topic. It implements the
// engine's Subscriber contract but never does broker I/O inside the engine's
// unit of work: delivery only enqueues, a background goroutine writes, and
// when the queue is full the alert is dropped with a warning.
type KafkaAlertSink struct {
	writer *kafka.Writer
	queue  chan engine.Alert
	logger zerolog.Logger
}

// NewKafkaAlertSink constructs the sink; call Start before subscribing it.
func NewKafkaAlertSink(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaAlertSink {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 128
	}
	return &KafkaAlertSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		queue:  make(chan engine.Alert, buffer),
		logger: logger.With().Str("component", "kafka_sink").Logger(),
	}
}

// Start drains the queue until ctx is cancelled.
func (s *KafkaAlertSink) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				if err := s.writer.Close(); err != nil {
					s.logger.Warn().Err(err).Msg("closing kafka writer")
				}
				return
			case alert := <-s.queue:
				s.forward(ctx, alert)
			}
		}
	}()
}

func (s *KafkaAlertSink) forward(ctx context.Context, alert engine.Alert) {
	body, err := json.Marshal(alert)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal alert")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(alert.EntityID),
		Value: body,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("entity", alert.EntityID).Msg("forward alert to kafka")
	}
}

// OnState is a no-op; the sink only cares about alerts.
func (s *KafkaAlertSink) OnState(engine.Snapshot) {}

// OnReading is a no-op.
func (s *KafkaAlertSink) OnReading(engine.ReadingEvent) {}

// OnAlert enqueues the alert for forwarding, dropping when the queue is full.
func (s *KafkaAlertSink) OnAlert(a engine.Alert) {
	select {
	case s.queue <- a:
	default:
		s.logger.Warn().Str("entity", a.EntityID).Msg("kafka queue full, dropping alert")
	}
}

var _ engine.Subscriber = (*KafkaAlertSink)(nil)
