package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"campuswatch/internal/config"
	"campuswatch/internal/engine"
)

// mqttSample is the payload accepted on the ingest topics. A missing
// timestamp means "now".
type mqttSample struct {
	Timestamp *time.Time `json:"ts,omitempty"`
	Value     float64    `json:"value"`
	Count     uint       `json:"count"`
}

// MQTTIngest bridges broker-published sensor readings into the engine's
// ingest boundary. Entity ids come from the last topic segment, e.g.
// campus/energy/Library.
type MQTTIngest struct {
	client mqtt.Client
	cfg    config.MQTTConfig
	engine *engine.Engine
	logger zerolog.Logger
}

// NewMQTTIngest connects to the broker and subscribes both ingest topics.
func NewMQTTIngest(cfg config.MQTTConfig, eng *engine.Engine, logger zerolog.Logger) (*MQTTIngest, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	b := &MQTTIngest{
		client: mqtt.NewClient(opts),
		cfg:    cfg,
		engine: eng,
		logger: logger.With().Str("component", "mqtt_ingest").Logger(),
	}

	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}

	if err := b.subscribe(cfg.EnergyTopic, b.handleEnergy); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.subscribe(cfg.OccupancyTopic, b.handleOccupancy); err != nil {
		b.Close()
		return nil, err
	}

	b.logger.Info().Str("broker", cfg.BrokerURL).Msg("mqtt ingest bridge connected")
	return b, nil
}

func (b *MQTTIngest) subscribe(topic string, handler mqtt.MessageHandler) error {
	if token := b.client.Subscribe(topic, b.cfg.QoS, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

func (b *MQTTIngest) handleEnergy(_ mqtt.Client, msg mqtt.Message) {
	sample, entity, err := b.decode(msg)
	if err != nil {
		b.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("dropping malformed energy payload")
		return
	}
	if err := b.engine.IngestEnergy(entity, sampleTime(sample), sample.Value); err != nil {
		b.logger.Warn().Err(err).Str("building", entity).Msg("energy reading rejected")
	}
}

func (b *MQTTIngest) handleOccupancy(_ mqtt.Client, msg mqtt.Message) {
	sample, entity, err := b.decode(msg)
	if err != nil {
		b.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("dropping malformed occupancy payload")
		return
	}
	b.engine.IngestOccupancy(entity, sampleTime(sample), sample.Count)
}

func (b *MQTTIngest) decode(msg mqtt.Message) (mqttSample, string, error) {
	var sample mqttSample
	if err := json.Unmarshal(msg.Payload(), &sample); err != nil {
		return mqttSample{}, "", fmt.Errorf("decode payload: %w", err)
	}

	segments := strings.Split(msg.Topic(), "/")
	entity := segments[len(segments)-1]
	if entity == "" {
		return mqttSample{}, "", fmt.Errorf("topic %q carries no entity id", msg.Topic())
	}
	return sample, entity, nil
}

func sampleTime(s mqttSample) time.Time {
	if s.Timestamp != nil {
		return s.Timestamp.UTC()
	}
	return time.Now().UTC()
}

// Close disconnects from the broker.
func (b *MQTTIngest) Close() {
	b.client.Disconnect(250)
}
