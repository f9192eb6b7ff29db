package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"campuswatch/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Server    ServerConfig    `mapstructure:"server"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the HTTP/WebSocket surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	ClientBuffer    int           `mapstructure:"client_buffer"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EngineConfig carries the analytics tunables. Defaults are preserved from
// the tuned deployment rather than re-derived.
type EngineConfig struct {
	RollingWindow   int             `mapstructure:"rolling_window"`
	StoreMaxLen     int             `mapstructure:"store_max_len"`
	AlertLogMaxLen  int             `mapstructure:"alert_log_max_len"`
	RecentAlertsCap int             `mapstructure:"recent_alerts_cap"`
	ZScoreThreshold float64         `mapstructure:"zscore_threshold"`
	SpikeMultiplier float64         `mapstructure:"spike_multiplier"`
	LowUtilization  float64         `mapstructure:"low_utilization"`
	HighUtilization float64         `mapstructure:"high_utilization"`
	DefaultCapacity uint            `mapstructure:"default_capacity"`
	Capacities      map[string]uint `mapstructure:"capacities"`
}

// SchedulerConfig governs the synthetic producer cadence.
type SchedulerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// SimulatorConfig describes the virtual campus.
type SimulatorConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	Seed      int64            `mapstructure:"seed"`
	Buildings []BuildingConfig `mapstructure:"buildings"`
	Rooms     []RoomConfig     `mapstructure:"rooms"`
}

// BuildingConfig is one simulated energy producer.
type BuildingConfig struct {
	ID       string  `mapstructure:"id"`
	BaseLoad float64 `mapstructure:"base_load"`
}

// RoomConfig is one simulated occupancy producer.
type RoomConfig struct {
	ID       string `mapstructure:"id"`
	Capacity uint   `mapstructure:"capacity"`
}

// MQTTConfig 描述可选的 MQTT 摄入桥参数。
type MQTTConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BrokerURL      string        `mapstructure:"broker_url"`
	ClientID       string        `mapstructure:"client_id"`
	EnergyTopic    string        `mapstructure:"energy_topic"`
	OccupancyTopic string        `mapstructure:"occupancy_topic"`
	QoS            byte          `mapstructure:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// KafkaConfig describes the optional alert sink.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Buffer  int      `mapstructure:"buffer"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAMPUSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyCampusDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "campuswatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.ping_interval", "30s")
	v.SetDefault("server.client_buffer", 256)
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("engine.rolling_window", 12)
	v.SetDefault("engine.store_max_len", 500)
	v.SetDefault("engine.alert_log_max_len", 500)
	v.SetDefault("engine.recent_alerts_cap", 200)
	v.SetDefault("engine.zscore_threshold", 3.0)
	v.SetDefault("engine.spike_multiplier", 1.5)
	v.SetDefault("engine.low_utilization", 0.15)
	v.SetDefault("engine.high_utilization", 0.9)
	v.SetDefault("engine.default_capacity", 100)

	v.SetDefault("scheduler.interval", "5s")
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("simulator.enabled", true)
	v.SetDefault("simulator.seed", int64(0))

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.client_id", "campuswatch")
	v.SetDefault("mqtt.energy_topic", "campus/energy/#")
	v.SetDefault("mqtt.occupancy_topic", "campus/occupancy/#")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", "10s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "campus-alerts")
	v.SetDefault("kafka.buffer", 128)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// applyCampusDefaults fills in the default virtual campus and its capacity
// table when the config provides none.
func (c *Config) applyCampusDefaults() {
	if len(c.Simulator.Buildings) == 0 {
		c.Simulator.Buildings = []BuildingConfig{
			{ID: "EnggBlock", BaseLoad: 80},
			{ID: "Library", BaseLoad: 30},
			{ID: "Admin", BaseLoad: 15},
			{ID: "CSBlock", BaseLoad: 60},
		}
	}
	if len(c.Simulator.Rooms) == 0 {
		c.Simulator.Rooms = []RoomConfig{
			{ID: "R101", Capacity: 40},
			{ID: "R102", Capacity: 40},
			{ID: "LabA", Capacity: 30},
			{ID: "Hall1", Capacity: 200},
		}
	}
	if len(c.Engine.Capacities) == 0 {
		c.Engine.Capacities = make(map[string]uint, len(c.Simulator.Rooms))
		for _, room := range c.Simulator.Rooms {
			c.Engine.Capacities[room.ID] = room.Capacity
		}
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Engine.RollingWindow <= 0 {
		return fmt.Errorf("engine.rolling_window must be greater than zero")
	}
	if c.Engine.StoreMaxLen <= 0 {
		return fmt.Errorf("engine.store_max_len must be greater than zero")
	}
	if c.Engine.AlertLogMaxLen <= 0 {
		return fmt.Errorf("engine.alert_log_max_len must be greater than zero")
	}
	if c.Engine.RecentAlertsCap <= 0 {
		return fmt.Errorf("engine.recent_alerts_cap must be greater than zero")
	}
	if c.Engine.LowUtilization >= c.Engine.HighUtilization {
		return fmt.Errorf("engine.low_utilization must stay below engine.high_utilization")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.MQTT.Enabled && c.MQTT.BrokerURL == "" {
		return fmt.Errorf("mqtt.broker_url 必须配置")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers 必须配置")
	}
	return nil
}
