package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"campuswatch/internal/bridge"
	"campuswatch/internal/config"
	"campuswatch/internal/engine"
	"campuswatch/internal/scheduler"
	"campuswatch/internal/server"
	"campuswatch/internal/simulator"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newEngine() *engine.Engine {
	ec := a.Config.Engine
	return engine.New(engine.Config{
		RollingWindow:   ec.RollingWindow,
		StoreMaxLen:     ec.StoreMaxLen,
		AlertLogMaxLen:  ec.AlertLogMaxLen,
		RecentAlertsCap: ec.RecentAlertsCap,
		ZScoreThreshold: ec.ZScoreThreshold,
		SpikeMultiplier: ec.SpikeMultiplier,
		LowUtilization:  ec.LowUtilization,
		HighUtilization: ec.HighUtilization,
		DefaultCapacity: ec.DefaultCapacity,
		Capacities:      ec.Capacities,
	}, a.Logger)
}

// Run executes the long-running analytics service: engine, HTTP/WebSocket
// surface, synthetic producer, and the optional broker bridges.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng := a.newEngine()

	if a.Config.MQTT.Enabled {
		ingest, err := bridge.NewMQTTIngest(a.Config.MQTT, eng, a.Logger)
		if err != nil {
			return err
		}
		defer ingest.Close()
	}

	if a.Config.Kafka.Enabled {
		sink := bridge.NewKafkaAlertSink(a.Config.Kafka, a.Logger)
		sink.Start(ctx)
		eng.Subscribe("kafka-alert-sink", sink)
	}

	errCh := make(chan error, 2)

	srv := server.New(eng, a.Config.Server, a.Logger)
	go func() { errCh <- srv.Run(ctx) }()

	if a.Config.Simulator.Enabled {
		sim := simulator.New(eng, a.Config.Simulator, a.Logger)
		sched := scheduler.New(scheduler.Options{
			Interval:     a.Config.Scheduler.Interval,
			StartupDelay: a.Config.Scheduler.StartupDelay,
		}, a.Logger)
		go func() { errCh <- sched.Run(ctx, sim.Tick) }()
	} else {
		a.Logger.Warn().Msg("simulator disabled; only external producers feed the engine")
	}

	a.Logger.Info().Msg("campuswatch running")

	err := <-errCh
	cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("campuswatch stopped")
	return nil
}

// SimulateOptions configure the offline simulation run.
type SimulateOptions struct {
	Steps    int
	Interval time.Duration
}

// ExportOptions hold parameters for exporting a simulated series.
type ExportOptions struct {
	Building string
	Steps    int
	Interval time.Duration
	CSVPath  string
	PNGPath  string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	BaseURL string
	Limit   int
}
