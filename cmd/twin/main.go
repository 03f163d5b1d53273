// v6
// cmd/twin/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"urbantech/twin/internal/analytics"
	"urbantech/twin/internal/config"
	"urbantech/twin/internal/control"
	"urbantech/twin/internal/export"
	"urbantech/twin/internal/httpapi"
	"urbantech/twin/internal/logging"
	"urbantech/twin/internal/loop"
	"urbantech/twin/internal/observability"
	"urbantech/twin/internal/sim"
	"urbantech/twin/internal/ws"
)

func main() {
	root := &cobra.Command{
		Use:   "twin",
		Short: "Urban infrastructure digital twin",
		Long: `twin simulates a city district's infrastructure fleet (power grids,
water systems, traffic, air quality, solar, metering), runs a feedback
control engine over it and serves the live state over HTTP, WebSocket,
Kafka and MQTT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
		SilenceUsage: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadEnvAndFiles()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lg, logFile := logging.Init(cfg.LogLevel)
	defer logFile.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	lg.Info("starting urban twin", "bind", cfg.HTTPBind, "tick_ms", cfg.TickIntervalMs, "seed", seed)

	stepSec := float64(cfg.TickIntervalMs) / 1000.0

	protocols, err := control.LoadProtocols(cfg.ProtocolsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			lg.Warn("protocols file missing, using defaults", "path", cfg.ProtocolsPath)
			protocols = control.DefaultProtocols()
		} else {
			return fmt.Errorf("load protocols: %w", err)
		}
	}

	metrics := observability.NewMetrics()

	simulator := sim.New(lg, rand.New(rand.NewSource(seed)), sim.Settings{
		NoiseLevel:         cfg.NoiseLevel,
		FailureProbability: cfg.FailureProbability,
		RushHourEnabled:    cfg.RushHourEnabled,
		WeatherSimulation:  cfg.WeatherSimulation,
	}, stepSec)
	engine := control.NewEngine(lg, stepSec, protocols)
	aggregator := analytics.New(lg, rand.New(rand.NewSource(seed+1)), stepSec)

	driver := loop.NewDriver(lg, simulator, engine, aggregator, metrics,
		time.Duration(cfg.TickIntervalMs)*time.Millisecond)

	hub := ws.NewHub(lg, metrics)
	driver.AddSink(hub)

	var kafkaExp *export.KafkaExporter
	if len(cfg.KafkaBrokers) > 0 {
		kafkaExp = export.NewKafkaExporter(lg, cfg.KafkaBrokers, cfg.KafkaTopic)
		driver.AddSink(kafkaExp)
		defer kafkaExp.Close()
	}
	if cfg.MQTTBroker != "" {
		mqttPub, merr := export.NewMQTTAlertPublisher(lg, cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if merr != nil {
			lg.Warn("mqtt unavailable, alerts will not be published", "error", merr)
		} else {
			driver.AddSink(mqttPub)
			defer mqttPub.Close()
		}
	}

	h := &httpapi.Handlers{Log: lg, Sim: simulator, Engine: engine, Analytics: aggregator}
	httpSrv := &http.Server{
		Addr:    cfg.HTTPBind,
		Handler: httpapi.NewRouter(h, hub.Handle, metrics),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := driver.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		lg.Info("http server listening", "addr", cfg.HTTPBind)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		err := cfg.Watch(gctx, lg, func(c *config.AppConfig) {
			simulator.ApplySettings(sim.Settings{
				NoiseLevel:         c.NoiseLevel,
				FailureProbability: c.FailureProbability,
				RushHourEnabled:    c.RushHourEnabled,
				WeatherSimulation:  c.WeatherSimulation,
			})
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		// A broken watcher degrades live reload but should not take the
		// process down.
		if err != nil {
			lg.Warn("config watcher stopped", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		lg.Error("shutdown with error", "error", err)
		return err
	}
	lg.Info("shutdown complete", slog.Uint64("ticks", driver.Ticks()))
	return nil
}
