package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/mcdev12/gaffer/go/internal/sim"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := loadAppConfig()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := connectStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	newsCfg := notify.DefaultJetStreamConfig()
	newsCfg.URL = cfg.NATSURL
	notifier, err := notify.NewJetStreamPublisher(newsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup news publisher")
	}
	defer notifier.Close()

	engine, err := buildSimEngine(store, cfg, notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build sim engine")
	}

	consumer, err := sim.NewTriggerConsumer(ctx, cfg.NATSURL, engine)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup trigger consumer")
	}
	defer consumer.Close()

	go func() {
		log.Info().Str("nats_url", cfg.NATSURL).Msg("starting trigger consumer")
		if err := consumer.Run(ctx); err != nil {
			log.Error().Err(err).Msg("trigger consumer failed")
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()
}
