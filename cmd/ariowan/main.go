package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/api"
	"github.com/rifatsekerariot/ariowan/internal/config"
	"github.com/rifatsekerariot/ariowan/internal/ingest"
	"github.com/rifatsekerariot/ariowan/internal/integration"
	"github.com/rifatsekerariot/ariowan/internal/ratelimit"
	"github.com/rifatsekerariot/ariowan/internal/storage"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/ariowan.yml", "Configuration file path")
	flag.Parse()

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Connect to database
	store, err := storage.NewPostgresStore(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	log.Info().Msg("Connected to database")

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database schema")
	}

	// Optional: connect to NATS for downstream event fan-out
	var publisher ingest.UplinkPublisher
	if cfg.NATS.URL != "" {
		log.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS...")

		opts := []nats.Option{
			nats.Name(cfg.Server.Name),
			nats.ReconnectWait(cfg.NATS.ReconnectInterval.Std()),
			nats.MaxReconnects(cfg.NATS.MaxReconnects),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				log.Warn().Err(err).Msg("Disconnected from NATS")
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info().Msg("Reconnected to NATS")
			}),
		}
		if cfg.NATS.Username != "" {
			opts = append(opts, nats.UserInfo(cfg.NATS.Username, cfg.NATS.Password))
		}

		nc, err := nats.Connect(cfg.NATS.URL, opts...)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, continuing without event fan-out")
		} else {
			defer nc.Close()
			log.Info().Msg("Connected to NATS")
			publisher = integration.NewPublisher(nc)
		}
	} else {
		log.Info().Msg("NATS not configured, running in standalone mode")
	}

	// Rate limiter with periodic sweep
	limiter := ratelimit.NewLimiter(&cfg.RateLimit)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		limiter.Start(ctx, cfg.RateLimit.SweepInterval.Std())
	}()

	// Event processor and REST server
	processor := ingest.NewProcessor(store, publisher)
	apiServer := api.NewRESTServer(cfg, store, limiter, processor)

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := apiServer.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("REST API server failed")
		}
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	cancel()

	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	wg.Wait()

	log.Info().Msg("Telemetry collector stopped")
}
