package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rugbytransfers/go/internal/dbconfig"
	"github.com/mcdev12/rugbytransfers/go/internal/outbox"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
)

func main() {
	// load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := dbconfig.NewConfigFromEnv()
	if cfg.Driver == dbconfig.DriverMemory {
		log.Fatal().Msg("standalone relay needs a shared store, set STORE_DRIVER to postgres or sqlite")
	}
	s, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer s.Close()

	var publisher outbox.Publisher = outbox.LogPublisher{}
	var checker *outbox.HealthChecker
	jsCfg := outbox.DefaultJetStreamConfig()
	url := os.Getenv("NATS_URL")
	var js *outbox.JetStreamPublisher
	if url != "" {
		jsCfg.URL = url
		js, err = outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create JetStream publisher")
		}
		defer func() {
			if err := js.Close(); err != nil {
				log.Error().Err(err).Msg("close publisher")
			}
		}()
		publisher = js
	} else {
		log.Warn().Msg("NATS_URL not set, events will be logged only")
	}

	relayCfg := outbox.DefaultConfig()
	if iv := os.Getenv("FALLBACK_INTERVAL"); iv != "" {
		if d, err := time.ParseDuration(iv); err == nil {
			relayCfg.PollInterval = d
		}
	}

	var notifier outbox.Notifier
	if cfg.Driver == dbconfig.DriverPostgres {
		pn, err := outbox.NewPGNotifier(cfg.DSN(), store.NotifyChannel)
		if err != nil {
			log.Fatal().Err(err).Msg("create outbox listener")
		}
		defer pn.Close()
		notifier = pn
	}

	relay := outbox.NewRelay(s, publisher, notifier, nil, relayCfg)
	if js != nil {
		checker = outbox.NewHealthChecker(relay, s, js.Conn(), nil, time.Minute)
	} else {
		checker = outbox.NewHealthChecker(relay, s, nil, nil, time.Minute)
	}

	healthAddr := ":" + getEnv("HEALTH_PORT", "8081")
	mux := http.NewServeMux()
	mux.Handle("/health", checker)
	healthSrv := &http.Server{Addr: healthAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", healthAddr).Msg("outbox health endpoint listening")
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server failed")
		}
	}()

	//GRACEFUL SHUTDOWN

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msg("starting outbox relay")
		errCh <- relay.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("relay exited unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown")
	}
	log.Info().Msg("graceful shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
