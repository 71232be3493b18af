package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rugbytransfers/go/internal/dbconfig"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := setupLogging(config); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup store
	dbCfg := dbconfig.NewConfigFromEnv()
	s, err := store.Open(ctx, dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	clock := clockwork.NewRealClock()
	engine := lifecycle.NewEngine(s, clock, config.Transfers)
	services := setupServices(engine)

	events, err := setupEvents(ctx, config, dbCfg, s, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup events")
	}
	defer events.Close()
	events.Start(ctx)

	server := setupServer(config, services, events)

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("store", dbCfg.Driver).
			Bool("strict_offer_acceptance", config.Transfers.StrictOfferAcceptance).
			Msg("starting rugby transfers server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("graceful shutdown complete")
}
