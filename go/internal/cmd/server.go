package main

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/rugbytransfers/go/internal/connectjson"
	"github.com/mcdev12/rugbytransfers/go/internal/feed"
	"github.com/mcdev12/rugbytransfers/go/internal/offer"
	"github.com/mcdev12/rugbytransfers/go/internal/outbox"
	"github.com/mcdev12/rugbytransfers/go/internal/player"
	"github.com/mcdev12/rugbytransfers/go/internal/transfer"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(config *Config, services *Services, events *Events) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{connectjson.CorrelationHeader},
	})

	registerServices(mux, services)
	setupHealthCheck(mux, events.Health)
	feed.NewWebSocketHandler(events.Feed).RegisterRoutes(mux)

	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Server.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

// registerServices mounts the connect handlers. The JSON codec and correlation
// interceptor come with each handler; opts adds anything beyond that.
func registerServices(mux *http.ServeMux, services *Services, opts ...connect.HandlerOption) {
	// Register player service
	playerServicePath, playerServiceHandler := player.NewPlayerServiceHandler(services.Players, opts...)
	mux.Handle(playerServicePath, playerServiceHandler)

	// Register transfer service
	transferServicePath, transferServiceHandler := transfer.NewTransferServiceHandler(services.Transfers, opts...)
	mux.Handle(transferServicePath, transferServiceHandler)

	// Register offer service
	offerServicePath, offerServiceHandler := offer.NewOfferServiceHandler(services.Offers, opts...)
	mux.Handle(offerServicePath, offerServiceHandler)
}

func setupHealthCheck(mux *http.ServeMux, outboxHealth *outbox.HealthChecker) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
	mux.Handle("/health/outbox", outboxHealth)
}
