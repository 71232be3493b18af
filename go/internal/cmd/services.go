package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/dbconfig"
	"github.com/mcdev12/rugbytransfers/go/internal/feed"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/offer"
	"github.com/mcdev12/rugbytransfers/go/internal/outbox"
	"github.com/mcdev12/rugbytransfers/go/internal/player"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/mcdev12/rugbytransfers/go/internal/transfer"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Players   *player.Service
	Transfers *transfer.Service
	Offers    *offer.Service
}

func setupServices(engine *lifecycle.Engine) *Services {
	// Store → Engine → Service
	return &Services{
		Players:   player.NewService(engine),
		Transfers: transfer.NewService(engine),
		Offers:    offer.NewService(engine),
	}
}

// Events holds the outbox relay and feed wiring
type Events struct {
	Relay    *outbox.Relay
	Health   *outbox.HealthChecker
	Feed     *feed.ConnectionManager
	Consumer *feed.EventConsumer // nil without NATS

	closers []func() error
}

// setupEvents wires the relay to JetStream when a NATS URL is configured, and
// otherwise broadcasts straight to feed clients from the relay.
func setupEvents(ctx context.Context, config *Config, dbCfg dbconfig.Config, s store.Store, clock clockwork.Clock) (*Events, error) {
	ev := &Events{Feed: feed.NewConnectionManager(feed.DefaultConnectionConfig())}

	var publisher outbox.Publisher
	var natsConn *nats.Conn
	if config.NATS.URL != "" {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = config.NATS.URL
		js, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("create JetStream publisher: %w", err)
		}
		ev.closers = append(ev.closers, js.Close)
		publisher = js
		natsConn = js.Conn()

		consumerCfg := feed.DefaultConsumerConfig()
		consumerCfg.StreamName = jsCfg.StreamName
		consumerCfg.SubjectFilter = jsCfg.SubjectPrefix + ".>"
		ev.Consumer, err = feed.NewEventConsumer(ctx, ev.Feed, natsConn, consumerCfg)
		if err != nil {
			ev.Close()
			return nil, fmt.Errorf("create feed consumer: %w", err)
		}
	} else {
		log.Warn().Msg("NATS_URL not set, events are logged and pushed to the feed in process")
		publisher = feed.NewBroadcastPublisher(ev.Feed, outbox.LogPublisher{})
	}

	var notifier outbox.Notifier
	if dbCfg.Driver == dbconfig.DriverPostgres {
		pn, err := outbox.NewPGNotifier(dbCfg.DSN(), store.NotifyChannel)
		if err != nil {
			ev.Close()
			return nil, fmt.Errorf("create outbox listener: %w", err)
		}
		ev.closers = append(ev.closers, pn.Close)
		notifier = pn
	}

	ev.Relay = outbox.NewRelay(s, publisher, notifier, clock, config.relayConfig())
	ev.Health = outbox.NewHealthChecker(ev.Relay, s, natsConn, clock, config.Outbox.HealthThreshold)
	return ev, nil
}

// Start runs the relay, feed and consumer until ctx is cancelled
func (ev *Events) Start(ctx context.Context) {
	go ev.Feed.Start(ctx)
	go func() {
		if err := ev.Relay.Start(ctx); err != nil {
			log.Error().Err(err).Msg("outbox relay failed")
		}
	}()
	if ev.Consumer != nil {
		go func() {
			if err := ev.Consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("feed consumer failed")
			}
		}()
	}
}

func (ev *Events) Close() {
	for i := len(ev.closers) - 1; i >= 0; i-- {
		if err := ev.closers[i](); err != nil {
			log.Error().Err(err).Msg("failed to close event component")
		}
	}
}
