package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/dbconfig"
	"github.com/mcdev12/rugbytransfers/go/internal/lifecycle"
	"github.com/mcdev12/rugbytransfers/go/internal/player"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "info", config.Log.Level)
	assert.False(t, config.Transfers.StrictOfferAcceptance)
	assert.Equal(t, 5*time.Second, config.Outbox.PollInterval)
	assert.Equal(t, 100, config.Outbox.BatchSize)
	assert.Empty(t, config.NATS.URL)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
log:
  level: debug
transfers:
  strict_offer_acceptance: true
outbox:
  poll_interval: 2s
  batch_size: 10
  retry_delay: 50ms
nats:
  url: nats://bus:4222
`)

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, "debug", config.Log.Level)
	assert.True(t, config.Transfers.StrictOfferAcceptance)
	assert.Equal(t, "nats://bus:4222", config.NATS.URL)

	relay := config.relayConfig()
	assert.Equal(t, 2*time.Second, relay.PollInterval)
	assert.Equal(t, 10, relay.BatchSize)
	assert.Equal(t, 50*time.Millisecond, relay.RetryDelay)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STRICT_OFFER_ACCEPTANCE", "true")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", config.Server.Port)
	assert.Equal(t, "warn", config.Log.Level)
	assert.True(t, config.Transfers.StrictOfferAcceptance)
	assert.Equal(t, 25, config.Outbox.BatchSize)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "outbox:\n  batch_size: 0\n"))
	assert.Error(t, err)

	config := defaultConfig()
	config.Log.Level = "loud"
	assert.Error(t, setupLogging(config))
}

func TestServerRoutes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := defaultConfig()
	dbCfg := dbconfig.Config{Driver: dbconfig.DriverMemory}
	s := store.NewMemoryStore()
	clock := clockwork.NewRealClock()

	events, err := setupEvents(ctx, config, dbCfg, s, clock)
	require.NoError(t, err)
	defer events.Close()
	events.Start(ctx)

	server := setupServer(config, setupServices(lifecycle.NewEngine(s, clock, config.Transfers)), events)
	assert.Equal(t, ":8080", server.Addr)

	srv := httptest.NewServer(server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	client := player.NewPlayerServiceClient(srv.Client(), srv.URL)
	created, err := client.CreatePlayerProfile(ctx, connect.NewRequest(&player.CreatePlayerProfileRequest{
		Name:          "A",
		Position:      "Prop",
		CurrentTeam:   "X",
		MarketValue:   100,
		ContractUntil: 1000,
		Age:           25,
		Nationality:   "NZ",
	}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), created.Msg.Profile.ID)

	// the relay drains the outbox on its first pass and then reports healthy
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/health/outbox")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Get(srv.URL + "/ws/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterServicesRunsInterceptorsOnce(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	counting := connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			calls.Add(1)
			return next(ctx, req)
		}
	})

	mux := http.NewServeMux()
	engine := lifecycle.NewEngine(store.NewMemoryStore(), clockwork.NewRealClock(), lifecycle.Config{})
	registerServices(mux, setupServices(engine), connect.WithInterceptors(counting))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := player.NewPlayerServiceClient(srv.Client(), srv.URL)
	_, err := client.ListPlayerProfiles(ctx, connect.NewRequest(&player.ListPlayerProfilesRequest{}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	assert.EqualValues(t, 1, calls.Load())
}
