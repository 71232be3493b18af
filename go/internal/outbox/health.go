package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// pendingAlertThreshold is the backlog size reported as a problem
const pendingAlertThreshold = 1000

type HealthStatus struct {
	Healthy         bool      `json:"healthy"`
	LastEventTime   time.Time `json:"last_event_time"`
	EventsProcessed uint64    `json:"events_processed"`
	PendingEvents   int       `json:"pending_events"`
	NATSConnected   bool      `json:"nats_connected"`
	RelayActive     bool      `json:"relay_active"`
	Errors          []string  `json:"errors"`
}

type HealthChecker struct {
	relay     *Relay
	store     store.Store
	natsConn  *nats.Conn
	clock     clockwork.Clock
	threshold time.Duration // How long pending events may wait before unhealthy
}

// NewHealthChecker reports on the relay. natsConn may be nil when events are only logged.
func NewHealthChecker(relay *Relay, s store.Store, natsConn *nats.Conn, clock clockwork.Clock, threshold time.Duration) *HealthChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthChecker{
		relay:     relay,
		store:     s,
		natsConn:  natsConn,
		clock:     clock,
		threshold: threshold,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.EventsProcessed, status.LastEventTime = h.relay.Stats()

	if h.natsConn != nil {
		status.NATSConnected = h.natsConn.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	status.RelayActive = h.relay.Running()
	if !status.RelayActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not active")
	}

	pending, err := h.store.FetchUnsentEvents(ctx, pendingAlertThreshold+1)
	if err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
	} else {
		status.PendingEvents = len(pending)
		if len(pending) > pendingAlertThreshold {
			status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: more than %d", pendingAlertThreshold))
		}
		if len(pending) > 0 {
			oldest := pending[0].CreatedAt
			if wait := h.clock.Since(oldest); wait > h.threshold {
				status.Healthy = false
				status.Errors = append(status.Errors, fmt.Sprintf("oldest pending event waiting for %s", wait))
			}
		}
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to write outbox health response")
	}
}
