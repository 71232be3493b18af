package feed

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebSocketHandler serves the transfer feed
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm}
}

// HandleTransfers upgrades to a websocket. The optional team query parameter
// limits the feed to events naming that team.
func (h *WebSocketHandler) HandleTransfers(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")

	// the upgrader has already written an error response on failure
	if err := h.connectionManager.UpgradeConnection(w, r, team); err != nil {
		log.Error().
			Err(err).
			Str("team", team).
			Msg("failed to upgrade websocket connection")
	}
}

func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to write feed stats")
	}
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/transfers", h.HandleTransfers)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
