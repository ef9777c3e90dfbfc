package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/rs/zerolog/log"
)

var matchIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidMatchID reports whether id can name a room. Ids double as NATS subject tokens,
// so dots, wildcards and whitespace are refused.
func ValidMatchID(id string) bool {
	return matchIDPattern.MatchString(id)
}

// WebSocketHandler handles WebSocket upgrade requests for match connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleMatchConnection joins the caller to the room named by the match_id query parameter
func (h *WebSocketHandler) HandleMatchConnection(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}
	if !ValidMatchID(matchID) {
		http.Error(w, "invalid match_id format", http.StatusBadRequest)
		return
	}

	// The upgrader has already answered the request on failure
	if err := h.connectionManager.UpgradeConnection(w, r, matchID); err != nil {
		if errors.Is(err, ErrRoomFull) {
			return
		}
		log.Error().
			Err(err).
			Str("match_id", matchID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/match", h.HandleMatchConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
