package relay

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the match relay: it seats connections in two-member rooms and forwards
// every frame to the other member of the sender's room.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	dispatcher        *Dispatcher
}

// Config holds configuration for the relay service
type Config struct {
	ConnectionConfig ConnectionConfig
	EventBuffer      int // pending room events before new ones are dropped
}

// DefaultConfig returns default configuration for the relay
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		EventBuffer:      256,
	}
}

// NewService creates a relay that reports membership changes to observers
func NewService(config Config, observers ...Observer) *Service {
	dispatcher := NewDispatcher(config.EventBuffer, observers...)
	connectionManager := NewConnectionManager(config.ConnectionConfig, dispatcher)

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager),
		dispatcher:        dispatcher,
	}
}

// Start runs the relay until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting match relay")

	go s.dispatcher.Run(ctx)
	s.connectionManager.Start(ctx)

	log.Info().Msg("match relay stopped")
	return nil
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("match relay routes registered")
}

// Stats returns statistics about the relay
func (s *Service) Stats() Stats {
	return s.connectionManager.GetConnectionStats()
}

// OpenMatches lists rooms with a free seat
func (s *Service) OpenMatches() []MatchSummary {
	return s.connectionManager.OpenMatches()
}
