package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
	"github.com/rs/zerolog/log"
)

// RoomCapacity is the number of seats in a match room
const RoomCapacity = 2

var (
	// ErrRoomFull is returned when a join finds both seats taken
	ErrRoomFull = errors.New("room is full")
	// ErrRelayBacklog is returned when the broadcast queue stays full past RelayTimeout
	ErrRelayBacklog = errors.New("relay backlog")
	// ErrStopped is returned once the manager has shut down
	ErrStopped = errors.New("connection manager stopped")
)

const roomFullReason = "Room is full"

// ConnectionManager manages WebSocket connections grouped into match rooms
type ConnectionManager struct {
	// Rooms organized by match ID
	rooms map[string]*Room
	mu    sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	// Connection configuration
	config ConnectionConfig

	// Message relaying
	broadcastCh chan BroadcastMessage
	stopped     chan struct{}

	observers *Dispatcher
	rejected  atomic.Uint64
}

// Room is one match: up to two seated connections
type Room struct {
	MatchID  string
	OpenedAt time.Time
	seats    [RoomCapacity]*Connection
}

func (r *Room) members() int {
	n := 0
	for _, c := range r.seats {
		if c != nil {
			n++
		}
	}
	return n
}

func (r *Room) seated(c *Connection) bool {
	for _, s := range r.seats {
		if s == c {
			return true
		}
	}
	return false
}

// seatPlayer names the seat at index i
func seatPlayer(i int) events.Player {
	if i == 0 {
		return events.Player1
	}
	return events.Player2
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	MatchID string
	Player  events.Player
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	BroadcastBuffer int
	// RelayTimeout bounds how long a reader waits for room in the broadcast queue
	RelayTimeout    time.Duration
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is one frame to relay to the sender's room
type BroadcastMessage struct {
	MatchID string
	From    *Connection
	Type    events.Type
	Data    []byte
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		BroadcastBuffer: 1000,
		RelayTimeout:    5 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, observers *Dispatcher) *ConnectionManager {
	// join queues the welcome while holding the registry lock, so Send must be buffered
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = 256
	}
	if config.BroadcastBuffer <= 0 {
		config.BroadcastBuffer = 1000
	}
	if config.RelayTimeout <= 0 {
		config.RelayTimeout = 5 * time.Second
	}
	return &ConnectionManager{
		rooms: make(map[string]*Room),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, config.BroadcastBuffer),
		stopped:     make(chan struct{}),
		observers:   observers,
	}
}

// Start relays queued messages until ctx is cancelled, then drops every connection
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			close(cm.stopped)
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and seats it in the room
// for matchID. A third joiner receives roomFull and is closed; in that case the
// returned error wraps ErrRoomFull.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, matchID string) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		MatchID:     matchID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	members, err := cm.join(connection)
	if err != nil {
		cm.reject(connection, members)
		return fmt.Errorf("join match %s: %w", matchID, err)
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("match_id", matchID).
		Str("player", string(connection.Player)).
		Int("members", members).
		Msg("WebSocket connection joined match")

	cm.notify(RoomJoined, connection, members)
	return nil
}

// join seats c in the first free slot of its room. The capacity check and the insert
// happen under one lock, so two racing joiners can never both take the last seat.
// On success the welcome frame is already queued on c.Send ahead of any relayed traffic.
func (cm *ConnectionManager) join(c *Connection) (int, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	room, ok := cm.rooms[c.MatchID]
	if !ok {
		room = &Room{MatchID: c.MatchID, OpenedAt: time.Now()}
	}

	seat := -1
	for i, s := range room.seats {
		if s == nil {
			seat = i
			break
		}
	}
	if seat < 0 {
		return room.members(), ErrRoomFull
	}

	room.seats[seat] = c
	c.Player = seatPlayer(seat)
	cm.rooms[c.MatchID] = room

	members := room.members()
	welcome, err := events.Encode(events.Welcome{MatchID: c.MatchID, Player: c.Player, Members: members})
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to encode welcome")
	} else {
		c.Send <- welcome
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("match_id", c.MatchID).
		Int("members", members).
		Msg("connection registered")

	return members, nil
}

// reject tells a connection the room is full and closes it. Nothing is relayed to the
// seated pair.
func (cm *ConnectionManager) reject(c *Connection, members int) {
	defer c.Conn.Close()
	cm.rejected.Add(1)

	log.Info().
		Str("connection_id", c.ID).
		Str("match_id", c.MatchID).
		Msg("match room full, rejecting connection")

	data, err := events.Encode(events.RoomFull{Reason: roomFullReason})
	if err == nil {
		c.Conn.SetWriteDeadline(time.Now().Add(cm.config.WriteTimeout))
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("connection_id", c.ID).Msg("failed to write roomFull")
		}
	}
	c.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, roomFullReason),
		time.Now().Add(cm.config.WriteTimeout),
	)

	cm.notify(RoomRejected, c, members)
}

// unregisterConnection frees the seat held by conn. It reports whether conn was still
// seated and the room size that remains.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) (bool, int) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	room, exists := cm.rooms[conn.MatchID]
	if !exists {
		return false, 0
	}
	for i, c := range room.seats {
		if c != conn {
			continue
		}
		room.seats[i] = nil
		close(conn.Send)

		members := room.members()
		if members == 0 {
			delete(cm.rooms, conn.MatchID)
		}

		log.Info().
			Str("connection_id", conn.ID).
			Str("match_id", conn.MatchID).
			Str("player", string(conn.Player)).
			Int("members", members).
			Msg("connection unregistered")
		return true, members
	}
	return false, room.members()
}

// leave frees the seat and reports the departure once, however many pumps call it
func (cm *ConnectionManager) leave(conn *Connection) {
	if removed, members := cm.unregisterConnection(conn); removed {
		cm.notify(RoomLeft, conn, members)
	}
}

// Relay queues data from a seated connection for delivery to the rest of its room.
// Frames are never dropped: a full queue blocks the sender's reader, and a queue that
// stays full for RelayTimeout fails with ErrRelayBacklog so the caller can disconnect.
func (cm *ConnectionManager) Relay(from *Connection, t events.Type, data []byte) error {
	message := BroadcastMessage{MatchID: from.MatchID, From: from, Type: t, Data: data}

	select {
	case cm.broadcastCh <- message:
		return nil
	case <-cm.stopped:
		return ErrStopped
	default:
	}

	timer := time.NewTimer(cm.config.RelayTimeout)
	defer timer.Stop()

	select {
	case cm.broadcastCh <- message:
		return nil
	case <-cm.stopped:
		return ErrStopped
	case <-timer.C:
		return fmt.Errorf("relay %s for match %s: %w", t, from.MatchID, ErrRelayBacklog)
	}
}

// handleBroadcast delivers a message to every other member of the sender's room. Sends
// happen under the read lock so no Send channel can be closed underneath them; slow
// receivers are collected and dropped after the lock is released.
func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	var slow []*Connection
	delivered := 0

	cm.mu.RLock()
	room, exists := cm.rooms[message.MatchID]
	if !exists || !room.seated(message.From) {
		cm.mu.RUnlock()
		return
	}
	for _, conn := range room.seats {
		if conn == nil || conn == message.From {
			continue
		}
		select {
		case conn.Send <- message.Data:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("match_id", conn.MatchID).
			Msg("connection send buffer full, closing connection")
		cm.leave(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", string(message.Type)).
		Str("match_id", message.MatchID).
		Int("connections", delivered).
		Msg("message relayed")
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, room := range cm.rooms {
		for _, c := range room.seats {
			if c != nil {
				all = append(all, c)
			}
		}
	}
	cm.mu.RUnlock()

	for _, c := range all {
		cm.leave(c)
	}
}

func (cm *ConnectionManager) notify(kind RoomEventKind, c *Connection, members int) {
	cm.observers.Notify(RoomEvent{
		ID:           uuid.New(),
		Kind:         kind,
		MatchID:      c.MatchID,
		ConnectionID: c.ID,
		Player:       c.Player,
		Members:      members,
		At:           time.Now().UTC(),
	})
}

// Stats is a snapshot of relay load
type Stats struct {
	TotalConnections int    `json:"total_connections"`
	ActiveMatches    int    `json:"active_matches"`
	OpenMatches      int    `json:"open_matches"`
	Rejected         uint64 `json:"rejected"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() Stats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := Stats{
		ActiveMatches: len(cm.rooms),
		Rejected:      cm.rejected.Load(),
	}
	for _, room := range cm.rooms {
		n := room.members()
		stats.TotalConnections += n
		if n < RoomCapacity {
			stats.OpenMatches++
		}
	}
	return stats
}

// MatchSummary describes a room that still has a free seat
type MatchSummary struct {
	MatchID  string    `json:"matchId"`
	Members  int       `json:"members"`
	OpenedAt time.Time `json:"openedAt"`
}

// OpenMatches lists joinable rooms, oldest first
func (cm *ConnectionManager) OpenMatches() []MatchSummary {
	cm.mu.RLock()
	open := make([]MatchSummary, 0, len(cm.rooms))
	for id, room := range cm.rooms {
		if n := room.members(); n < RoomCapacity {
			open = append(open, MatchSummary{MatchID: id, Members: n, OpenedAt: room.OpenedAt})
		}
	}
	cm.mu.RUnlock()

	sort.Slice(open, func(i, j int) bool {
		if !open[i].OpenedAt.Equal(open[j].OpenedAt) {
			return open[i].OpenedAt.Before(open[j].OpenedAt)
		}
		return open[i].MatchID < open[j].MatchID
	})
	return open
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.leave(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads frames from the client and relays them to its room
func (c *Connection) readPump() {
	defer func() {
		c.Manager.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if err := c.handleClientMessage(message); err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", c.ID).
				Str("match_id", c.MatchID).
				Msg("closing connection that cannot be relayed")
			break
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage forwards a frame verbatim. Types the relay does not know are
// forwarded too; only frames impersonating the relay are dropped.
func (c *Connection) handleClientMessage(message []byte) error {
	t, err := events.PeekType(message)
	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", c.ID).
			Msg("relaying frame without envelope")
	}
	if t.ServerOnly() {
		log.Warn().
			Str("connection_id", c.ID).
			Str("event_type", string(t)).
			Msg("dropping relay-only message sent by client")
		return nil
	}
	return c.Manager.Relay(c, t, message)
}
