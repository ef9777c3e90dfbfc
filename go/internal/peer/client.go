// Package peer is a headless match client: it dials the relay, hosts a session on a
// frame loop and exchanges match messages with the other seat.
package peer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
	"github.com/mcdev12/duelpong/go/internal/pong/session"
	"github.com/rs/zerolog/log"
)

var (
	// ErrRoomFull is the Run result when the relay refused a seat
	ErrRoomFull = errors.New("match room is full")
	// ErrDisconnected is the Run result when the relay connection dropped
	ErrDisconnected = errors.New("relay connection lost")
)

const (
	writeTimeout   = 10 * time.Second
	sendBufferSize = 256
)

// Config describes which match to join and how to play it
type Config struct {
	RelayURL  string // ws:// or wss:// base of the relay
	MatchID   string
	Autostart bool // start the match as soon as both seats are taken
	Game      config.Game
}

// Client is one peer connected to the relay
type Client struct {
	cfg     Config
	conn    *websocket.Conn
	session *session.Session
	runner  *session.Runner
	send    chan []byte
	cancel  context.CancelCauseFunc
}

// MatchURL is the relay websocket endpoint for a match
func MatchURL(relayURL, matchID string) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	u.Path = "/ws/match"
	u.RawQuery = url.Values{"match_id": {matchID}}.Encode()
	return u.String(), nil
}

// Dial connects to the relay. Runner options add a renderer, a tick hook or a clock;
// the message hook is reserved for the client itself.
func Dial(ctx context.Context, cfg Config, opts ...session.RunnerOption) (*Client, error) {
	target, err := MatchURL(cfg.RelayURL, cfg.MatchID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	c := &Client{
		cfg:  cfg,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	c.session = session.New(cfg.MatchID, cfg.Game, session.EmitterFunc(c.emit))
	c.runner = session.NewRunner(c.session, append(opts[:len(opts):len(opts)], session.WithMessageHook(c.onMessage))...)

	log.Info().Str("match_id", cfg.MatchID).Str("relay", target).Msg("connected to relay")
	return c, nil
}

// Do runs fn against the session on the frame loop
func (c *Client) Do(ctx context.Context, fn func(s *session.Session)) error {
	return c.runner.Do(ctx, fn)
}

// Run plays until ctx is cancelled, the relay refuses a seat or the connection drops.
// Cancellation by the caller returns nil.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	c.cancel = cancel

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(ctx)
	}()
	go c.readPump(ctx)

	c.runner.Run(ctx)
	<-writerDone
	c.conn.Close()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// emit runs on the frame loop; a full buffer drops the message rather than stalling a frame
func (c *Client) emit(m events.Message) {
	data, err := events.Encode(m)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(m.Type())).Msg("failed to encode message")
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("event_type", string(m.Type())).Msg("send buffer full, dropping message")
	}
}

func (c *Client) onMessage(s *session.Session, m events.Message) {
	w, ok := m.(events.Welcome)
	if !ok {
		return
	}
	log.Info().
		Str("match_id", w.MatchID).
		Str("player", string(w.Player)).
		Int("members", w.Members).
		Msg("seated")
	if c.cfg.Autostart && w.Members >= 2 {
		s.Start()
	}
}

func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.cancel(fmt.Errorf("%w: %v", ErrDisconnected, err))
				return
			}
		}
	}
}

func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.cancel(fmt.Errorf("%w: %v", ErrDisconnected, err))
			return
		}

		m, err := events.Decode(data)
		if err != nil {
			log.Debug().Err(err).Msg("dropping undecodable message")
			continue
		}
		if err := c.runner.Deliver(ctx, m); err != nil {
			return
		}
		if _, full := m.(events.RoomFull); full {
			c.cancel(ErrRoomFull)
			return
		}
	}
}
