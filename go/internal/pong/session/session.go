// Package session holds one peer's view of a match: its own paddle, the mirrored
// opponent paddle, the ball, the score and the lifecycle. A Session is not safe for
// concurrent use; Runner owns it on a single goroutine.
package session

import (
	"math/rand/v2"

	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// Emitter receives every message the session reports to its peer
type Emitter interface {
	Emit(m events.Message)
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(m events.Message)

// Emit calls f(m)
func (f EmitterFunc) Emit(m events.Message) { f(m) }

// Session is the per-match state of one client
type Session struct {
	cfg     config.Game
	matchID string
	seat    events.Player

	local  Paddle // drawn on the right, driven by local input
	remote Paddle // drawn on the left, driven by relayed input
	ball   Ball

	score    Score
	phase    Phase
	winner   events.Player
	rejected bool
	parked   bool
	tick     uint64

	rng *rand.Rand
	out Emitter
}

// Option configures a Session
type Option func(*Session)

// WithSeat sets the local seat before the relay assigns one
func WithSeat(p events.Player) Option {
	return func(s *Session) {
		if p.Valid() {
			s.seat = p
		}
	}
}

// WithRand sets the random source used for serves
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// New creates an idle session with both paddles centered and the ball at rest
func New(matchID string, cfg config.Game, out Emitter, opts ...Option) *Session {
	if out == nil {
		out = EmitterFunc(func(events.Message) {})
	}

	s := &Session{
		cfg:     cfg,
		matchID: matchID,
		seat:    events.Player1,
		out:     out,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	paddleY := cfg.Height/2 - cfg.PaddleHeight/2
	s.local = Paddle{
		X:      cfg.Width - cfg.PaddleWidth - cfg.Padding,
		Y:      paddleY,
		Width:  cfg.PaddleWidth,
		Height: cfg.PaddleHeight,
	}
	s.remote = Paddle{
		X:      cfg.Padding,
		Y:      paddleY,
		Width:  cfg.PaddleWidth,
		Height: cfg.PaddleHeight,
	}
	s.ball = s.centeredBall()
	return s
}

// MatchID is the room this session plays in
func (s *Session) MatchID() string { return s.matchID }

// Seat is the absolute seat of the local player
func (s *Session) Seat() events.Player { return s.seat }

// Phase is the current lifecycle state
func (s *Session) Phase() Phase { return s.phase }

// Score returns both seat counters
func (s *Session) Score() Score { return s.score }

// Ball returns the ball in the local frame
func (s *Session) Ball() Ball { return s.ball }

// LocalPaddle returns the paddle on the right
func (s *Session) LocalPaddle() Paddle { return s.local }

// RemotePaddle returns the mirrored opponent paddle on the left
func (s *Session) RemotePaddle() Paddle { return s.remote }

// Config returns the tuning the session was created with
func (s *Session) Config() config.Game { return s.cfg }

// Ticks counts simulation steps since the session was created
func (s *Session) Ticks() uint64 { return s.tick }

// Parked reports whether the ball is held at the opponent's goal line until the
// opponent reports the outcome
func (s *Session) Parked() bool { return s.parked }

// Winner is the seat shown as match winner, or "" when no win indicator is up
func (s *Session) Winner() events.Player { return s.winner }

// Rejected reports whether the relay refused this client a seat
func (s *Session) Rejected() bool { return s.rejected }

func (s *Session) emit(m events.Message) {
	s.out.Emit(m)
}

func (s *Session) centeredBall() Ball {
	return Ball{
		X:    s.cfg.Width/2 - s.cfg.BallSize/2,
		Y:    s.cfg.Height/2 - s.cfg.BallSize/2,
		Size: s.cfg.BallSize,
	}
}
