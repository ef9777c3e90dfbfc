package session

import (
	"math"

	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// Renderer draws a frame. Implementations must not retain or mutate session state.
type Renderer interface {
	Draw(f Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(f Frame)

// Draw calls f(fr)
func (f RendererFunc) Draw(fr Frame) { f(fr) }

// Frame is a read-only snapshot of everything a renderer needs
type Frame struct {
	Tick   uint64
	Seat   events.Player
	Phase  Phase
	Width  float64
	Height float64
	Local  Paddle
	Remote Paddle
	Ball   Ball
	Score  Score
	Winner events.Player
}

// Frame snapshots the current state
func (s *Session) Frame() Frame {
	return Frame{
		Tick:   s.tick,
		Seat:   s.seat,
		Phase:  s.phase,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		Local:  s.local,
		Remote: s.remote,
		Ball:   s.ball,
		Score:  s.score,
		Winner: s.winner,
	}
}

// Tick draws the current state, then advances the simulation by one frame
func (s *Session) Tick(r Renderer) {
	if r != nil {
		r.Draw(s.Frame())
	}
	s.Step()
}

// Step advances paddles and, while in play, the ball by one frame. It never fails;
// out of range state is pulled back by the clamp and reflect rules.
func (s *Session) Step() {
	s.tick++

	s.local.step(s.cfg.PlayerSpeed, s.cfg.Height)
	s.remote.step(s.cfg.PlayerSpeed, s.cfg.Height)

	if s.phase != InPlay || s.parked {
		return
	}

	s.ball.X += s.ball.Dx
	s.ball.Y += s.ball.Dy

	// Walls reflect toward the field so a ball past the edge cannot flip twice.
	if s.ball.Y <= 0 {
		s.ball.Dy = math.Abs(s.ball.Dy)
	} else if s.ball.Y+s.ball.Size >= s.cfg.Height {
		s.ball.Dy = -math.Abs(s.ball.Dy)
	}

	// The opponent reports hits on its own paddle; ours is provisional until then.
	if s.remote.overlaps(s.ball) {
		s.ball.Dx = math.Abs(s.ball.Dx)
		s.ball.X = s.remote.X + s.remote.Width
	}
	if s.local.overlaps(s.ball) {
		s.ball.Dx = -math.Abs(s.ball.Dx)
		s.ball.X = s.local.X - s.ball.Size
		s.emit(events.Collision{MatchID: s.matchID, Ball: s.peerBall()})
	}

	switch crossed(s.ball, s.cfg.Width) {
	case localGoal:
		s.concede()
	case remoteGoal:
		s.park()
	}
}

// goal names the goal line a ball has reached
type goal int

const (
	noGoal goal = iota
	// localGoal is the right edge, defended by the local paddle
	localGoal
	// remoteGoal is the left edge, defended by the opponent
	remoteGoal
)

func crossed(b Ball, width float64) goal {
	switch {
	case b.X+b.Size >= width:
		return localGoal
	case b.X <= 0:
		return remoteGoal
	}
	return noGoal
}

// concede credits the opponent with a ball past the local paddle. Only the defending
// peer decides a goal, so every goal is reported exactly once; it then serves again
// or ends the match.
func (s *Session) concede() {
	p := s.seat.Opponent()
	s.emit(events.Point{MatchID: s.matchID, Player: p})
	if s.awardPoint(p) {
		s.emit(events.ResetGame{MatchID: s.matchID})
		return
	}
	s.serve()
}

// park holds the ball on the opponent's goal line. The opponent answers with either a
// collision or a point and a serve, and either one releases the ball.
func (s *Session) park() {
	s.ball.X = 0
	s.ball.Dx, s.ball.Dy = 0, 0
	s.parked = true
}

// peerBall is the ball as the opponent sees it. Each peer draws itself on the right, so
// x is mirrored across the field here and the receiver only negates dx.
func (s *Session) peerBall() events.BallState {
	b := s.ball.State()
	b.X = s.cfg.Width - s.ball.Size - s.ball.X
	return b
}
