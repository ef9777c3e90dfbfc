package peer

import (
	"github.com/mcdev12/duelpong/go/internal/pong/session"
)

// Autopilot steers the local paddle toward the ball. It drives the same PressKey and
// ReleaseKey calls a player would, so the opponent sees ordinary keyDown/keyUp traffic.
type Autopilot struct {
	// Deadband is how far the ball center may sit from the paddle center before moving
	Deadband float64
	held     string
}

// NewAutopilot creates an autopilot with a deadband of a quarter paddle
func NewAutopilot(cfg Config) *Autopilot {
	return &Autopilot{Deadband: cfg.Game.PaddleHeight / 4}
}

// Tick is a session.Runner tick hook
func (a *Autopilot) Tick(s *session.Session) {
	a.steer(s, a.want(s))
}

func (a *Autopilot) want(s *session.Session) string {
	p := s.LocalPaddle()
	center := p.Y + p.Height/2

	target := s.Config().Height / 2
	if b := s.Ball(); s.Phase() == session.InPlay && b.Dx > 0 {
		target = b.Y + b.Size/2
	}

	switch {
	case target < center-a.Deadband:
		return session.KeyUp
	case target > center+a.Deadband:
		return session.KeyDown
	}
	return ""
}

func (a *Autopilot) steer(s *session.Session, key string) {
	if key == a.held {
		return
	}
	if a.held != "" {
		s.ReleaseKey(a.held)
	}
	if key != "" {
		s.PressKey(key)
	}
	a.held = key
}
