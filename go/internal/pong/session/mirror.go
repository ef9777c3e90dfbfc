package session

import (
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// Session applies relayed messages through the events.Handler methods below.
// None of them emit anything back to the peer.
var _ events.Handler = (*Session)(nil)

// Apply mirrors a message received from the relay into local state
func (s *Session) Apply(m events.Message) {
	events.Dispatch(s, m)
}

func (s *Session) OnKeyDown(m events.KeyDown) {
	if dir, ok := DirectionForKey(m.Key); ok {
		s.remote.Move = dir
	}
}

// OnKeyUp stops the opponent paddle and snaps it to the reported y,
// which absorbs whatever drift built up while the key was held.
func (s *Session) OnKeyUp(m events.KeyUp) {
	if _, ok := DirectionForKey(m.Key); ok {
		s.remote.Move = Stationary
	}
	s.remote.Y = m.Y
	s.remote.clamp(s.cfg.Height)
}

func (s *Session) OnCollision(m events.Collision) {
	s.mirrorBall(m.Ball)
}

func (s *Session) OnResetBall(m events.ResetBall) {
	s.mirrorBall(m.Ball)
}

// mirrorBall overwrites the ball with a reported state. The reporter has already
// mirrored x into our frame, so only the horizontal velocity changes sign here.
// Any reported ball releases a parked one.
func (s *Session) mirrorBall(b events.BallState) {
	size := b.Size
	if size <= 0 {
		size = s.cfg.BallSize
	}
	s.ball = Ball{X: b.X, Y: b.Y, Dx: -b.Dx, Dy: b.Dy, Size: size}
	s.parked = false
}

func (s *Session) OnPoint(m events.Point) {
	if !m.Player.Valid() {
		return
	}
	s.awardPoint(m.Player)
}

func (s *Session) OnStartGame(events.StartGame) {
	s.winner = ""
	s.phase = InPlay
}

func (s *Session) OnResetGame(events.ResetGame) {
	s.fullReset()
}

func (s *Session) OnRoomFull(events.RoomFull) {
	s.rejected = true
}

func (s *Session) OnWelcome(m events.Welcome) {
	if m.Player.Valid() {
		s.seat = m.Player
	}
}
