package session

import (
	"math"
	"math/rand/v2"

	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// serve centers the ball, launches it at BallSpeed and reports the new state
func (s *Session) serve() {
	angle := launchAngle(s.cfg.ServePolicy, s.rng)

	s.ball = s.centeredBall()
	s.ball.Dx = s.cfg.BallSpeed * math.Cos(angle)
	s.ball.Dy = s.cfg.BallSpeed * math.Sin(angle)
	s.parked = false

	s.emit(events.ResetBall{MatchID: s.matchID, Ball: s.peerBall()})
}

// launchAngle returns a serve angle in radians.
//
// The diagonal policy samples u in [0, π). The half u falls in selects a base of 45° or
// 135°, the position inside the half becomes an offset of at most ±22.5° around that
// base, and a coin flip mirrors the angle below the horizontal. The result always lies
// inside a diagonal quadrant, never on an axis.
func launchAngle(policy config.ServePolicy, rng *rand.Rand) float64 {
	if policy != config.ServeDiagonal {
		return rng.Float64() * 2 * math.Pi
	}

	u := rng.Float64() * math.Pi
	base := math.Pi / 4
	if u >= math.Pi/2 {
		base = 3 * math.Pi / 4
	}
	offset := math.Mod(u, math.Pi/2)/2 - math.Pi/8

	angle := base + offset
	if rng.IntN(2) == 1 {
		angle = -angle
	}
	return angle
}

// fullReset zeroes the score and parks the ball. The win indicator is left alone.
func (s *Session) fullReset() {
	s.score = Score{}
	s.ball = s.centeredBall()
	s.parked = false
	s.phase = Idle
}
