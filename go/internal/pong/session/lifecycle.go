package session

import (
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// Start serves the ball and enters play. The serve is reported before the start so the
// peer holds the new ball when it switches to in-play.
func (s *Session) Start() {
	s.winner = ""
	s.phase = InPlay
	s.serve()
	s.emit(events.StartGame{MatchID: s.matchID})
}

// Reset zeroes scores and ball on both peers
func (s *Session) Reset() {
	s.fullReset()
	s.emit(events.ResetGame{MatchID: s.matchID})
}

// PressKey starts moving the local paddle
func (s *Session) PressKey(key string) {
	dir, ok := DirectionForKey(key)
	if !ok {
		return
	}
	s.local.Move = dir
	s.emit(events.KeyDown{MatchID: s.matchID, Key: key})
}

// ReleaseKey stops the local paddle and reports where it stopped
func (s *Session) ReleaseKey(key string) {
	if _, ok := DirectionForKey(key); !ok {
		return
	}
	s.local.Move = Stationary
	s.emit(events.KeyUp{MatchID: s.matchID, Key: key, Y: s.local.Y})
}

// awardPoint credits p. When p reaches the win score the winner is fixed right here,
// from the scores that crossed the threshold, and the match is reset to idle.
// It reports whether the point ended the match.
func (s *Session) awardPoint(p events.Player) bool {
	if s.score.add(p) < s.cfg.WinScore {
		return false
	}
	s.winner = p
	s.fullReset()
	return true
}
