package render

import (
	"unicode"

	"github.com/mcdev12/duelpong/go/internal/pong/session"
)

// Action is what a keystroke asks the peer to do
type Action int

const (
	NoAction Action = iota
	Press
	StartMatch
	ResetMatch
	Quit
)

// ActionFor maps a keystroke to an action. For Press, key is the wire key to hold.
func ActionFor(r rune) (action Action, key string) {
	switch unicode.ToLower(r) {
	case 'w', 'k':
		return Press, session.KeyUp
	case 's', 'j':
		return Press, session.KeyDown
	case ' ':
		return StartMatch, ""
	case 'r':
		return ResetMatch, ""
	case 'q', 3: // ctrl-c arrives as a byte in raw mode
		return Quit, ""
	}
	return NoAction, ""
}
