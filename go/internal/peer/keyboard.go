package peer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/duelpong/go/internal/pong/render"
	"github.com/mcdev12/duelpong/go/internal/pong/session"
)

// ErrQuit is returned by Keyboard.Run when the player asks to leave
var ErrQuit = errors.New("quit requested")

// DefaultHold covers the gap before a terminal starts auto-repeating a held key
const DefaultHold = 600 * time.Millisecond

// Controls runs input against a session on its frame loop
type Controls interface {
	Do(ctx context.Context, fn func(s *session.Session)) error
}

// Keyboard turns terminal keystrokes into session input. Terminals report presses
// only, so a key counts as held until no repeat has arrived for Hold.
type Keyboard struct {
	in       io.Reader
	controls Controls
	clock    clockwork.Clock
	Hold     time.Duration
}

// NewKeyboard reads keystrokes from in, which should be a terminal in raw mode
func NewKeyboard(in io.Reader, controls Controls, clock clockwork.Clock) *Keyboard {
	return &Keyboard{in: in, controls: controls, clock: clock, Hold: DefaultHold}
}

// Run handles keystrokes until ctx is cancelled, input ends or quit is pressed
func (k *Keyboard) Run(ctx context.Context) error {
	keys := make(chan rune)
	readErr := make(chan error, 1)
	go func() {
		r := bufio.NewReader(k.in)
		for {
			ch, _, err := r.ReadRune()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- ch:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		held    string
		timer   clockwork.Timer
		expired <-chan time.Time
	)
	release := func() error {
		if held == "" {
			return nil
		}
		key := held
		held, expired = "", nil
		return k.controls.Do(ctx, func(s *session.Session) { s.ReleaseKey(key) })
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case rerr := <-readErr:
			release()
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			return rerr
		case <-expired:
			err = release()
		case ch := <-keys:
			action, key := render.ActionFor(ch)
			switch action {
			case render.Press:
				// arm before acting so a hold is always measured from the latest keystroke
				timer = k.arm(timer)
				if key != held {
					if err = release(); err == nil {
						held = key
						err = k.controls.Do(ctx, func(s *session.Session) { s.PressKey(key) })
					}
				}
				expired = timer.Chan()
			case render.StartMatch:
				err = k.controls.Do(ctx, func(s *session.Session) { s.Start() })
			case render.ResetMatch:
				err = k.controls.Do(ctx, func(s *session.Session) { s.Reset() })
			case render.Quit:
				release()
				return ErrQuit
			}
		}
		if err != nil {
			return nil
		}
	}
}

func (k *Keyboard) arm(t clockwork.Timer) clockwork.Timer {
	if t == nil {
		return k.clock.NewTimer(k.Hold)
	}
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
	t.Reset(k.Hold)
	return t
}
