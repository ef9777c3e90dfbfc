package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
	"github.com/rs/zerolog/log"
)

// Clock is the time source for the frame loop.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	NewTicker(d time.Duration) clockwork.Ticker
}

const queueSize = 256

// Runner owns a Session on a single goroutine. Frames, relayed messages and local
// actions are serialized through one select loop, so the session needs no locking.
type Runner struct {
	session  *Session
	clock    Clock
	interval time.Duration
	renderer Renderer

	onTick    func(s *Session)
	onMessage func(s *Session, m events.Message)

	queue chan work
}

// work is either a relayed message or a local action
type work struct {
	msg  events.Message
	fn   func(s *Session)
	done chan struct{}
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithClock replaces the real clock
func WithClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithRenderer draws every frame before it is simulated
func WithRenderer(rd Renderer) RunnerOption {
	return func(r *Runner) { r.renderer = rd }
}

// WithTickHook runs fn after every simulated frame, on the loop goroutine
func WithTickHook(fn func(s *Session)) RunnerOption {
	return func(r *Runner) { r.onTick = fn }
}

// WithMessageHook runs fn after every applied message, on the loop goroutine
func WithMessageHook(fn func(s *Session, m events.Message)) RunnerOption {
	return func(r *Runner) { r.onMessage = fn }
}

// NewRunner creates a runner ticking at the session's configured frame rate
func NewRunner(s *Session, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:  s,
		clock:    clockwork.NewRealClock(),
		interval: s.cfg.FrameInterval(),
		queue:    make(chan work, queueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Deliver queues a relayed message. Messages and actions are applied in queue order.
func (r *Runner) Deliver(ctx context.Context, m events.Message) error {
	select {
	case r.queue <- work{msg: m}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for it to finish
func (r *Runner) Do(ctx context.Context, fn func(s *Session)) error {
	w := work{fn: fn, done: make(chan struct{})}
	select {
	case r.queue <- w:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the session until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	log.Debug().
		Str("match_id", r.session.matchID).
		Dur("interval", r.interval).
		Msg("frame loop started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("match_id", r.session.matchID).Msg("frame loop stopped")
			return nil
		case <-ticker.Chan():
			r.session.Tick(r.renderer)
			if r.onTick != nil {
				r.onTick(r.session)
			}
		case w := <-r.queue:
			if w.fn != nil {
				w.fn(r.session)
				close(w.done)
				continue
			}
			r.session.Apply(w.msg)
			if r.onMessage != nil {
				r.onMessage(r.session, w.msg)
			}
		}
	}
}
