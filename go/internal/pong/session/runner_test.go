package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

func nextFrame(t *testing.T, frames <-chan Frame) Frame {
	t.Helper()
	select {
	case f := <-frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return Frame{}
}

func TestRunnerDrawsThenSteps(t *testing.T) {
	cfg := config.Default()
	s := New("42", cfg, nil)
	fc := clockwork.NewFakeClock()
	frames := make(chan Frame, 4)

	var applied []events.Type
	r := NewRunner(s,
		WithClock(fc),
		WithRenderer(RendererFunc(func(f Frame) { frames <- f })),
		WithMessageHook(func(_ *Session, m events.Message) { applied = append(applied, m.Type()) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("runner never created its ticker: %v", err)
	}

	fc.Advance(cfg.FrameInterval())
	if f := nextFrame(t, frames); f.Tick != 0 || f.Phase != Idle {
		t.Fatalf("first frame = tick %d phase %v", f.Tick, f.Phase)
	}

	if err := r.Deliver(ctx, events.ResetBall{Ball: events.BallState{X: 100, Y: 100, Dx: -5, Size: 10}}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if err := r.Deliver(ctx, events.StartGame{}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var phase Phase
	var ball Ball
	if err := r.Do(ctx, func(s *Session) { phase, ball = s.Phase(), s.Ball() }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if phase != InPlay || ball.Dx != 5 {
		t.Fatalf("after delivery phase %v ball %+v", phase, ball)
	}
	if !sameTypes(applied, []events.Type{events.TypeResetBall, events.TypeStartGame}) {
		t.Errorf("message hook saw %v", applied)
	}

	fc.Advance(cfg.FrameInterval())
	f := nextFrame(t, frames)
	if f.Tick != 1 || f.Ball.X != 100 {
		t.Errorf("second frame = tick %d ball x %v, want tick 1 drawn before moving", f.Tick, f.Ball.X)
	}

	var x float64
	if err := r.Do(ctx, func(s *Session) { x = s.Ball().X }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if x != 105 {
		t.Errorf("ball x after step = %v, want 105", x)
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRunnerTickHook(t *testing.T) {
	cfg := config.Default()
	s := New("42", cfg, nil)
	fc := clockwork.NewFakeClock()
	ticks := make(chan uint64, 8)

	r := NewRunner(s, WithClock(fc), WithTickHook(func(s *Session) { ticks <- s.Ticks() }))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go r.Run(ctx)

	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext() error = %v", err)
	}

	for want := uint64(1); want <= 3; want++ {
		fc.Advance(cfg.FrameInterval())
		select {
		case got := <-ticks:
			if got != want {
				t.Fatalf("tick hook saw %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never ran", want)
		}
	}
}
