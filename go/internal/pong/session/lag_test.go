package session

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// link carries one direction of traffic and holds each message for a fixed number of frames
type link struct {
	latency int
	frame   *int
	queue   []delayed
	sent    map[events.Type]int
	points  map[events.Player]int
}

type delayed struct {
	due int
	msg events.Message
}

func newLink(frame *int, latency int) *link {
	return &link{
		latency: latency,
		frame:   frame,
		sent:    make(map[events.Type]int),
		points:  make(map[events.Player]int),
	}
}

func (l *link) Emit(m events.Message) {
	l.sent[m.Type()]++
	if p, ok := m.(events.Point); ok {
		l.points[p.Player]++
	}
	l.queue = append(l.queue, delayed{due: *l.frame + l.latency, msg: m})
}

func (l *link) deliver(to *Session, frame int) {
	for len(l.queue) > 0 && l.queue[0].due <= frame {
		to.Apply(l.queue[0].msg)
		l.queue = l.queue[1:]
	}
}

// laggedPair runs two sessions frame by frame; messages arrive latency frames after
// they were emitted, so each peer keeps simulating on stale state in between.
type laggedPair struct {
	a, b   *Session
	ab, ba *link
	frame  int
}

func newLaggedPair(cfg config.Game, latency int) *laggedPair {
	p := &laggedPair{}
	p.ab = newLink(&p.frame, latency)
	p.ba = newLink(&p.frame, latency)
	p.a = New("42", cfg, p.ab, WithSeat(events.Player1), WithRand(rand.New(rand.NewPCG(3, 4))))
	p.b = New("42", cfg, p.ba, WithSeat(events.Player2), WithRand(rand.New(rand.NewPCG(5, 6))))
	return p
}

func (p *laggedPair) step() {
	p.frame++
	p.a.Step()
	p.b.Step()
	p.ab.deliver(p.b, p.frame)
	p.ba.deliver(p.a, p.frame)
}

func (p *laggedPair) run(frames int) {
	for i := 0; i < frames; i++ {
		p.step()
	}
}

func (p *laggedPair) quiet() bool {
	return len(p.ab.queue) == 0 && len(p.ba.queue) == 0
}

func (p *laggedPair) sent(t events.Type) int {
	return p.ab.sent[t] + p.ba.sent[t]
}

func (p *laggedPair) tally() Score {
	return Score{
		Player1: p.ab.points[events.Player1] + p.ba.points[events.Player1],
		Player2: p.ab.points[events.Player2] + p.ba.points[events.Player2],
	}
}

func TestLaggedGoalAwardedOnce(t *testing.T) {
	p := newLaggedPair(config.Default(), 3)
	for _, s := range []*Session{p.a, p.b} {
		s.phase = InPlay
		s.local.Y, s.remote.Y = 0, 0
	}
	// The same ball on both screens, heading for player2's paddle.
	p.a.ball = Ball{X: 200, Y: 195, Dx: -5, Size: 10}
	p.b.ball = Ball{X: 590, Y: 195, Dx: 5, Size: 10}

	p.run(40)

	if !p.a.Parked() || p.a.Score() != (Score{}) {
		t.Fatalf("player1 parked %v score %+v, want it waiting for the report", p.a.Parked(), p.a.Score())
	}
	if p.b.Score() != (Score{Player1: 1}) {
		t.Fatalf("player2 score = %+v, want the conceded point", p.b.Score())
	}

	p.run(10)

	if got := p.sent(events.TypePoint); got != 1 {
		t.Errorf("points reported = %d, want 1", got)
	}
	if p.sent(events.TypeCollision) != 0 {
		t.Errorf("collisions reported = %d, want none", p.sent(events.TypeCollision))
	}
	for _, s := range []*Session{p.a, p.b} {
		if s.Score() != (Score{Player1: 1}) {
			t.Errorf("%s score = %+v, want one point for player1", s.Seat(), s.Score())
		}
	}
	if p.a.Parked() {
		t.Error("player1 still parked after the serve arrived")
	}
	ab, bb := p.a.Ball(), p.b.Ball()
	if ab.Dx != -bb.Dx || ab.Dy != bb.Dy {
		t.Errorf("peers diverged after the serve: %+v vs %+v", ab, bb)
	}
}

func TestLaggedCollisionDoesNotEcho(t *testing.T) {
	p := newLaggedPair(config.Default(), 1)
	for _, s := range []*Session{p.a, p.b} {
		s.phase = InPlay
	}
	p.b.ball = Ball{X: 750, Y: 195, Dx: 5, Size: 10}
	p.a.ball = Ball{X: 40, Y: 195, Dx: -5, Size: 10}

	p.run(400)

	// One hit per crossing: player2 at the start, then player1, then player2 again.
	if got := p.sent(events.TypeCollision); got != 3 {
		t.Errorf("collisions reported in 400 frames = %d, want 3", got)
	}
	if p.sent(events.TypePoint) != 0 {
		t.Errorf("points reported = %d, want a clean rally", p.sent(events.TypePoint))
	}

	ab, bb := p.a.Ball(), p.b.Ball()
	if ab.Dx != -bb.Dx || ab.Dy != bb.Dy {
		t.Errorf("velocities not mirrored: %+v vs %+v", ab, bb)
	}
	// player1 runs one frame behind the report it last applied
	if d := math.Abs(ab.X - (800 - bb.Size - bb.X)); d > 5 {
		t.Errorf("ball positions %v and %v are %v apart once mirrored", ab.X, bb.X, d)
	}
}

func TestLaggedMatchPlaysToOneWinner(t *testing.T) {
	cfg := config.Default()
	cfg.ServePolicy = config.ServeDiagonal
	cfg.PaddleHeight = 20

	p := newLaggedPair(cfg, 2)
	p.a.Start()

	for p.a.Winner() == "" || p.b.Winner() == "" || !p.quiet() {
		if p.frame > 200000 {
			t.Fatalf("no winner after %d frames, tally %+v", p.frame, p.tally())
		}
		p.step()

		if p.quiet() && p.a.Winner() == "" && p.b.Winner() == "" {
			want := p.tally()
			if p.a.Score() != want || p.b.Score() != want {
				t.Fatalf("frame %d: scores %+v and %+v, want both %+v", p.frame, p.a.Score(), p.b.Score(), want)
			}
		}
	}

	winner := p.a.Winner()
	if p.b.Winner() != winner {
		t.Fatalf("winners differ: %q and %q", winner, p.b.Winner())
	}
	tally := p.tally()
	if tally.Of(winner) != cfg.WinScore || tally.Of(winner.Opponent()) >= cfg.WinScore {
		t.Errorf("winner %q with tally %+v", winner, tally)
	}
	if got := p.sent(events.TypeResetGame); got != 1 {
		t.Errorf("resetGame reported %d times, want 1", got)
	}
	for _, s := range []*Session{p.a, p.b} {
		if s.Phase() != Idle || s.Score() != (Score{}) {
			t.Errorf("%s phase %v score %+v after the win", s.Seat(), s.Phase(), s.Score())
		}
	}
}
