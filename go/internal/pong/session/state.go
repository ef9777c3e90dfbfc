package session

import (
	"github.com/mcdev12/duelpong/go/internal/pong/events"
)

// Direction is a paddle's current movement
type Direction int

const (
	Stationary Direction = 0
	Up         Direction = -1
	Down       Direction = 1
)

// Keys used on the wire for paddle control
const (
	KeyUp   = "w"
	KeyDown = "s"
)

// DirectionForKey maps a control key to its direction
func DirectionForKey(key string) (Direction, bool) {
	switch key {
	case KeyUp:
		return Up, true
	case KeyDown:
		return Down, true
	}
	return Stationary, false
}

// Phase is the match lifecycle state
type Phase int

const (
	Idle Phase = iota
	InPlay
)

func (p Phase) String() string {
	if p == InPlay {
		return "in-play"
	}
	return "idle"
}

// Paddle is an axis-aligned rectangle with a fixed x
type Paddle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Move   Direction
}

// clamp keeps y within [0, fieldHeight-Height]
func (p *Paddle) clamp(fieldHeight float64) {
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y+p.Height > fieldHeight {
		p.Y = fieldHeight - p.Height
	}
}

func (p *Paddle) step(speed, fieldHeight float64) {
	if p.Move == Stationary {
		return
	}
	p.Y += speed * float64(p.Move)
	p.clamp(fieldHeight)
}

// overlaps is the bounding-box test between the paddle and the ball
func (p Paddle) overlaps(b Ball) bool {
	return b.X <= p.X+p.Width &&
		b.X+b.Size >= p.X &&
		b.Y+b.Size >= p.Y &&
		b.Y <= p.Y+p.Height
}

// Ball is a square of side Size moving by (Dx, Dy) per frame
type Ball struct {
	X    float64
	Y    float64
	Dx   float64
	Dy   float64
	Size float64
}

// State converts the ball to its wire form
func (b Ball) State() events.BallState {
	return events.BallState{X: b.X, Y: b.Y, Dx: b.Dx, Dy: b.Dy, Size: b.Size}
}

// Score holds one counter per seat
type Score struct {
	Player1 int
	Player2 int
}

// Of returns the counter for a seat
func (s Score) Of(p events.Player) int {
	if p == events.Player2 {
		return s.Player2
	}
	return s.Player1
}

func (s *Score) add(p events.Player) int {
	if p == events.Player2 {
		s.Player2++
		return s.Player2
	}
	s.Player1++
	return s.Player1
}
