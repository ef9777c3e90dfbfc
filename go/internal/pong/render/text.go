// Package render draws session frames for terminals.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mcdev12/duelpong/go/internal/pong/session"
	"github.com/rs/zerolog/log"
)

var _ session.Renderer = (*Text)(nil)

// Text draws each frame as a character grid with a score line on top
type Text struct {
	w     io.Writer
	cols  int
	rows  int
	color bool
}

// TextOption configures a Text renderer
type TextOption func(*Text)

// WithColor styles paddles, ball and header with ANSI colors
func WithColor(on bool) TextOption {
	return func(t *Text) { t.color = on }
}

// NewText creates a renderer drawing a cols x rows playfield, borders excluded
func NewText(w io.Writer, cols, rows int, opts ...TextOption) *Text {
	t := &Text{
		w:    w,
		cols: max(cols, 8),
		rows: max(rows, 4),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Draw repaints the whole screen. Lines end in \r\n so output stays aligned when the
// terminal is in raw mode.
func (t *Text) Draw(f session.Frame) {
	var b strings.Builder
	b.WriteString(cursorHome)
	b.WriteString(clearScreen)

	header := Header(f)
	if t.color {
		header = bold + header + reset
	}
	b.WriteString(header)
	b.WriteString("\r\n")

	border := "+" + strings.Repeat("-", t.cols) + "+\r\n"
	b.WriteString(border)
	for _, line := range Grid(f, t.cols, t.rows) {
		b.WriteString("|")
		if t.color {
			line = t.paint(line)
		}
		b.WriteString(line)
		b.WriteString("|\r\n")
	}
	b.WriteString(border)
	b.WriteString("w/s move  space start  r reset  q quit\r\n")

	if _, err := io.WriteString(t.w, b.String()); err != nil {
		log.Debug().Err(err).Msg("failed to draw frame")
	}
}

// Clear restores the cursor and wipes the screen
func (t *Text) Clear() {
	io.WriteString(t.w, cursorHome+clearScreen+showCursor)
}

// HideCursor hides the terminal cursor until Clear
func (t *Text) HideCursor() {
	io.WriteString(t.w, hideCursor)
}

func (t *Text) paint(line string) string {
	line = strings.ReplaceAll(line, string(paddleCell), cyan+string(paddleCell)+reset)
	return strings.ReplaceAll(line, string(ballCell), yellow+string(ballCell)+reset)
}

// Header is the score line: both seats with their scores, the lifecycle state, the
// local seat and, while one is up, the win indicator.
func Header(f session.Frame) string {
	h := fmt.Sprintf("player1 %d : %d player2 | %s | you: %s",
		f.Score.Player1, f.Score.Player2, f.Phase, f.Seat)
	if f.Winner != "" {
		h += fmt.Sprintf(" | %s wins", f.Winner)
	}
	return h
}

// Grid rasterizes the playfield into rows of cols cells. The opponent is drawn on the
// left and the local paddle on the right; the ball is drawn last.
func Grid(f session.Frame, cols, rows int) []string {
	if f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(string(emptyCell), cols))
	}

	fill := func(x, y, w, h float64, c rune) {
		c0, c1 := span(x, w, f.Width, cols)
		r0, r1 := span(y, h, f.Height, rows)
		for r := r0; r <= r1; r++ {
			for col := c0; col <= c1; col++ {
				cells[r][col] = c
			}
		}
	}

	fill(f.Remote.X, f.Remote.Y, f.Remote.Width, f.Remote.Height, paddleCell)
	fill(f.Local.X, f.Local.Y, f.Local.Width, f.Local.Height, paddleCell)
	fill(f.Ball.X, f.Ball.Y, f.Ball.Size, f.Ball.Size, ballCell)

	lines := make([]string, rows)
	for i, row := range cells {
		lines[i] = string(row)
	}
	return lines
}

// span maps [pos, pos+size) of a field extent onto an inclusive range of n cells
func span(pos, size, extent float64, n int) (int, int) {
	first := int(math.Floor(pos * float64(n) / extent))
	last := int(math.Ceil((pos+size)*float64(n)/extent)) - 1
	first = min(max(first, 0), n-1)
	last = min(max(last, first), n-1)
	return first, last
}
