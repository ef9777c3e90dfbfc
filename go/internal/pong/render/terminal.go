package render

import (
	"golang.org/x/term"
)

// TerminalSize returns the playfield size that fits the terminal on fd, leaving room for
// the header, borders and help line. It falls back to the given size when fd is not a
// terminal.
func TerminalSize(fd int, fallbackCols, fallbackRows int) (cols, rows int) {
	if !term.IsTerminal(fd) {
		return fallbackCols, fallbackRows
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		return fallbackCols, fallbackRows
	}
	return width - 2, height - 4
}

// RawMode puts the terminal on fd into raw mode and returns a function restoring it.
// It is a no-op when fd is not a terminal.
func RawMode(fd int) (restore func() error, err error) {
	if !term.IsTerminal(fd) {
		return func() error { return nil }, nil
	}
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, prev) }, nil
}
