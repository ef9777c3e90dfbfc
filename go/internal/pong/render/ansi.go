package render

// ANSI escape sequences used by the text renderer
const (
	cursorHome  = "\033[H"
	clearScreen = "\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	reset       = "\033[0m"
	bold        = "\033[1m"
	cyan        = "\033[36m"
	yellow      = "\033[33m"
)

const (
	paddleCell = '█'
	ballCell   = 'O'
	emptyCell  = ' '
)
