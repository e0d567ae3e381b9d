package report

import (
	"fmt"

	"github.com/felixgeelhaar/covtable/internal/domain"
)

// 256-color palette indexes. Rows are drawn as black text on a colored
// background.
const (
	fgBlack   = 0
	bgRed     = 9
	bgGreen   = 10
	bgYellow  = 11
	ansiReset = "\033[0m"
)

func ansiColor(fg, bg int) string {
	return fmt.Sprintf("\033[38;5;%d;48;5;%dm", fg, bg)
}

var escapes = map[domain.Color]string{
	domain.Red:    ansiColor(fgBlack, bgRed),
	domain.Yellow: ansiColor(fgBlack, bgYellow),
	domain.Green:  ansiColor(fgBlack, bgGreen),
}

// Escape returns the SGR sequence that starts a row of the given color.
func Escape(c domain.Color) string {
	if seq, ok := escapes[c]; ok {
		return seq
	}
	return ""
}

// Reset returns the SGR sequence that ends a colored row.
func Reset() string {
	return ansiReset
}
