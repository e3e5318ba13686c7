// Package terminal provides small terminal manipulation helpers.
package terminal

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines erases the lines a just-typed input occupied, so API
// keys do not stay visible in the scrollback. textLength is the combined
// length of the prompt and the typed value; line wrapping is derived from the
// current terminal width (80 when it cannot be determined).
func ClearPreviousLines(textLength int) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	lines := (textLength + width - 1) / width
	if lines < 1 {
		lines = 1
	}
	// Enter left the cursor on a fresh line below the input; clear that too.
	lines++

	for i := 0; i < lines; i++ {
		fmt.Print("\r\x1b[2K")
		if i < lines-1 {
			fmt.Print("\x1b[1A")
		}
	}
}
