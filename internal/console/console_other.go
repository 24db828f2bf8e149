//go:build !windows

package console

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Attach reports whether stdout is a terminal
func Attach() bool {
	attached = isatty.IsTerminal(os.Stdout.Fd())
	return attached
}

// SetTitle sets the terminal title with an xterm escape sequence
func SetTitle(title string) error {
	if !attached {
		return nil
	}
	_, err := os.Stdout.WriteString("\x1b]0;" + title + "\x07")
	return err
}

// GetWindow returns 0; there is no console window handle outside Windows
func GetWindow() uintptr {
	return 0
}
