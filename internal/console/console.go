package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	attached bool
	quiet    bool
	verbose  bool
	out      io.Writer = os.Stdout
)

// Init configures the console package
func Init(quietMode, verboseMode bool) {
	quiet = quietMode
	verbose = verboseMode
}

// SetOutput redirects console output
func SetOutput(w io.Writer) {
	out = w
}

// IsAttached returns whether a console is attached
func IsAttached() bool {
	return attached
}

// Log prints a message if not in quiet mode
func Log(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format+"\n", args...)
	}
}

// Verbose prints a message only in verbose mode
func Verbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(out, format+"\n", args...)
	}
}

// WaitForKey prompts the user to press Enter. Does nothing in non-interactive mode.
func WaitForKey(prompt string, nonInteractive bool) {
	if nonInteractive {
		return
	}
	fmt.Fprint(out, prompt)
	_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')
}

var (
	installedColor    = color.New(color.FgGreen, color.Bold)
	notInstalledColor = color.New(color.FgRed, color.Bold)
	pathColor         = color.New(color.FgCyan)
	unknownColor      = color.New(color.FgYellow)
)

// Status renders the installation state, green when installed and red otherwise
func Status(installed bool, label string) string {
	if installed {
		return installedColor.Sprint(label)
	}
	return notInstalledColor.Sprint(label)
}

// Path renders a game directory, or a placeholder when it is unknown
func Path(p string) string {
	if p == "" {
		return unknownColor.Sprint("(not found)")
	}
	return pathColor.Sprint(p)
}
