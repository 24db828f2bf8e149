package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caffeine-mod/sd2-installer/internal/audio"
)

// ErrCancelled is returned when the user backs out of a prompt
var ErrCancelled = errors.New("cancelled by user")

// SoundPlayer defines the interface for playing sounds
type SoundPlayer interface {
	Play(name string)
	PlayAsync(name string)
}

// Config holds configuration for prompting
type Config struct {
	NonInteractive   bool
	Sound            SoundPlayer
	GetConsoleWindow func() uintptr
	// In and Out default to stdin and stdout
	In  *bufio.Reader
	Out io.Writer
}

var stdin = bufio.NewReader(os.Stdin)

func (c Config) in() *bufio.Reader {
	if c.In != nil {
		return c.In
	}
	return stdin
}

func (c Config) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c Config) play(name string) {
	if c.Sound != nil {
		c.Sound.PlayAsync(name)
	}
}

func readLine(cfg Config) (string, error) {
	line, err := cfg.in().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// WaitForKey waits for user to press Enter
func WaitForKey(prompt string, cfg Config) {
	if cfg.NonInteractive {
		return
	}
	fmt.Fprint(cfg.out(), prompt)
	_, _ = readLine(cfg)
}

// Confirm asks the user to confirm an action
func Confirm(prompt string, cfg Config) bool {
	if cfg.NonInteractive {
		return true
	}

	fmt.Fprintf(cfg.out(), "%s (y/n): ", prompt)
	response, err := readLine(cfg)
	if err != nil {
		return false
	}
	response = strings.ToLower(response)
	confirmed := response == "y" || response == "yes"
	if confirmed || response == "n" || response == "no" {
		cfg.play(audio.Select)
	}
	return confirmed
}

// Choice is a main menu selection
type Choice int

const (
	ChoiceExit Choice = iota
	ChoiceToggle
	ChoiceChangeFolder
)

// MenuView is what the main menu shows
type MenuView struct {
	// GameDir and Status are already formatted for display
	GameDir   string
	Status    string
	Installed bool
}

// Menu displays the main menu and returns the user's choice.
// Reading fails or end of input count as Exit.
func Menu(view MenuView, cfg Config) Choice {
	w := cfg.out()

	action := "Install"
	if view.Installed {
		action = "Uninstall"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Caffeine for Soda Dungeon 2")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Game folder: %s\n", view.GameDir)
	fmt.Fprintf(w, "  Status:      %s\n", view.Status)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  1. %s\n", action)
	fmt.Fprintln(w, "  2. Change game folder")
	fmt.Fprintln(w, "  3. Exit")
	fmt.Fprintln(w)
	fmt.Fprint(w, "Enter your choice (1, 2, or 3): ")

	for {
		response, err := readLine(cfg)
		if err != nil {
			fmt.Fprintln(w)
			return ChoiceExit
		}

		switch response {
		case "1":
			cfg.play(audio.Select)
			return ChoiceToggle
		case "2":
			cfg.play(audio.Select)
			return ChoiceChangeFolder
		case "3", "q", "Q":
			return ChoiceExit
		default:
			fmt.Fprint(w, "Invalid choice. Please enter 1, 2, or 3: ")
		}
	}
}

// ReadPath asks for a folder path on the console. An empty answer keeps
// defaultPath, or cancels when there is none.
func ReadPath(message, defaultPath string, cfg Config) (string, error) {
	w := cfg.out()
	if defaultPath != "" {
		fmt.Fprintf(w, "%s [%s]: ", message, defaultPath)
	} else {
		fmt.Fprintf(w, "%s: ", message)
	}

	response, err := readLine(cfg)
	if err != nil {
		return "", ErrCancelled
	}
	response = strings.Trim(response, `"`)
	if response == "" {
		if defaultPath == "" {
			return "", ErrCancelled
		}
		return defaultPath, nil
	}
	return response, nil
}
