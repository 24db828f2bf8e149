// Package notify tells the user how an action ended.
package notify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/caffeine-mod/sd2-installer/internal/audio"
)

// Notifier reports the outcome of an action to the user
type Notifier interface {
	Error(title, message string)
	Info(title, message string)
}

// SoundPlayer defines the interface for playing sounds
type SoundPlayer interface {
	Play(name string)
	PlayAsync(name string)
}

var errNoDialog = errors.New("message boxes are not supported on this platform")

type icon int

const (
	iconInfo icon = iota
	iconError
)

// Console writes notifications to a stream
type Console struct {
	W     io.Writer
	Sound SoundPlayer
}

// NewConsole returns a Console writing to stderr
func NewConsole(sound SoundPlayer) *Console {
	return &Console{W: os.Stderr, Sound: sound}
}

func (c *Console) Error(title, message string) {
	if c.Sound != nil {
		c.Sound.PlayAsync(audio.Error)
	}
	fmt.Fprintf(c.W, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint(title), message)
}

func (c *Console) Info(title, message string) {
	if c.Sound != nil {
		c.Sound.PlayAsync(audio.Success)
	}
	fmt.Fprintf(c.W, "%s %s\n", color.New(color.FgGreen, color.Bold).Sprint(title), message)
}

// Dialog shows a blocking message box and falls back to the console when
// no message box can be shown
type Dialog struct {
	// Owner returns the window that owns the message box
	Owner    func() uintptr
	Sound    SoundPlayer
	Fallback *Console
}

func (d *Dialog) owner() uintptr {
	if d.Owner == nil {
		return 0
	}
	return d.Owner()
}

func (d *Dialog) Error(title, message string) {
	if d.Sound != nil {
		d.Sound.PlayAsync(audio.Error)
	}
	if err := showDialog(d.owner(), title, message, iconError); err != nil {
		slog.Debug("message box unavailable", "err", err)
		d.Fallback.Error(title, message)
	}
}

func (d *Dialog) Info(title, message string) {
	if d.Sound != nil {
		d.Sound.PlayAsync(audio.Success)
	}
	if err := showDialog(d.owner(), title, message, iconInfo); err != nil {
		slog.Debug("message box unavailable", "err", err)
		d.Fallback.Info(title, message)
	}
}

// New returns a message box notifier for interactive sessions and a console
// notifier otherwise
func New(interactive bool, sound SoundPlayer, owner func() uintptr) Notifier {
	if !interactive {
		return NewConsole(sound)
	}
	// The dialog plays the sound itself
	return &Dialog{Owner: owner, Sound: sound, Fallback: NewConsole(nil)}
}
