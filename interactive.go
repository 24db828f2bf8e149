package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/caffeine-mod/sd2-installer/internal/console"
	"github.com/caffeine-mod/sd2-installer/internal/detect"
	"github.com/caffeine-mod/sd2-installer/internal/install"
	"github.com/caffeine-mod/sd2-installer/internal/paths"
	"github.com/caffeine-mod/sd2-installer/internal/process"
	"github.com/caffeine-mod/sd2-installer/internal/prompt"
)

const (
	gameExitTimeout = 2 * time.Minute
	gameExitPoll    = 500 * time.Millisecond
)

// runInteractive shows the main menu until the user exits. Every pass
// re-detects the state from disk.
func runInteractive(s *session) error {
	for {
		state := s.detector.State(s.gameDir)

		choice := prompt.Menu(prompt.MenuView{
			GameDir:   console.Path(s.gameDir),
			Status:    console.Status(state == detect.Installed, state.String()),
			Installed: state == detect.Installed,
		}, s.prompt)

		switch choice {
		case prompt.ChoiceToggle:
			s.toggleInteractive()
		case prompt.ChoiceChangeFolder:
			s.changeFolder()
		case prompt.ChoiceExit:
			return nil
		}
	}
}

func (s *session) toggleInteractive() {
	if s.gameDir == "" {
		title, message := install.Describe(install.ErrGameLocationInvalid)
		s.notifier.Error(title, message)
		return
	}

	err := s.run(s.installer.Toggle, "toggle")
	if !errors.Is(err, errReported) {
		return
	}

	// The game holds the assembly open; offer to wait for it to close
	if process.IsGameRunningInDir(s.gameDir) &&
		prompt.Confirm("Wait for Soda Dungeon 2 to close and try again?", s.prompt) {
		console.Log("Waiting for the game to close...")
		if process.WaitForExit(s.gameDir, gameExitTimeout, gameExitPoll) {
			_ = s.run(s.installer.Toggle, "toggle")
		} else {
			console.Log("The game is still running.")
		}
	}
}

func (s *session) changeFolder() {
	selected, err := prompt.SelectFolder(s.gameDir, s.prompt)
	if err != nil {
		if !errors.Is(err, prompt.ErrCancelled) {
			slog.Warn("folder selection failed", "err", err)
		}
		return
	}

	dir := paths.GameDirFrom(selected)
	if !paths.DirExists(paths.Managed(dir)) {
		console.Log("%s does not look like a Soda Dungeon 2 folder.", dir)
	}

	s.saveGameDir(dir)
	s.recoverJournal()
}
