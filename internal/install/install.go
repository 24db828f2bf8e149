package install

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dchest/safefile"

	"github.com/caffeine-mod/sd2-installer/internal/detect"
	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// PayloadSource provides the mod assembly bytes
type PayloadSource interface {
	Load() ([]byte, error)
}

// StateDetector classifies a game directory
type StateDetector interface {
	State(gameDir string) detect.State
}

// Config holds the collaborators of an Installer
type Config struct {
	Payload  PayloadSource
	Detector StateDetector
	// IsGameRunning reports whether the game runs from gameDir. Nil means never.
	IsGameRunning func(gameDir string) bool
	// Version is recorded in the journal
	Version string
	Now     func() time.Time
}

// Installer swaps the live assembly with the mod payload and back.
// Every operation derives the current state from disk first, so a stale
// caller-side state never drives the file operations.
type Installer struct {
	config Config
}

// NewInstaller creates a new installer
func NewInstaller(config Config) *Installer {
	if config.Detector == nil {
		config.Detector = detect.New()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Installer{config: config}
}

// Toggle installs the mod when it is not installed and uninstalls it otherwise
func (i *Installer) Toggle(gameDir string) (detect.State, error) {
	if i.config.Detector.State(gameDir) == detect.Installed {
		return i.Uninstall(gameDir)
	}
	return i.Install(gameDir)
}

// Install replaces the live assembly with the payload, keeping the original
// as the backup. It is a no-op when the mod is already installed.
func (i *Installer) Install(gameDir string) (detect.State, error) {
	if i.config.Detector.State(gameDir) == detect.Installed {
		slog.Info("mod already installed", "dir", gameDir)
		return detect.Installed, nil
	}

	payload, err := i.loadPayload()
	if err != nil {
		return detect.NotInstalled, err
	}

	managed := paths.Managed(gameDir)
	if gameDir == "" || !paths.DirExists(managed) {
		return detect.NotInstalled, fmt.Errorf("%w: %s", ErrGameLocationInvalid, managed)
	}

	if i.gameRunning(gameDir) {
		return detect.NotInstalled, ErrGameRunning
	}

	if err := i.begin(gameDir, OpInstall); err != nil {
		return detect.NotInstalled, err
	}

	live := paths.Assembly(gameDir)
	backup := paths.Backup(gameDir)

	backedUp := false
	if paths.FileExists(live) {
		// Only replace a backup when there is a live file to take its place
		if paths.FileExists(backup) {
			slog.Debug("removing stale backup", "path", backup)
			if err := os.Remove(backup); err != nil {
				return i.abort(gameDir, fmt.Errorf("failed to remove stale backup: %w", err))
			}
		}
		if err := os.Rename(live, backup); err != nil {
			return i.abort(gameDir, fmt.Errorf("failed to back up original assembly: %w", err))
		}
		backedUp = true
	}

	if err := safefile.WriteFile(live, payload, 0644); err != nil {
		if backedUp {
			if rerr := os.Rename(backup, live); rerr != nil {
				slog.Error("could not restore backup after failed write", "err", rerr)
			}
		}
		return i.abort(gameDir, fmt.Errorf("failed to write mod assembly: %w", err))
	}

	if i.config.Detector.State(gameDir) != detect.Installed {
		i.rollbackInstall(gameDir, backedUp)
		return i.abort(gameDir, ErrPayloadInvalid)
	}

	if err := RemoveJournal(gameDir); err != nil {
		return detect.Installed, err
	}

	slog.Info("mod installed", "dir", gameDir, "backup", backedUp)
	return detect.Installed, nil
}

// Uninstall restores the backup over the live assembly. It is a no-op when
// the mod is not installed.
func (i *Installer) Uninstall(gameDir string) (detect.State, error) {
	if gameDir == "" {
		return detect.NotInstalled, fmt.Errorf("%w: game folder unknown", ErrGameLocationInvalid)
	}
	if i.config.Detector.State(gameDir) != detect.Installed {
		slog.Info("mod not installed", "dir", gameDir)
		return detect.NotInstalled, nil
	}

	backup := paths.Backup(gameDir)
	if !paths.FileExists(backup) {
		return detect.Installed, fmt.Errorf("%w: %s", ErrBackupMissing, backup)
	}

	if i.gameRunning(gameDir) {
		return detect.Installed, ErrGameRunning
	}

	if err := i.begin(gameDir, OpUninstall); err != nil {
		return detect.Installed, err
	}

	// Rename replaces the modded file in one step, so there is no moment
	// where neither the mod nor the original is in place.
	if err := os.Rename(backup, paths.Assembly(gameDir)); err != nil {
		if jerr := RemoveJournal(gameDir); jerr != nil {
			slog.Warn("could not remove journal", "err", jerr)
		}
		return detect.Installed, fmt.Errorf("failed to restore original assembly: %w", err)
	}

	if err := RemoveJournal(gameDir); err != nil {
		return detect.NotInstalled, err
	}

	slog.Info("mod uninstalled", "dir", gameDir)
	return i.config.Detector.State(gameDir), nil
}

func (i *Installer) loadPayload() ([]byte, error) {
	if i.config.Payload == nil {
		return nil, ErrPayloadMissing
	}

	payload, err := i.config.Payload.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayloadMissing, err)
	}
	if len(payload) == 0 {
		return nil, ErrPayloadMissing
	}
	return payload, nil
}

func (i *Installer) gameRunning(gameDir string) bool {
	return i.config.IsGameRunning != nil && i.config.IsGameRunning(gameDir)
}

func (i *Installer) begin(gameDir, op string) error {
	return SaveJournal(gameDir, &Journal{
		Operation: op,
		Started:   i.config.Now().UTC(),
		Installer: i.config.Version,
	})
}

// abort clears the journal after a failed install. The files are left in
// a consistent state by the caller before abort is reached.
func (i *Installer) abort(gameDir string, err error) (detect.State, error) {
	if jerr := RemoveJournal(gameDir); jerr != nil {
		slog.Warn("could not remove journal", "err", jerr)
	}
	return i.config.Detector.State(gameDir), err
}

// rollbackInstall puts the original assembly back after a payload that did
// not verify
func (i *Installer) rollbackInstall(gameDir string, backedUp bool) {
	live := paths.Assembly(gameDir)
	if backedUp {
		if err := os.Rename(paths.Backup(gameDir), live); err != nil {
			slog.Error("could not restore original assembly", "err", err)
		}
		return
	}
	if err := os.Remove(live); err != nil && !os.IsNotExist(err) {
		slog.Error("could not remove unverified payload", "err", err)
	}
}
