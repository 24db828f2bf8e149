package install

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// Recovery describes what Recover did
type Recovery int

const (
	// RecoveryNone means there was no interrupted transaction
	RecoveryNone Recovery = iota
	// RecoveryRolledBack means an interrupted install was undone
	RecoveryRolledBack
	// RecoveryRolledForward means an interrupted uninstall was completed
	RecoveryRolledForward
	// RecoveryCleared means the files were consistent and only the journal was removed
	RecoveryCleared
)

func (r Recovery) String() string {
	switch r {
	case RecoveryRolledBack:
		return "rolled back interrupted install"
	case RecoveryRolledForward:
		return "completed interrupted uninstall"
	case RecoveryCleared:
		return "cleared stale journal"
	default:
		return "nothing to recover"
	}
}

// Recover finishes or undoes a transaction interrupted by a crash or power
// loss. It must run before the first detection of a launch.
func Recover(gameDir string) (Recovery, error) {
	if gameDir == "" {
		return RecoveryNone, nil
	}
	j, err := LoadJournal(gameDir)
	if err != nil {
		// An unreadable journal still marks an interrupted run
		slog.Warn("journal unreadable, treating as unknown operation", "err", err)
		j = &Journal{}
	}
	if j == nil {
		return RecoveryNone, nil
	}

	live := paths.Assembly(gameDir)
	backup := paths.Backup(gameDir)

	result := RecoveryCleared
	switch j.Operation {
	case OpInstall:
		// The payload is written atomically, so a live file means the
		// install finished. Without one the original sits in the backup.
		if !paths.FileExists(live) && paths.FileExists(backup) {
			if err := os.Rename(backup, live); err != nil {
				return RecoveryNone, fmt.Errorf("failed to roll back install: %w", err)
			}
			result = RecoveryRolledBack
		}
	case OpUninstall:
		if paths.FileExists(backup) {
			if err := os.Rename(backup, live); err != nil {
				return RecoveryNone, fmt.Errorf("failed to complete uninstall: %w", err)
			}
			result = RecoveryRolledForward
		}
	default:
		if !paths.FileExists(live) && paths.FileExists(backup) {
			if err := os.Rename(backup, live); err != nil {
				return RecoveryNone, fmt.Errorf("failed to restore original assembly: %w", err)
			}
			result = RecoveryRolledBack
		}
	}

	if err := RemoveJournal(gameDir); err != nil {
		return result, err
	}

	slog.Info("recovered interrupted transaction", "dir", gameDir, "operation", j.Operation, "result", result.String())
	return result, nil
}
