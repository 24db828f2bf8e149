package install

import (
	"errors"
)

var (
	// ErrBackupMissing is returned when uninstalling without a backup of the original assembly
	ErrBackupMissing = errors.New("backup file not found")
	// ErrGameLocationInvalid is returned when the managed directory does not exist
	ErrGameLocationInvalid = errors.New("game location not found")
	// ErrPayloadMissing is returned when no mod payload is available
	ErrPayloadMissing = errors.New("mod payload not available")
	// ErrPayloadInvalid is returned when the written payload is not detected as the mod
	ErrPayloadInvalid = errors.New("mod payload is not the Caffeine assembly")
	// ErrGameRunning is returned when the game holds the assembly open
	ErrGameRunning = errors.New("game is running")
)

const failedTitle = "Installation failed!"

// Describe returns the title and message shown to the user for err
func Describe(err error) (title, message string) {
	switch {
	case errors.Is(err, ErrBackupMissing):
		return failedTitle, "Could not find the backup file!"
	case errors.Is(err, ErrGameLocationInvalid):
		return failedTitle, "Could not find the Game location.\nPlease check the installation path."
	case errors.Is(err, ErrPayloadMissing):
		return failedTitle, "Could not find the mod files.\nPlease download the installer again."
	case errors.Is(err, ErrPayloadInvalid):
		return failedTitle, "The mod files are not a Caffeine build.\nYour original game files were restored."
	case errors.Is(err, ErrGameRunning):
		return failedTitle, "Soda Dungeon 2 is running.\nPlease close the game and try again."
	default:
		return "Something went wrong", err.Error()
	}
}
