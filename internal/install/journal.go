package install

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dchest/safefile"

	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// Operation names recorded in the journal
const (
	OpInstall   = "install"
	OpUninstall = "uninstall"
)

// Journal marks a transaction in flight. It is written before the first
// file is touched and removed after the last one, so finding it on launch
// means the previous run was interrupted.
type Journal struct {
	Operation string    `json:"operation"`
	Started   time.Time `json:"started"`
	Installer string    `json:"installer,omitempty"`
}

// LoadJournal reads the journal of gameDir. Returns nil, nil when there is none.
func LoadJournal(gameDir string) (*Journal, error) {
	data, err := os.ReadFile(paths.Journal(gameDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse journal: %w", err)
	}
	return &j, nil
}

// SaveJournal atomically writes the journal of gameDir
func SaveJournal(gameDir string, j *Journal) error {
	f, err := safefile.Create(paths.Journal(gameDir), 0644)
	if err != nil {
		return fmt.Errorf("failed to create journal: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(j); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}

	if err := f.Commit(); err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	return nil
}

// RemoveJournal deletes the journal of gameDir if present
func RemoveJournal(gameDir string) error {
	err := os.Remove(paths.Journal(gameDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove journal: %w", err)
	}
	return nil
}
