package testing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Stand-in assembly contents. Real assemblies are PE files; tests that need
// a product name pair these bytes with ProductByContent.
var (
	OriginalAssembly = []byte("MZ original Assembly-CSharp from the game")
	ModAssembly      = []byte("MZ Caffeine patched Assembly-CSharp")
)

// GameDir describes a fake game installation to create on disk
type GameDir struct {
	// Managed creates SodaDungeon2_Data/Managed
	Managed bool
	// Executable creates SodaDungeon2.exe
	Executable bool
	// Live is written to Assembly-CSharp.dll when non-nil
	Live []byte
	// Backup is written to _BACKUP_Assembly-CSharp.dll when non-nil
	Backup []byte
}

// NewGameDir creates a fake game installation inside a fresh temp directory
// and returns the game directory
func NewGameDir(t *testing.T, layout GameDir) string {
	t.Helper()
	gameDir := filepath.Join(t.TempDir(), "Soda Dungeon 2")
	CreateGameDir(t, gameDir, layout)
	return gameDir
}

// CreateGameDir creates a fake game installation at gameDir
func CreateGameDir(t *testing.T, gameDir string, layout GameDir) {
	t.Helper()

	if err := os.MkdirAll(gameDir, 0755); err != nil {
		t.Fatalf("failed to create game dir: %v", err)
	}

	managed := ManagedDir(gameDir)
	if layout.Managed || layout.Live != nil || layout.Backup != nil {
		if err := os.MkdirAll(managed, 0755); err != nil {
			t.Fatalf("failed to create managed dir: %v", err)
		}
	}

	if layout.Executable {
		WriteFile(t, filepath.Join(gameDir, "SodaDungeon2.exe"), "MZ game")
	}
	if layout.Live != nil {
		WriteBytes(t, LivePath(gameDir), layout.Live)
	}
	if layout.Backup != nil {
		WriteBytes(t, BackupPath(gameDir), layout.Backup)
	}
}

// ManagedDir mirrors the installer layout without importing it
func ManagedDir(gameDir string) string {
	return filepath.Join(gameDir, "SodaDungeon2_Data", "Managed")
}

// LivePath returns the live assembly path of a fake installation
func LivePath(gameDir string) string {
	return filepath.Join(ManagedDir(gameDir), "Assembly-CSharp.dll")
}

// BackupPath returns the backup assembly path of a fake installation
func BackupPath(gameDir string) string {
	return filepath.Join(ManagedDir(gameDir), "_BACKUP_Assembly-CSharp.dll")
}

// ProductByContent returns a product-name probe that reports "Caffeine" for
// files holding ModAssembly and "Soda Dungeon 2" for anything else
func ProductByContent() func(path string) (string, error) {
	return func(path string) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		if bytes.Equal(data, ModAssembly) {
			return "Caffeine", nil
		}
		return "Soda Dungeon 2", nil
	}
}
