package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Game layout, relative to the game directory. These names are what the
// game ships with and must not change.
const (
	DataDir      = "SodaDungeon2_Data"
	ManagedDir   = "Managed"
	AssemblyName = "Assembly-CSharp.dll"
	BackupPrefix = "_BACKUP_"
	JournalName  = "_CAFFEINE_JOURNAL.json"
	GameExe      = "SodaDungeon2.exe"
	GameFolder   = "Soda Dungeon 2"
)

// Managed returns the directory holding the game's managed assemblies
func Managed(gameDir string) string {
	return filepath.Join(gameDir, DataDir, ManagedDir)
}

// Assembly returns the path of the live assembly
func Assembly(gameDir string) string {
	return filepath.Join(Managed(gameDir), AssemblyName)
}

// Backup returns the path of the backup of the original assembly
func Backup(gameDir string) string {
	return filepath.Join(Managed(gameDir), BackupPrefix+AssemblyName)
}

// Journal returns the path of the transaction journal
func Journal(gameDir string) string {
	return filepath.Join(Managed(gameDir), JournalName)
}

// Executable returns the path of the game executable
func Executable(gameDir string) string {
	return filepath.Join(gameDir, GameExe)
}

// CleanLower returns a cleaned, lowercase path for case-insensitive comparison
func CleanLower(p string) string {
	return strings.ToLower(filepath.Clean(p))
}

// FindActual finds the actual case of a file on case-insensitive filesystems.
// Returns targetPath unchanged when nothing matches.
func FindActual(targetPath string) string {
	if _, err := os.Stat(targetPath); err == nil {
		return targetPath
	}

	dir := filepath.Dir(targetPath)
	filename := filepath.Base(targetPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return targetPath
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), filename) {
			return filepath.Join(dir, entry.Name())
		}
	}

	return targetPath
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory
func DirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GameDirFrom maps a folder inside the game layout (the data or managed
// folder) back to the game directory. Other folders are returned cleaned.
func GameDirFrom(dir string) string {
	dir = filepath.Clean(dir)
	if strings.EqualFold(filepath.Base(dir), ManagedDir) &&
		strings.EqualFold(filepath.Base(filepath.Dir(dir)), DataDir) {
		return filepath.Dir(filepath.Dir(dir))
	}
	if strings.EqualFold(filepath.Base(dir), DataDir) {
		return filepath.Dir(dir)
	}
	return dir
}
