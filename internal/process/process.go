package process

import (
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// ListExecutables returns the executable paths of running processes named
// name. It is a variable so tests can replace the process table.
var ListExecutables = wmicExecutables

func wmicExecutables(name string) ([]string, error) {
	// Use WMIC to get all running processes with their full paths
	cmd := exec.Command("wmic", "process", "where", "name='"+name+"'", "get", "ExecutablePath", "/format:list")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return parseExecutablePaths(string(output)), nil
}

// parseExecutablePaths reads "ExecutablePath=C:\path\to\game.exe" lines
func parseExecutablePaths(output string) []string {
	var result []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "ExecutablePath=") {
			continue
		}
		if p := strings.TrimPrefix(line, "ExecutablePath="); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// IsGameRunningInDir checks if the game executable is running from gameDir
func IsGameRunningInDir(gameDir string) bool {
	if gameDir == "" {
		return false
	}
	expectedPath := paths.CleanLower(filepath.Join(gameDir, paths.GameExe))

	running, err := ListExecutables(paths.GameExe)
	if err != nil {
		// If the process table can't be read, assume the game is not running
		slog.Debug("could not list processes", "err", err)
		return false
	}

	for _, p := range running {
		if paths.CleanLower(p) == expectedPath {
			return true
		}
	}
	return false
}

// WaitForExit polls until the game is no longer running from gameDir.
// Returns true if it exited, false if timeout occurred.
func WaitForExit(gameDir string, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsGameRunningInDir(gameDir) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
