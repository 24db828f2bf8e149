package locate

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// ErrNotFound is returned by a Registry when the Steam root is not recorded
var ErrNotFound = errors.New("steam installation not found in registry")

// Registry looks up where Steam is installed
type Registry interface {
	SteamRoot() (string, error)
}

// RegistryFunc adapts a function to the Registry interface
type RegistryFunc func() (string, error)

// SteamRoot calls f
func (f RegistryFunc) SteamRoot() (string, error) {
	return f()
}

// GameDirectory returns the Soda Dungeon 2 installation directory.
//
// The game is searched in the Steam root library first, then in every
// additional library listed in libraryfolders.vdf. When the game is found
// nowhere the Steam root itself is returned so the user starts browsing from
// a sensible place. Any lookup failure yields "" (location unknown).
func GameDirectory(reg Registry) string {
	if reg == nil {
		return ""
	}

	root, err := reg.SteamRoot()
	if err != nil || strings.TrimSpace(root) == "" {
		slog.Debug("steam root lookup failed", "err", err)
		return ""
	}
	root = filepath.Clean(root)

	for _, library := range Libraries(root) {
		candidate := GameDirIn(library)
		if paths.FileExists(paths.FindActual(paths.Executable(candidate))) {
			slog.Debug("found game", "dir", candidate)
			return candidate
		}
	}

	slog.Debug("game not found in any steam library, falling back to steam root", "root", root)
	return root
}

// GameDirIn returns where the game would be installed inside a Steam library
func GameDirIn(library string) string {
	return filepath.Join(library, "steamapps", "common", paths.GameFolder)
}

// Libraries returns the Steam root followed by the additional library folders
// recorded in steamapps/libraryfolders.vdf, without duplicates.
func Libraries(root string) []string {
	libraries := []string{root}
	seen := map[string]struct{}{paths.CleanLower(root): {}}

	data, err := os.ReadFile(filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		return libraries
	}

	for _, library := range ParseLibraryFolders(string(data)) {
		key := paths.CleanLower(library)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		libraries = append(libraries, filepath.Clean(library))
	}

	return libraries
}

// ParseLibraryFolders extracts library paths from the contents of a
// libraryfolders.vdf file. Both the current layout ("path" keys inside
// numbered blocks) and the legacy layout ("1" "D:\\SteamLibrary") are read.
func ParseLibraryFolders(content string) []string {
	var libraries []string

	for _, line := range strings.Split(content, "\n") {
		tokens := quotedTokens(line)
		if len(tokens) != 2 {
			continue
		}

		key, value := tokens[0], tokens[1]
		if value == "" {
			continue
		}

		if strings.EqualFold(key, "path") {
			libraries = append(libraries, value)
			continue
		}

		// legacy layout: numeric key with the path as value. Numeric values
		// are app IDs and sizes from the "apps" blocks of the current layout.
		if _, err := strconv.Atoi(key); err != nil {
			continue
		}
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			continue
		}
		libraries = append(libraries, value)
	}

	return libraries
}

// quotedTokens returns the quoted strings of a VDF line with escapes resolved
func quotedTokens(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case inQuotes && r == '\\':
			escaped = true
		case r == '"':
			if inQuotes {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			inQuotes = !inQuotes
		case inQuotes:
			current.WriteRune(r)
		}
	}

	return tokens
}
