//go:build !windows

package prompt

import (
	"github.com/caffeine-mod/sd2-installer/internal/audio"
)

// SelectFolder asks for the game folder on the console
func SelectFolder(defaultPath string, cfg Config) (string, error) {
	if cfg.NonInteractive {
		return defaultPath, nil
	}
	path, err := ReadPath("Soda Dungeon 2 folder", defaultPath, cfg)
	if err != nil {
		return "", err
	}
	cfg.play(audio.Select)
	return path, nil
}
