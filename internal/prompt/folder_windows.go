//go:build windows

package prompt

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/caffeine-mod/sd2-installer/internal/audio"
)

// bifReturnOnlyFSDirs | bifEditBox | bifNewDialogStyle
const browseFlags = 0x0001 | 0x0010 | 0x0040

// SelectFolder opens a folder selection dialog
func SelectFolder(defaultPath string, cfg Config) (string, error) {
	if cfg.NonInteractive {
		return defaultPath, nil
	}

	consoleHandle := uintptr(0)
	if cfg.GetConsoleWindow != nil {
		consoleHandle = cfg.GetConsoleWindow()
	}

	ole.CoInitialize(0)
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("Shell.Application")
	if err != nil {
		return "", fmt.Errorf("failed to create Shell object: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return "", fmt.Errorf("failed to get IDispatch interface: %w", err)
	}
	defer shell.Release()

	args := []interface{}{int(consoleHandle), "Select the Soda Dungeon 2 folder", browseFlags}
	if defaultPath != "" {
		args = append(args, defaultPath)
	}

	folderObj, err := oleutil.CallMethod(shell, "BrowseForFolder", args...)
	if err != nil {
		return "", fmt.Errorf("failed to show folder dialog: %w", err)
	}

	if folderObj.Value() == nil {
		return "", ErrCancelled
	}

	folderItem := folderObj.ToIDispatch()
	if folderItem == nil {
		return "", ErrCancelled
	}
	defer folderItem.Release()

	selfProp, err := oleutil.GetProperty(folderItem, "Self")
	if err != nil {
		return "", fmt.Errorf("failed to get folder item: %w", err)
	}

	selfDispatch := selfProp.ToIDispatch()
	defer selfDispatch.Release()

	pathProp, err := oleutil.GetProperty(selfDispatch, "Path")
	if err != nil {
		return "", fmt.Errorf("failed to get folder path: %w", err)
	}

	selectedPath := pathProp.ToString()
	if selectedPath == "" {
		return "", ErrCancelled
	}

	cfg.play(audio.Select)
	return selectedPath, nil
}
