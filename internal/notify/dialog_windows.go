//go:build windows

package notify

import (
	"golang.org/x/sys/windows"
)

func showDialog(owner uintptr, title, message string, kind icon) error {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return err
	}

	flags := uint32(windows.MB_OK | windows.MB_SETFOREGROUND)
	if kind == iconError {
		flags |= windows.MB_ICONERROR
	} else {
		flags |= windows.MB_ICONINFORMATION
	}

	if _, err := windows.MessageBox(windows.HWND(owner), messagePtr, titlePtr, flags); err != nil {
		return err
	}
	return nil
}
