//go:build windows

package console

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	user32            = windows.NewLazySystemDLL("user32.dll")
	attachConsole     = kernel32.NewProc("AttachConsole")
	allocConsole      = kernel32.NewProc("AllocConsole")
	setConsoleTitle   = kernel32.NewProc("SetConsoleTitleW")
	getConsoleWindow  = kernel32.NewProc("GetConsoleWindow")
	showWindowProc    = user32.NewProc("ShowWindow")
	setForegroundProc = user32.NewProc("SetForegroundWindow")
)

const (
	attachParentProcess = ^uint32(0) // -1 as uint32
	swShowNormal        = 1
)

func validHandle(h windows.Handle) bool {
	return h != 0 && h != windows.InvalidHandle
}

// Attach tries to attach to or create a console window.
// Returns true if a console is available for output.
func Attach() bool {
	// Check if we already have a console
	if h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE); err == nil && validHandle(h) {
		attached = true
		return true
	}

	// Try to attach to parent console
	attachSuccess, _, _ := attachConsole.Call(uintptr(attachParentProcess))

	wasAllocated := false
	if attachSuccess == 0 {
		// No parent console - create a new one
		allocSuccess, _, _ := allocConsole.Call()
		if allocSuccess == 0 {
			return false
		}
		wasAllocated = true
	}

	// Grab handles to stdout, stderr, stdin
	if h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE); err == nil && validHandle(h) {
		os.Stdout = os.NewFile(uintptr(h), "/dev/stdout")
	}
	if h, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE); err == nil && validHandle(h) {
		os.Stderr = os.NewFile(uintptr(h), "/dev/stderr")
	}
	if h, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && validHandle(h) {
		os.Stdin = os.NewFile(uintptr(h), "/dev/stdin")
	}

	// If we created a new console, bring it to the front
	if wasAllocated {
		if hwnd := GetWindow(); hwnd != 0 {
			showWindowProc.Call(hwnd, swShowNormal)
			setForegroundProc.Call(hwnd)
		}
	}

	attached = true
	return true
}

// SetTitle sets the console window title
func SetTitle(title string) error {
	if !attached {
		return nil
	}

	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}

	r1, _, err := setConsoleTitle.Call(uintptr(unsafe.Pointer(titlePtr)))
	if r1 == 0 {
		return fmt.Errorf("SetConsoleTitle failed: %v", err)
	}
	return nil
}

// GetWindow returns the console window handle (HWND)
func GetWindow() uintptr {
	if err := getConsoleWindow.Find(); err != nil {
		return 0
	}
	hwnd, _, _ := getConsoleWindow.Call()
	return hwnd
}
