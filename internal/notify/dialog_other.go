//go:build !windows

package notify

func showDialog(owner uintptr, title, message string, kind icon) error {
	return errNoDialog
}
