//go:build windows

package locate

import (
	"log/slog"

	"golang.org/x/sys/windows/registry"
)

type registryValue struct {
	root  registry.Key
	path  string
	value string
}

// Steam writes its install root in different places depending on the
// installer version and bitness.
var steamValues = []registryValue{
	{registry.LOCAL_MACHINE, `SOFTWARE\Valve\Steam`, "InstallPath"},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Valve\Steam`, "InstallPath"},
	{registry.CURRENT_USER, `Software\Valve\Steam`, "SteamPath"},
}

// SystemRegistry reads the Steam root from the Windows registry
type SystemRegistry struct{}

// SteamRoot returns the first Steam install path recorded in the registry
func (SystemRegistry) SteamRoot() (string, error) {
	for _, v := range steamValues {
		root, err := readString(v)
		if err != nil {
			slog.Debug("registry lookup failed", "key", v.path, "value", v.value, "err", err)
			continue
		}
		if root != "" {
			return root, nil
		}
	}
	return "", ErrNotFound
}

func readString(v registryValue) (string, error) {
	key, err := registry.OpenKey(v.root, v.path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer key.Close()

	s, _, err := key.GetStringValue(v.value)
	if err != nil {
		return "", err
	}
	return s, nil
}
