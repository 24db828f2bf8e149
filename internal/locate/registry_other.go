//go:build !windows

package locate

// SystemRegistry has nothing to read outside Windows
type SystemRegistry struct{}

// SteamRoot always reports ErrNotFound
func (SystemRegistry) SteamRoot() (string, error) {
	return "", ErrNotFound
}
