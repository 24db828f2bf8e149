//go:build !embedded

package embedded

// Stub implementations for normal builds without an embedded payload.

func hasData() bool {
	return false
}

func getData() []byte {
	return nil
}
