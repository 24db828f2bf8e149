package embedded

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// HasData returns true if an embedded mod payload is available.
// This is false for normal builds and true for builds with -tags embedded.
func HasData() bool {
	return hasData()
}

// Payload returns the embedded mod assembly. Release archives are unpacked.
func Payload() ([]byte, error) {
	data := getData()
	if len(data) == 0 {
		return nil, fmt.Errorf("no embedded payload")
	}
	return Unpack(data)
}

// Unpack returns data unchanged unless it is a zip archive, in which case
// it returns the assembly stored inside it
func Unpack(data []byte) ([]byte, error) {
	if !IsZip(data) {
		return data, nil
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open payload archive: %w", err)
	}

	f := findAssembly(reader)
	if f == nil {
		return nil, fmt.Errorf("payload archive has no %s", paths.AssemblyName)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out, nil
}

// IsZip reports whether data starts with a zip local file header
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// findAssembly picks the assembly entry closest to the archive root.
// Release zips may wrap everything in a top-level folder
// ("Caffeine-1.2/Assembly-CSharp.dll") or mirror the game layout.
func findAssembly(reader *zip.Reader) *zip.File {
	var best *zip.File
	bestDepth := -1
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if !strings.EqualFold(path.Base(name), paths.AssemblyName) {
			continue
		}
		depth := strings.Count(name, "/")
		if best == nil || depth < bestDepth {
			best, bestDepth = f, depth
		}
	}
	return best
}
