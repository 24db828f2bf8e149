//go:build embedded

package embedded

import (
	_ "embed"
)

// Embedded mod assembly - populated at build time.
// To build with the mod embedded:
//   1. Place the patched Assembly-CSharp.dll (or a release zip containing
//      it, renamed to Assembly-CSharp.dll) in internal/embedded/payload/
//   2. Run: go build -tags embedded

//go:embed payload/Assembly-CSharp.dll
var payloadData []byte

func hasData() bool {
	return len(payloadData) > 0
}

func getData() []byte {
	return payloadData
}
