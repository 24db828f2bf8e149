package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caffeine-mod/sd2-installer/internal/detect"
	"github.com/caffeine-mod/sd2-installer/internal/install"
	"github.com/caffeine-mod/sd2-installer/internal/locate"
	"github.com/caffeine-mod/sd2-installer/internal/payload"
	testutil "github.com/caffeine-mod/sd2-installer/testing"
)

// TestEnvironment is a fake Steam installation with a payload server
type TestEnvironment struct {
	T         *testing.T
	SteamRoot string
	Server    *testutil.MockPayloadServer
	Detector  *detect.Detector
}

// SetupTestEnvironment creates a Steam root and a payload server serving the mod
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{
		T:         t,
		SteamRoot: filepath.Join(t.TempDir(), "Steam"),
		Server:    testutil.NewMockPayloadServer(t),
		Detector:  &detect.Detector{Prober: detect.ProberFunc(testutil.ProductByContent())},
	}
	if err := os.MkdirAll(filepath.Join(env.SteamRoot, "steamapps"), 0755); err != nil {
		t.Fatalf("failed to create steam root: %v", err)
	}
	env.Server.SetFile("/caffeine/Assembly-CSharp.dll", testutil.ModAssembly)
	return env
}

// Registry reports the fake Steam root
func (e *TestEnvironment) Registry() locate.Registry {
	return locate.RegistryFunc(func() (string, error) { return e.SteamRoot, nil })
}

// AddLibraries writes libraryfolders.vdf listing the given libraries
func (e *TestEnvironment) AddLibraries(libraries ...string) {
	e.T.Helper()
	var b strings.Builder
	b.WriteString("\"libraryfolders\"\n{\n")
	for i, lib := range append([]string{e.SteamRoot}, libraries...) {
		escaped := strings.ReplaceAll(lib, `\`, `\\`)
		fmt.Fprintf(&b, "\t\"%d\"\n\t{\n\t\t\"path\"\t\t\"%s\"\n\t\t\"apps\"\n\t\t{\n\t\t\t\"1\"\t\t\"100\"\n\t\t}\n\t}\n", i, escaped)
	}
	b.WriteString("}\n")
	testutil.WriteFile(e.T, filepath.Join(e.SteamRoot, "steamapps", "libraryfolders.vdf"), b.String())
}

// InstallGame creates the game inside library and returns its directory
func (e *TestEnvironment) InstallGame(library string, layout testutil.GameDir) string {
	e.T.Helper()
	layout.Executable = true
	gameDir := locate.GameDirIn(library)
	testutil.CreateGameDir(e.T, gameDir, layout)
	return gameDir
}

// Installer returns an installer downloading the mod from the payload server
func (e *TestEnvironment) Installer() *install.Installer {
	return install.NewInstaller(install.Config{
		Payload:  payload.URL{URL: e.Server.FileURL("/caffeine/Assembly-CSharp.dll")},
		Detector: e.Detector,
		Version:  "integration",
	})
}
