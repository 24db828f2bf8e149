package install

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/caffeine-mod/sd2-installer/internal/detect"
	"github.com/caffeine-mod/sd2-installer/internal/paths"
	testutil "github.com/caffeine-mod/sd2-installer/testing"
)

type bytesPayload []byte

func (b bytesPayload) Load() ([]byte, error) { return b, nil }

type failingPayload struct{ err error }

func (f failingPayload) Load() ([]byte, error) { return nil, f.err }

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestInstaller(payload PayloadSource) *Installer {
	return NewInstaller(Config{
		Payload:  payload,
		Detector: &detect.Detector{Prober: detect.ProberFunc(testutil.ProductByContent())},
		Version:  "test",
		Now:      func() time.Time { return fixedNow },
	})
}

// TestInstall_NoPayload tests that an empty directory without a payload aborts without creating files
func TestInstall_NoPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload PayloadSource
	}{
		{"nil source", nil},
		{"empty payload", bytesPayload(nil)},
		{"load error", failingPayload{err: errors.New("not embedded")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gameDir := testutil.NewGameDir(t, testutil.GameDir{})
			inst := newTestInstaller(tt.payload)

			state, err := inst.Install(gameDir)
			if !errors.Is(err, ErrPayloadMissing) {
				t.Fatalf("Install() error = %v, want ErrPayloadMissing", err)
			}
			if state != detect.NotInstalled {
				t.Errorf("Install() state = %v, want NotInstalled", state)
			}
			testutil.AssertDirEntries(t, gameDir)
		})
	}
}

// TestInstall_Original tests installing over an unmodified game assembly
func TestInstall_Original(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Live: testutil.OriginalAssembly})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	if got := inst.config.Detector.State(gameDir); got != detect.NotInstalled {
		t.Fatalf("initial state = %v, want NotInstalled", got)
	}

	state, err := inst.Install(gameDir)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if state != detect.Installed {
		t.Errorf("Install() state = %v, want Installed", state)
	}

	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.ModAssembly)
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), testutil.OriginalAssembly)
	testutil.AssertFileNotExists(t, paths.Journal(gameDir))
	testutil.AssertDirEntries(t, testutil.ManagedDir(gameDir), paths.AssemblyName, paths.BackupPrefix+paths.AssemblyName)
}

// TestInstall_NoLiveAssembly tests installing into a managed directory without an assembly
func TestInstall_NoLiveAssembly(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Managed: true})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	state, err := inst.Install(gameDir)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if state != detect.Installed {
		t.Errorf("Install() state = %v, want Installed", state)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.ModAssembly)
	testutil.AssertFileNotExists(t, testutil.BackupPath(gameDir))
}

// TestInstall_MissingManagedDir tests the directory-existence precondition
func TestInstall_MissingManagedDir(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Executable: true})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	_, err := inst.Install(gameDir)
	if !errors.Is(err, ErrGameLocationInvalid) {
		t.Fatalf("Install() error = %v, want ErrGameLocationInvalid", err)
	}
	testutil.AssertDirEntries(t, gameDir, paths.GameExe)
}

// TestEmptyGameDir tests that an unknown location fails without touching the
// working directory, even when it holds a game layout
func TestEmptyGameDir(t *testing.T) {
	cwd := t.TempDir()
	testutil.CreateGameDir(t, cwd, testutil.GameDir{
		Live:   testutil.ModAssembly,
		Backup: testutil.OriginalAssembly,
	})
	t.Chdir(cwd)

	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	tests := []struct {
		name    string
		action  func(string) (detect.State, error)
		wantErr error
	}{
		{"install", inst.Install, ErrGameLocationInvalid},
		{"uninstall", inst.Uninstall, ErrGameLocationInvalid},
		{"toggle", inst.Toggle, ErrGameLocationInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := tt.action("")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("%s(\"\") error = %v, want %v", tt.name, err, tt.wantErr)
			}
			if state != detect.NotInstalled {
				t.Errorf("%s(\"\") state = %v, want NotInstalled", tt.name, state)
			}
			testutil.AssertFileBytes(t, testutil.LivePath(cwd), testutil.ModAssembly)
			testutil.AssertFileBytes(t, testutil.BackupPath(cwd), testutil.OriginalAssembly)
			testutil.AssertDirEntries(t, testutil.ManagedDir(cwd), paths.AssemblyName, paths.BackupPrefix+paths.AssemblyName)
		})
	}

	result, err := Recover("")
	if err != nil || result != RecoveryNone {
		t.Errorf("Recover(\"\") = %v, %v, want none", result, err)
	}
}

// TestInstall_StaleBackupReplaced tests that an old backup is replaced by the current original
func TestInstall_StaleBackupReplaced(t *testing.T) {
	updated := []byte("MZ original Assembly-CSharp after a game update")
	gameDir := testutil.NewGameDir(t, testutil.GameDir{
		Live:   updated,
		Backup: testutil.OriginalAssembly,
	})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	if _, err := inst.Install(gameDir); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.ModAssembly)
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), updated)
}

// TestInstall_BackupKeptWithoutLive tests that a backup is never removed when there is no live file to replace it
func TestInstall_BackupKeptWithoutLive(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Backup: testutil.OriginalAssembly})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	if _, err := inst.Install(gameDir); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.ModAssembly)
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), testutil.OriginalAssembly)
}

// TestInstall_InvalidPayloadRollsBack tests that a payload not detected as the mod is undone
func TestInstall_InvalidPayloadRollsBack(t *testing.T) {
	tests := []struct {
		name string
		spec testutil.GameDir
	}{
		{"with original", testutil.GameDir{Live: testutil.OriginalAssembly, Backup: []byte("older original")}},
		{"without original", testutil.GameDir{Managed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gameDir := testutil.NewGameDir(t, tt.spec)
			inst := newTestInstaller(bytesPayload([]byte("MZ some other mod")))

			state, err := inst.Install(gameDir)
			if !errors.Is(err, ErrPayloadInvalid) {
				t.Fatalf("Install() error = %v, want ErrPayloadInvalid", err)
			}
			if state != detect.NotInstalled {
				t.Errorf("Install() state = %v, want NotInstalled", state)
			}

			if tt.spec.Live != nil {
				testutil.AssertFileBytes(t, testutil.LivePath(gameDir), tt.spec.Live)
				testutil.AssertFileNotExists(t, testutil.BackupPath(gameDir))
			} else {
				testutil.AssertFileNotExists(t, testutil.LivePath(gameDir))
			}
			testutil.AssertFileNotExists(t, paths.Journal(gameDir))
		})
	}
}

// TestInstall_AlreadyInstalled tests that a second install is a no-op
func TestInstall_AlreadyInstalled(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{
		Live:   testutil.ModAssembly,
		Backup: testutil.OriginalAssembly,
	})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	state, err := inst.Install(gameDir)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if state != detect.Installed {
		t.Errorf("Install() state = %v, want Installed", state)
	}
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), testutil.OriginalAssembly)
}

// TestInstall_GameRunning tests that nothing is touched while the game runs
func TestInstall_GameRunning(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Live: testutil.OriginalAssembly})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))
	inst.config.IsGameRunning = func(dir string) bool { return dir == gameDir }

	_, err := inst.Install(gameDir)
	if !errors.Is(err, ErrGameRunning) {
		t.Fatalf("Install() error = %v, want ErrGameRunning", err)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.OriginalAssembly)
	testutil.AssertFileNotExists(t, testutil.BackupPath(gameDir))
}

// TestUninstall_RestoresBackup tests uninstalling with a backup present
func TestUninstall_RestoresBackup(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{
		Live:   testutil.ModAssembly,
		Backup: testutil.OriginalAssembly,
	})
	inst := newTestInstaller(nil)

	state, err := inst.Uninstall(gameDir)
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if state != detect.NotInstalled {
		t.Errorf("Uninstall() state = %v, want NotInstalled", state)
	}

	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.OriginalAssembly)
	testutil.AssertFileNotExists(t, testutil.BackupPath(gameDir))
	testutil.AssertFileNotExists(t, paths.Journal(gameDir))
}

// TestUninstall_BackupMissing tests that uninstall without a backup touches nothing
func TestUninstall_BackupMissing(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Live: testutil.ModAssembly})
	inst := newTestInstaller(nil)

	state, err := inst.Uninstall(gameDir)
	if !errors.Is(err, ErrBackupMissing) {
		t.Fatalf("Uninstall() error = %v, want ErrBackupMissing", err)
	}
	if state != detect.Installed {
		t.Errorf("Uninstall() state = %v, want Installed", state)
	}

	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.ModAssembly)
	testutil.AssertDirEntries(t, testutil.ManagedDir(gameDir), paths.AssemblyName)
}

// TestUninstall_NotInstalled tests that uninstalling an unmodded game is a no-op
func TestUninstall_NotInstalled(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{
		Live:   testutil.OriginalAssembly,
		Backup: []byte("older original"),
	})
	inst := newTestInstaller(nil)

	state, err := inst.Uninstall(gameDir)
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if state != detect.NotInstalled {
		t.Errorf("Uninstall() state = %v, want NotInstalled", state)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.OriginalAssembly)
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), []byte("older original"))
}

// TestUninstall_GameRunning tests that uninstall waits for the game to close
func TestUninstall_GameRunning(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{
		Live:   testutil.ModAssembly,
		Backup: testutil.OriginalAssembly,
	})
	inst := newTestInstaller(nil)
	inst.config.IsGameRunning = func(string) bool { return true }

	_, err := inst.Uninstall(gameDir)
	if !errors.Is(err, ErrGameRunning) {
		t.Fatalf("Uninstall() error = %v, want ErrGameRunning", err)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.ModAssembly)
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), testutil.OriginalAssembly)
}

// TestToggle_RoundTrip tests that two toggles restore the original bytes exactly
func TestToggle_RoundTrip(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Live: testutil.OriginalAssembly})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	state, err := inst.Toggle(gameDir)
	if err != nil {
		t.Fatalf("first Toggle() error = %v", err)
	}
	if state != detect.Installed {
		t.Fatalf("first Toggle() state = %v, want Installed", state)
	}

	state, err = inst.Toggle(gameDir)
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if state != detect.NotInstalled {
		t.Fatalf("second Toggle() state = %v, want NotInstalled", state)
	}

	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.OriginalAssembly)
	testutil.AssertDirEntries(t, testutil.ManagedDir(gameDir), paths.AssemblyName)
}

// TestInstall_StaleCallerState tests that repeated calls from a caller that never refreshes do not corrupt files
func TestInstall_StaleCallerState(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Live: testutil.OriginalAssembly})
	inst := newTestInstaller(bytesPayload(testutil.ModAssembly))

	for n := 0; n < 3; n++ {
		if _, err := inst.Install(gameDir); err != nil {
			t.Fatalf("Install() #%d error = %v", n, err)
		}
	}
	testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), testutil.OriginalAssembly)

	for n := 0; n < 3; n++ {
		if _, err := inst.Uninstall(gameDir); err != nil {
			t.Fatalf("Uninstall() #%d error = %v", n, err)
		}
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.OriginalAssembly)
	testutil.AssertFileNotExists(t, testutil.BackupPath(gameDir))
}

// TestJournal_RoundTrip tests saving, loading and removing the journal
func TestJournal_RoundTrip(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Managed: true})

	j, err := LoadJournal(gameDir)
	if err != nil || j != nil {
		t.Fatalf("LoadJournal() on empty dir = %v, %v", j, err)
	}

	want := &Journal{Operation: OpInstall, Started: fixedNow, Installer: "1.2.3"}
	if err := SaveJournal(gameDir, want); err != nil {
		t.Fatalf("SaveJournal() error = %v", err)
	}

	got, err := LoadJournal(gameDir)
	if err != nil {
		t.Fatalf("LoadJournal() error = %v", err)
	}
	if got.Operation != want.Operation || !got.Started.Equal(want.Started) || got.Installer != want.Installer {
		t.Errorf("LoadJournal() = %+v, want %+v", got, want)
	}

	if err := RemoveJournal(gameDir); err != nil {
		t.Fatalf("RemoveJournal() error = %v", err)
	}
	testutil.AssertFileNotExists(t, paths.Journal(gameDir))

	if err := RemoveJournal(gameDir); err != nil {
		t.Errorf("RemoveJournal() twice error = %v", err)
	}
}

// TestRecover tests finishing or undoing interrupted transactions
func TestRecover(t *testing.T) {
	tests := []struct {
		name       string
		spec       testutil.GameDir
		operation  string
		want       Recovery
		wantLive   []byte
		wantBackup []byte
	}{
		{
			name:      "no journal",
			spec:      testutil.GameDir{Live: testutil.OriginalAssembly},
			operation: "",
			want:      RecoveryNone,
			wantLive:  testutil.OriginalAssembly,
		},
		{
			name:       "install interrupted after backup",
			spec:       testutil.GameDir{Backup: testutil.OriginalAssembly},
			operation:  OpInstall,
			want:       RecoveryRolledBack,
			wantLive:   testutil.OriginalAssembly,
			wantBackup: nil,
		},
		{
			name:       "install interrupted after write",
			spec:       testutil.GameDir{Live: testutil.ModAssembly, Backup: testutil.OriginalAssembly},
			operation:  OpInstall,
			want:       RecoveryCleared,
			wantLive:   testutil.ModAssembly,
			wantBackup: testutil.OriginalAssembly,
		},
		{
			name:      "install interrupted before any change",
			spec:      testutil.GameDir{Live: testutil.OriginalAssembly},
			operation: OpInstall,
			want:      RecoveryCleared,
			wantLive:  testutil.OriginalAssembly,
		},
		{
			name:      "uninstall interrupted before rename",
			spec:      testutil.GameDir{Live: testutil.ModAssembly, Backup: testutil.OriginalAssembly},
			operation: OpUninstall,
			want:      RecoveryRolledForward,
			wantLive:  testutil.OriginalAssembly,
		},
		{
			name:      "uninstall interrupted after rename",
			spec:      testutil.GameDir{Live: testutil.OriginalAssembly},
			operation: OpUninstall,
			want:      RecoveryCleared,
			wantLive:  testutil.OriginalAssembly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gameDir := testutil.NewGameDir(t, tt.spec)
			if tt.operation != "" {
				if err := SaveJournal(gameDir, &Journal{Operation: tt.operation, Started: fixedNow}); err != nil {
					t.Fatalf("SaveJournal() error = %v", err)
				}
			}

			got, err := Recover(gameDir)
			if err != nil {
				t.Fatalf("Recover() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Recover() = %v, want %v", got, tt.want)
			}

			testutil.AssertFileBytes(t, testutil.LivePath(gameDir), tt.wantLive)
			if tt.wantBackup != nil {
				testutil.AssertFileBytes(t, testutil.BackupPath(gameDir), tt.wantBackup)
			} else {
				testutil.AssertFileNotExists(t, testutil.BackupPath(gameDir))
			}
			testutil.AssertFileNotExists(t, paths.Journal(gameDir))
		})
	}
}

// TestRecover_CorruptJournal tests that an unreadable journal still restores a missing live file
func TestRecover_CorruptJournal(t *testing.T) {
	gameDir := testutil.NewGameDir(t, testutil.GameDir{Backup: testutil.OriginalAssembly})
	testutil.WriteFile(t, paths.Journal(gameDir), "{not json")

	got, err := Recover(gameDir)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if got != RecoveryRolledBack {
		t.Errorf("Recover() = %v, want RecoveryRolledBack", got)
	}
	testutil.AssertFileBytes(t, testutil.LivePath(gameDir), testutil.OriginalAssembly)
	testutil.AssertFileNotExists(t, paths.Journal(gameDir))
}

// TestDescribe tests the user-facing messages for each error
func TestDescribe(t *testing.T) {
	tests := []struct {
		err       error
		wantTitle string
		wantMsg   string
	}{
		{ErrBackupMissing, "Installation failed!", "Could not find the backup file!"},
		{ErrGameLocationInvalid, "Installation failed!", "Could not find the Game location."},
		{ErrPayloadMissing, "Installation failed!", "mod files"},
		{ErrGameRunning, "Installation failed!", "close the game"},
		{os.ErrPermission, "Something went wrong", "permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			title, msg := Describe(tt.err)
			testutil.AssertEqual(t, title, tt.wantTitle, "title")
			testutil.AssertContains(t, msg, tt.wantMsg, "message")
		})
	}
}
