package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caffeine-mod/sd2-installer/internal/audio"
	"github.com/caffeine-mod/sd2-installer/internal/config"
	"github.com/caffeine-mod/sd2-installer/internal/console"
	"github.com/caffeine-mod/sd2-installer/internal/detect"
	"github.com/caffeine-mod/sd2-installer/internal/download"
	"github.com/caffeine-mod/sd2-installer/internal/install"
	"github.com/caffeine-mod/sd2-installer/internal/locate"
	"github.com/caffeine-mod/sd2-installer/internal/logging"
	"github.com/caffeine-mod/sd2-installer/internal/notify"
	"github.com/caffeine-mod/sd2-installer/internal/payload"
	"github.com/caffeine-mod/sd2-installer/internal/process"
	"github.com/caffeine-mod/sd2-installer/internal/prompt"
)

const installerVersion = "1.0.0"

// Command-line flags
var (
	gameDirFlag        string
	payloadFlag        string
	payloadURLFlag     string
	payloadRepoFlag    string
	configFlag         string
	quietFlag          bool
	verboseFlag        bool
	nonInteractiveFlag bool
	noSoundFlag        bool
)

// errReported marks a failure the user has already been told about
var errReported = errors.New("failed")

// session holds everything a command needs. Built once per run by setup.
type session struct {
	cfg        *config.Config
	configPath string
	gameDir    string
	detector   *detect.Detector
	installer  *install.Installer
	notifier   notify.Notifier
	prompt     prompt.Config
	closeLog   func() error

	bar       download.ProgressCallback
	finishBar func()
}

var sess *session

func main() {
	// Global panic handler to prevent path leakage in error messages
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nOops, something broke: %v\n", r)
			fmt.Fprintln(os.Stderr, "Let the developers know what happened.")
			audio.StopAll()
			audio.Play(audio.Error)
			os.Exit(1)
		}
	}()

	// Configure log package to not include file paths
	log.SetFlags(0)

	err := rootCmd.Execute()
	// Cut off any cue still playing from the menu
	audio.StopAll()
	if sess != nil {
		_ = sess.closeLog()
	}
	if err != nil {
		os.Exit(1)
	}
}

func setup(autoRecover bool) (*session, error) {
	configPath := configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	closeLog, err := logging.Setup(logging.Options{
		Verbose:   verboseFlag,
		Quiet:     quietFlag,
		File:      cfg.LogFile,
		FileLevel: cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}

	console.Init(quietFlag, verboseFlag)
	audio.Init(quietFlag || noSoundFlag || !cfg.Sounds, verboseFlag, console.Verbose)

	interactive := !nonInteractiveFlag
	if interactive {
		console.Attach()
		_ = console.SetTitle("Caffeine Installer")
	}

	sound := audio.Player{}
	s := &session{
		cfg:        cfg,
		configPath: configPath,
		detector:   detect.New(),
		notifier:   notify.New(interactive, sound, console.GetWindow),
		prompt: prompt.Config{
			NonInteractive:   nonInteractiveFlag,
			Sound:            sound,
			GetConsoleWindow: console.GetWindow,
		},
		closeLog: closeLog,
	}

	s.installer = install.NewInstaller(install.Config{
		Payload:       s.payloadSource(),
		Detector:      s.detector,
		IsGameRunning: process.IsGameRunningInDir,
		Version:       installerVersion,
	})

	s.gameDir = s.resolveGameDir()
	if autoRecover {
		s.recoverJournal()
	}
	return s, nil
}

// menuAvailable reports whether the interactive menu can run. It needs
// prompts enabled and a console to read from.
func menuAvailable() bool {
	return !nonInteractiveFlag && console.IsAttached()
}

// resolveGameDir picks the game directory: flag, then config, then Steam
func (s *session) resolveGameDir() string {
	switch {
	case gameDirFlag != "":
		return filepath.Clean(gameDirFlag)
	case s.cfg.GameDir != "":
		return filepath.Clean(s.cfg.GameDir)
	}

	dir := locate.GameDirectory(locate.SystemRegistry{})
	if dir == "" {
		slog.Warn("could not locate Steam")
	}
	return dir
}

func (s *session) payloadSource() install.PayloadSource {
	file, url, repo := payloadFlag, payloadURLFlag, payloadRepoFlag
	if file == "" && url == "" && repo == "" {
		file, url, repo = s.cfg.PayloadFile, s.cfg.PayloadURL, s.cfg.PayloadRepo
	}

	var progress download.ProgressCallback
	if !quietFlag && !nonInteractiveFlag {
		progress = s.downloadProgress
	}

	baseDir := ""
	if exe, err := os.Executable(); err == nil {
		baseDir = filepath.Dir(exe)
	}

	src := payload.Resolve(payload.Options{
		File:     file,
		URL:      url,
		Repo:     repo,
		BaseDir:  baseDir,
		Context:  context.Background(),
		Progress: progress,
	})
	if src == nil {
		return nil
	}
	slog.Debug("payload source", "source", src.String())
	return src
}

func (s *session) downloadProgress(done, total int64, pct int) {
	// One bar per download, created on the first callback
	if pct == 0 || s.bar == nil {
		s.bar, s.finishBar = download.Bar(os.Stdout, "Downloading Caffeine")
	}
	s.bar(done, total, pct)
	if pct == 100 {
		s.finishBar()
		s.bar = nil
	}
}

// recoverJournal finishes a transaction a previous run left behind
func (s *session) recoverJournal() {
	if s.gameDir == "" {
		return
	}
	result, err := s.recoverGameDir()
	if err == nil && result != install.RecoveryNone {
		s.notifier.Info("Caffeine", "The previous run was interrupted and has been repaired: "+result.String()+".")
	}
}

// recoverGameDir runs journal recovery on the game folder. A failure is
// logged and shown to the user, then returned as errReported.
func (s *session) recoverGameDir() (install.Recovery, error) {
	result, err := install.Recover(s.gameDir)
	if err != nil {
		slog.Error("recovery failed", "dir", s.gameDir, "err", err)
		s.notifier.Error("Recovery failed", err.Error())
		return result, errReported
	}
	return result, nil
}

// saveGameDir remembers a folder the user picked
func (s *session) saveGameDir(dir string) {
	s.gameDir = dir
	s.cfg.GameDir = dir
	if err := config.Save(s.configPath, s.cfg); err != nil {
		slog.Warn("could not save game folder", "err", err)
	}
}

// run performs one transaction and reports the result.
// Returns errReported on failure.
func (s *session) run(action func(string) (detect.State, error), verb string) error {
	start := time.Now()
	state, err := action(s.gameDir)
	if err != nil {
		slog.Error(verb+" failed", "dir", s.gameDir, "err", err)
		title, message := install.Describe(err)
		s.notifier.Error(title, message)
		return errReported
	}

	slog.Debug(verb+" finished", "state", state.String(), "took", time.Since(start))
	console.Log("Status: %s", console.Status(state == detect.Installed, state.String()))
	audio.Play(audio.Success)
	return nil
}
