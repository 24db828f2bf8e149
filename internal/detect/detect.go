package detect

import (
	"log/slog"

	"github.com/itchio/pelican"
	"github.com/itchio/wharf/eos"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"

	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// ModProductName is the ProductName the mod build stamps into its assembly
const ModProductName = "Caffeine"

// State is the installation state derived from the live assembly
type State int

const (
	NotInstalled State = iota
	Installed
)

func (s State) String() string {
	if s == Installed {
		return "Installed"
	}
	return "Not installed"
}

// Prober reads the ProductName from a file's version resources
type Prober interface {
	ProductName(path string) (string, error)
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(path string) (string, error)

// ProductName calls f
func (f ProberFunc) ProductName(path string) (string, error) {
	return f(path)
}

// PEProber reads version resources from PE files
type PEProber struct{}

// Properties returns every version string of the PE file at path
func (PEProber) Properties(path string) (map[string]string, error) {
	f, err := eos.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening assembly")
	}
	defer f.Close()

	consumer := &state.Consumer{
		OnMessage: func(level, msg string) {
			slog.Debug(msg, "source", "pelican", "level", level, "path", path)
		},
	}

	info, err := pelican.Probe(f, &pelican.ProbeParams{
		Consumer: consumer,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "probing version resources")
	}

	return info.VersionProperties, nil
}

// ProductName returns the ProductName version string of the PE file at path
func (p PEProber) ProductName(path string) (string, error) {
	props, err := p.Properties(path)
	if err != nil {
		return "", err
	}
	name, ok := props["ProductName"]
	if !ok {
		return "", errors.New("no ProductName in version resources")
	}
	return name, nil
}

// Detector classifies a game directory as Installed or NotInstalled
type Detector struct {
	Prober Prober
}

// New returns a Detector reading real PE metadata
func New() *Detector {
	return &Detector{Prober: PEProber{}}
}

// Report is a snapshot of everything the detector looked at
type Report struct {
	GameDir         string
	State           State
	AssemblyPresent bool
	BackupPresent   bool
	JournalPresent  bool
	ProductName     string
	FileVersion     string
}

// State returns Installed only when the live assembly exists and its
// ProductName is exactly ModProductName. Unreadable metadata counts as
// NotInstalled.
func (d *Detector) State(gameDir string) State {
	return d.Inspect(gameDir).State
}

// Inspect reads the live assembly, backup and journal of gameDir. An empty
// gameDir is an unknown location and reports NotInstalled without touching
// the filesystem.
func (d *Detector) Inspect(gameDir string) Report {
	report := Report{
		GameDir: gameDir,
		State:   NotInstalled,
	}
	if gameDir == "" {
		return report
	}
	report.BackupPresent = paths.FileExists(paths.Backup(gameDir))
	report.JournalPresent = paths.FileExists(paths.Journal(gameDir))

	assembly := paths.Assembly(gameDir)
	if !paths.FileExists(assembly) {
		return report
	}
	report.AssemblyPresent = true

	props, err := d.properties(assembly)
	if err != nil {
		slog.Debug("could not read assembly metadata", "path", assembly, "err", err)
		return report
	}
	report.FileVersion = props["FileVersion"]

	name, ok := props["ProductName"]
	if !ok {
		slog.Debug("assembly has no ProductName", "path", assembly)
		return report
	}
	report.ProductName = name

	if name == ModProductName {
		report.State = Installed
	}
	return report
}

// propertiesProber is implemented by probers that read every version string
type propertiesProber interface {
	Properties(path string) (map[string]string, error)
}

func (d *Detector) properties(path string) (map[string]string, error) {
	p := d.prober()
	if pp, ok := p.(propertiesProber); ok {
		return pp.Properties(path)
	}
	name, err := p.ProductName(path)
	if err != nil {
		return nil, err
	}
	return map[string]string{"ProductName": name}, nil
}

func (d *Detector) prober() Prober {
	if d == nil || d.Prober == nil {
		return PEProber{}
	}
	return d.Prober
}
