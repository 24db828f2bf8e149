// Package payload provides the patched assembly installed by the mod.
package payload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caffeine-mod/sd2-installer/internal/download"
	"github.com/caffeine-mod/sd2-installer/internal/embedded"
	"github.com/caffeine-mod/sd2-installer/internal/github"
	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

// ErrMissing is returned when a source has no payload to offer
var ErrMissing = errors.New("payload not found")

// Source loads the mod assembly bytes
type Source interface {
	Load() ([]byte, error)
	String() string
}

// Embedded loads the payload compiled into the installer
type Embedded struct{}

func (Embedded) Load() ([]byte, error) {
	if !embedded.HasData() {
		return nil, ErrMissing
	}
	return embedded.Payload()
}

func (Embedded) String() string { return "embedded" }

// File loads the payload from a local file. Release zips are unpacked.
type File struct {
	Path string
}

func (f File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, f.Path)
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return embedded.Unpack(data)
}

func (f File) String() string { return f.Path }

// URL downloads the payload. Release zips are unpacked.
type URL struct {
	URL      string
	Context  context.Context
	Progress download.ProgressCallback
}

func (u URL) Load() ([]byte, error) {
	ctx := u.Context
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := download.Bytes(ctx, u.URL, u.Progress)
	if err != nil {
		return nil, err
	}
	return embedded.Unpack(data)
}

func (u URL) String() string { return u.URL }

// Release downloads the payload attached to a GitHub release
type Release struct {
	// Repo is "owner/repo"
	Repo string
	// Tag selects a release; empty means the latest
	Tag string
	// APIBaseURL overrides the GitHub API root
	APIBaseURL string
	Context    context.Context
	Progress   download.ProgressCallback
}

func (r Release) Load() ([]byte, error) {
	owner, repo, err := github.ParseRepo(r.Repo)
	if err != nil {
		return nil, err
	}
	client := github.NewClient(owner, repo, nil)
	if r.APIBaseURL != "" {
		client.SetBaseURL(r.APIBaseURL)
	}

	var release *github.Release
	if r.Tag != "" {
		release, err = client.ReleaseByTag(r.Tag)
	} else {
		release, err = client.LatestRelease()
	}
	if err != nil {
		return nil, err
	}

	asset, ok := release.FindAsset(
		func(name string) bool { return strings.EqualFold(name, paths.AssemblyName) },
		func(name string) bool { return strings.HasSuffix(strings.ToLower(name), ".zip") },
	)
	if !ok {
		return nil, fmt.Errorf("%w: release %s has no %s or zip asset", ErrMissing, release.TagName, paths.AssemblyName)
	}

	slog.Info("downloading release", "repo", r.Repo, "tag", release.TagName, "asset", asset.Name)
	return URL{URL: asset.BrowserDownloadURL, Context: r.Context, Progress: r.Progress}.Load()
}

func (r Release) String() string {
	if r.Tag != "" {
		return r.Repo + "@" + r.Tag
	}
	return r.Repo
}

// Options selects where the payload comes from
type Options struct {
	// File is an explicit payload path
	File string
	// URL is a download location
	URL string
	// Repo is a GitHub "owner/repo", optionally "owner/repo@tag", whose
	// release carries the payload
	Repo string
	// BaseDir is searched for a payload shipped next to the installer
	BaseDir  string
	Context  context.Context
	Progress download.ProgressCallback
}

// Resolve picks the payload source: an explicit file, then a URL, then a
// GitHub release, then the embedded payload, then an assembly next to the
// installer. Returns nil when none is available.
func Resolve(opts Options) Source {
	switch {
	case opts.File != "":
		return File{Path: opts.File}
	case opts.URL != "":
		return URL{URL: opts.URL, Context: opts.Context, Progress: opts.Progress}
	case opts.Repo != "":
		repo, tag, _ := strings.Cut(opts.Repo, "@")
		return Release{Repo: repo, Tag: tag, Context: opts.Context, Progress: opts.Progress}
	case embedded.HasData():
		return Embedded{}
	}

	if opts.BaseDir != "" {
		local := paths.FindActual(filepath.Join(opts.BaseDir, paths.AssemblyName))
		if paths.FileExists(local) {
			return File{Path: local}
		}
	}
	return nil
}
