package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dchest/safefile"
	"gopkg.in/yaml.v3"

	"github.com/caffeine-mod/sd2-installer/internal/github"
)

// FileName is the config file looked up next to the installer
const FileName = "caffeine.yaml"

// Config holds the optional installer settings
type Config struct {
	// GameDir overrides the Steam lookup
	GameDir     string `yaml:"gameDir,omitempty"`
	PayloadURL  string `yaml:"payloadURL,omitempty"`
	PayloadFile string `yaml:"payloadFile,omitempty"`
	// PayloadRepo is a GitHub "owner/repo" publishing the mod, with an
	// optional "@tag"; the latest release is used otherwise
	PayloadRepo string `yaml:"payloadRepo,omitempty"`
	Sounds      bool   `yaml:"sounds"`
	LogFile     string `yaml:"logFile,omitempty"`
	LogLevel    string `yaml:"logLevel,omitempty"`
}

// Default returns the settings used when no config file exists
func Default() *Config {
	return &Config{
		Sounds:   true,
		LogLevel: "info",
	}
}

// DefaultPath returns the config path next to the running executable
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Relative paths are relative to the config file
	base := filepath.Dir(path)
	cfg.PayloadFile = resolve(base, cfg.PayloadFile)
	cfg.LogFile = resolve(base, cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks the settings for values the installer cannot use
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logLevel %q", c.LogLevel)
	}

	if c.PayloadURL != "" {
		u, err := url.Parse(c.PayloadURL)
		if err != nil {
			return fmt.Errorf("bad payloadURL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("payloadURL must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("payloadURL has no host")
		}
	}

	if c.PayloadRepo != "" {
		repo, _, _ := strings.Cut(c.PayloadRepo, "@")
		if _, _, err := github.ParseRepo(repo); err != nil {
			return fmt.Errorf("bad payloadRepo: %w", err)
		}
	}

	sources := 0
	for _, s := range []string{c.PayloadURL, c.PayloadFile, c.PayloadRepo} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return errors.New("set only one of payloadURL, payloadFile or payloadRepo")
	}
	return nil
}

// Save atomically writes the config to path
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := safefile.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
