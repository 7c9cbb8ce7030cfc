// Package config holds the persisted settings (organization, working
// directory, token) and the per-invocation runtime options.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

const appName = "cohort"

// ErrNotConfigured is returned by Load when no config file exists yet.
var ErrNotConfigured = errors.New("not configured; run 'cohort configure'")

// Settings is the persisted configuration, loaded once at process start and
// treated as immutable for the rest of the invocation.
//
// The JSON field names match the original config file layout so an existing
// config.json keeps working.
type Settings struct {
	Organization string `json:"org_name"`
	WorkingDir   string `json:"working_dir"`
	Token        string `json:"github_token"`
}

func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Organization) == "" {
		return errors.New("organization name must not be empty")
	}
	if strings.TrimSpace(s.WorkingDir) == "" {
		return errors.New("working directory must not be empty")
	}
	return nil
}

// WorkingPath expands and creates the working directory, returning its
// absolute path.
func (s *Settings) WorkingPath() (string, error) {
	path, err := expandHome(s.WorkingDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("working directory %s: %w", path, err)
	}
	return path, nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// Path returns the config file location, creating parent directories as
// needed.
func Path() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, "config.json"))
}

// Load reads the persisted settings. Returns ErrNotConfigured (wrapped) when
// the file does not exist.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotConfigured)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &s, nil
}

// Save persists the settings at the default location.
func Save(s *Settings) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, SaveTo(path, s)
}

func SaveTo(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	// The file carries a token; keep it owner-readable only.
	if err := os.WriteFile(path, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Runtime holds the per-invocation knobs supplied via flags.
type Runtime struct {
	// Concurrency bounds in-flight target operations. Must be >= 1.
	Concurrency int

	// Timeout bounds the whole batch. Must be > 0.
	Timeout time.Duration

	// Verbose enables per-request API diagnostics on stderr.
	Verbose bool
}

func DefaultRuntime() Runtime {
	return Runtime{
		// Operations are I/O- and process-bound, so the CPU count is a
		// conservative default rather than a ceiling that matters.
		Concurrency: runtime.NumCPU(),
		Timeout:     30 * time.Minute,
	}
}

func (r Runtime) Validate() error {
	if r.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if r.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}
	return nil
}
