package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appDirName       = "translation-tools"
	settingsFileName = "settings.yaml"
	keyFileName      = "settings.key"
)

// Store reads and writes settings as YAML, sealing secrets on the way out.
type Store struct {
	mu          sync.Mutex
	path        string
	sealer      *Sealer
	needsReseal bool
}

func NewStore(path string, sealer *Sealer) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("settings path is required")
	}
	if sealer == nil {
		return nil, fmt.Errorf("settings sealer is required")
	}
	return &Store{path: path, sealer: sealer}, nil
}

// DefaultPaths returns the settings and key file locations under the user config dir.
func DefaultPaths() (settingsPath, keyPath string, err error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("resolve user config dir: %w", err)
	}
	base := filepath.Join(dir, appDirName)
	return filepath.Join(base, settingsFileName), filepath.Join(base, keyFileName), nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields defaults and no error.
// A file that cannot be parsed yields defaults together with the parse error.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := Default()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("read settings %s: %w", s.path, err)
	}

	loaded := Default()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return defaults, fmt.Errorf("parse settings %s: %w", s.path, err)
	}

	legacyFound := false
	for _, field := range loaded.APIKeys.secretFields() {
		plain, legacy, err := s.sealer.Open(*field)
		if err != nil {
			return defaults, fmt.Errorf("open settings secret: %w", err)
		}
		legacyFound = legacyFound || legacy
		*field = plain
	}
	s.needsReseal = legacyFound

	return loaded.normalized(), nil
}

// NeedsReseal reports whether the last Load found secrets in the legacy format.
func (s *Store) NeedsReseal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsReseal
}

// Save writes settings with every secret sealed. The file is created with mode 0600.
func (s *Store) Save(value Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed := value.normalized()
	for _, field := range sealed.APIKeys.secretFields() {
		out, err := s.sealer.Seal(*field)
		if err != nil {
			return fmt.Errorf("seal settings secret: %w", err)
		}
		*field = out
	}

	data, err := yaml.Marshal(sealed)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace settings %s: %w", s.path, err)
	}

	s.needsReseal = false
	return nil
}
