package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// FileName is the default configuration file name.
const FileName = "config.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	settings domain.Settings
}

// NewConfigStore creates a TOML-based config store reading filePath.
// If filePath is empty, defaults to ~/.sercha-harvest/config.toml.
// A missing file yields the default settings.
func NewConfigStore(filePath string) (*ConfigStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(home, ".sercha-harvest", FileName)
	}

	s := &ConfigStore{
		filePath: filePath,
		settings: domain.DefaultSettings(),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Settings returns a copy of the current settings.
func (s *ConfigStore) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.settings
	out.Runs = append([]domain.RunConfig(nil), s.settings.Runs...)
	return out
}

// Update validates and persists new settings.
func (s *ConfigStore) Update(settings domain.Settings) error {
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(settings); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save(settings domain.Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file. Keys absent from the file
// keep their default values; an absent runs list means the default runs.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file yet - that's fine, use defaults
			s.settings = domain.DefaultSettings()
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	loaded := domain.DefaultSettings()
	loaded.Runs = nil
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	loaded.ApplyDefaults()

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("%s: %w", s.filePath, err)
	}

	s.settings = loaded
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
