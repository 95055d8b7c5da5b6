package driven

import "github.com/custodia-labs/sercha-harvest/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and defaults.
type ConfigStore interface {
	// Settings returns a copy of the current settings.
	Settings() domain.Settings

	// Update replaces the settings and persists them immediately.
	Update(settings domain.Settings) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
