package extension

import "github.com/xraph/correlate"

// Config holds configuration for the Correlate Forge extension.
type Config struct {
	// DisableMigrate disables auto-migration on start.
	DisableMigrate bool `default:"false" json:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `default:"false" json:"require_config"`

	// Database is the name of the *bun.DB to resolve from the DI
	// container. Empty means the default (unnamed) database.
	Database string `json:"database"`

	// Redis is the name of the redis client to resolve from the DI
	// container. Empty means the default (unnamed) client.
	Redis string `json:"redis"`

	// Correlate holds the core registry configuration.
	Correlate correlate.Config `json:"correlate"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Correlate: correlate.DefaultConfig(),
	}
}
