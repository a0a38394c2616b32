// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for onedrive-client. It supports a
// four-layer override chain (defaults -> config file -> environment -> CLI
// flags). All keys are flat at the top level of the file.
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
// The embedded sub-structs group related keys for validation and display;
// TOML sees them as a single flat table.
type Config struct {
	AuthConfig
	LoggingConfig
	NetworkConfig
}

// AuthConfig identifies the Azure AD application used for the device-code
// sign-in and the delegated permissions it requests.
type AuthConfig struct {
	ClientID string   `toml:"client_id"`
	TenantID string   `toml:"tenant_id"`
	Scopes   []string `toml:"scopes"`
}

// LoggingConfig controls log verbosity and output format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	Timeout      string `toml:"timeout"`
	UserAgent    string `toml:"user_agent"`
	GraphBaseURL string `toml:"graph_base_url"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to empty".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	ClientID   *string // --client-id flag
	TenantID   *string // --tenant-id flag
}

// Resolved is the effective configuration after all override layers have
// been applied and validated.
type Resolved struct {
	Config

	// ConfigPath is the file that was consulted. It may not exist.
	ConfigPath string

	// HTTPTimeout is the parsed form of Timeout.
	HTTPTimeout time.Duration
}
