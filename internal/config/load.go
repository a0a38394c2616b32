package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal errors with "did you mean?"
// suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. Users can start with
// nothing but AZURE_CLIENT_ID in the environment.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags. The result
// is validated as a whole, including the keys that may only be supplied by
// a later layer (client_id).
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Resolved, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Resolve config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists)
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("config file loaded", slog.String("path", cfgPath))

	// 3. Apply env overrides
	if env.ClientID != "" {
		cfg.ClientID = env.ClientID
	}

	if env.TenantID != "" {
		cfg.TenantID = env.TenantID
	}

	// 4. Apply CLI overrides (pointer fields: nil = not specified)
	if cli.ClientID != nil {
		cfg.ClientID = *cli.ClientID
	}

	if cli.TenantID != nil {
		cfg.TenantID = *cli.TenantID
	}

	// 5. Validate the final merged result
	if err := ValidateResolved(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	// Validate already rejected unparseable durations.
	timeout, _ := time.ParseDuration(cfg.Timeout)

	logger.Debug("config resolved",
		slog.String("path", cfgPath),
		slog.String("tenant_id", cfg.TenantID),
		slog.Int("scopes", len(cfg.Scopes)),
		slog.Duration("timeout", timeout),
	)

	return &Resolved{
		Config:      *cfg,
		ConfigPath:  cfgPath,
		HTTPTimeout: timeout,
	}, nil
}
