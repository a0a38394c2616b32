package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
)

// Environment variable names for overrides. The AZURE_* names match the
// ones the Azure SDKs read, so an existing .env keeps working.
const (
	EnvConfig   = "ONEDRIVE_CLIENT_CONFIG"
	EnvClientID = "AZURE_CLIENT_ID"
	EnvTenantID = "AZURE_TENANT_ID"
)

// DotEnvFile is the file in the working directory consulted for the
// identity variables when the process environment lacks them.
const DotEnvFile = ".env"

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // ONEDRIVE_CLIENT_CONFIG: override config file path
	ClientID   string // AZURE_CLIENT_ID: application (client) ID
	TenantID   string // AZURE_TENANT_ID: directory (tenant) ID
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found, falling back to DotEnvFile for the identity keys. The process
// environment is never modified.
func ReadEnvOverrides(logger *slog.Logger) EnvOverrides {
	return readEnvOverrides(os.Getenv, DotEnvFile, logger)
}

func readEnvOverrides(getenv func(string) string, dotEnvPath string, logger *slog.Logger) EnvOverrides {
	if logger == nil {
		logger = slog.Default()
	}

	env := EnvOverrides{
		ConfigPath: getenv(EnvConfig),
		ClientID:   getenv(EnvClientID),
		TenantID:   getenv(EnvTenantID),
	}

	if env.ClientID != "" && env.TenantID != "" {
		return env
	}

	vals, err := ReadDotEnv(dotEnvPath)
	if err != nil {
		logger.Warn("ignoring unreadable dotenv file",
			slog.String("path", dotEnvPath),
			slog.String("error", err.Error()),
		)

		return env
	}

	if v := lookupFold(vals, EnvClientID); env.ClientID == "" && v != "" {
		env.ClientID = v
		logger.Debug("client id read from dotenv file", slog.String("path", dotEnvPath))
	}

	if v := lookupFold(vals, EnvTenantID); env.TenantID == "" && v != "" {
		env.TenantID = v
		logger.Debug("tenant id read from dotenv file", slog.String("path", dotEnvPath))
	}

	return env
}

// lookupFold returns the value for key, matching dotenv keys without
// regard to case. An exact match wins; otherwise the first folded match in
// sorted key order is used.
func lookupFold(vals map[string]string, key string) string {
	if v, ok := vals[key]; ok {
		return v
	}

	for _, k := range slices.Sorted(maps.Keys(vals)) {
		if strings.EqualFold(k, key) {
			return vals[k]
		}
	}

	return ""
}

// ReadDotEnv parses KEY=VALUE pairs from a .env file. Blank lines and
// lines starting with "#" are skipped, an optional "export " prefix is
// accepted, and matching surrounding quotes are stripped from values.
// A missing file returns an empty map and no error.
func ReadDotEnv(path string) (map[string]string, error) {
	vals := make(map[string]string)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return vals, nil
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		vals[key] = unquote(strings.TrimSpace(value))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return vals, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}

	return v
}
