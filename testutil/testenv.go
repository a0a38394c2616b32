// Package testutil provides shared test environment helpers for
// integration tests.
package testutil

import (
	"os"
	"path/filepath"

	"github.com/chassweeting/onedrive-client/internal/config"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path and
// exports the ones not already set. Missing file is not an error (CI sets
// env vars directly). Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) error {
	vals, err := config.ReadDotEnv(envPath)
	if err != nil {
		return err
	}

	for key, value := range vals {
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
