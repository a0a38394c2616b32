package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Validation range constants.
const (
	minTimeout = 1 * time.Second
	maxTimeout = 10 * time.Minute
)

// ErrMissingIdentity is returned by ValidateResolved when client_id or
// tenant_id is still empty after every override layer.
var ErrMissingIdentity = errors.New("required")

// Recognized log_level and log_format values.
var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"auto": true, "text": true, "json": true}
)

// Validate checks all configuration values read from the file and returns
// every error found, joined. Identity keys may be empty at this layer
// because the environment can still supply them; ValidateResolved enforces
// their presence.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateAuth(&cfg.AuthConfig)...)
	errs = append(errs, validateLogging(&cfg.LoggingConfig)...)
	errs = append(errs, validateNetwork(&cfg.NetworkConfig)...)

	return errors.Join(errs...)
}

// ValidateResolved checks the fully merged configuration. Unlike Validate(),
// which checks raw config file values, this runs after the override chain
// (defaults -> file -> env -> CLI) and requires the identity keys.
func ValidateResolved(cfg *Config) error {
	var errs []error

	if cfg.ClientID == "" {
		errs = append(errs, fmt.Errorf("client_id: %w (set it in the config file, AZURE_CLIENT_ID, or --client-id)", ErrMissingIdentity))
	}

	if cfg.TenantID == "" {
		errs = append(errs, fmt.Errorf("tenant_id: %w (set it in the config file, AZURE_TENANT_ID, or --tenant-id)", ErrMissingIdentity))
	}

	if err := Validate(cfg); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateAuth(a *AuthConfig) []error {
	var errs []error

	if err := validateIdentifier("client_id", a.ClientID); err != nil {
		errs = append(errs, err)
	}

	if err := validateIdentifier("tenant_id", a.TenantID); err != nil {
		errs = append(errs, err)
	}

	if len(a.Scopes) == 0 {
		errs = append(errs, errors.New("scopes: must list at least one scope"))
	}

	for i, s := range a.Scopes {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Errorf("scopes[%d]: must not be empty", i))
		}
	}

	return errs
}

// validateIdentifier rejects values that would corrupt the authority URL.
// Empty is accepted here; presence is a resolved-config concern.
func validateIdentifier(key, value string) error {
	if value == "" {
		return nil
	}

	if strings.ContainsAny(value, " \t\r\n/") {
		return fmt.Errorf("%s: must not contain whitespace or '/', got %q", key, value)
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", l.LogLevel))
	}

	if !validLogFormats[l.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format: must be one of auto, text, json; got %q", l.LogFormat))
	}

	return errs
}

func validateNetwork(n *NetworkConfig) []error {
	var errs []error

	if err := validateDuration("timeout", n.Timeout, minTimeout, maxTimeout); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(n.UserAgent) == "" {
		errs = append(errs, errors.New("user_agent: must not be empty"))
	}

	if err := validateBaseURL(n.GraphBaseURL); err != nil {
		errs = append(errs, err)
	}

	return errs
}

func validateDuration(key, value string, minVal, maxVal time.Duration) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}

	if d < minVal || d > maxVal {
		return fmt.Errorf("%s: must be between %s and %s, got %s", key, minVal, maxVal, d)
	}

	return nil
}

// validateBaseURL requires an absolute https URL. Plain http is accepted
// only for loopback hosts so tests and local proxies can stand in for Graph.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("graph_base_url: %w", err)
	}

	if u.Host == "" {
		return fmt.Errorf("graph_base_url: must be an absolute URL, got %q", raw)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}

		return fmt.Errorf("graph_base_url: http is only allowed for localhost, got %q", raw)
	default:
		return fmt.Errorf("graph_base_url: scheme must be https, got %q", raw)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)

	return ip != nil && ip.IsLoopback()
}
