package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// configFilePermissions is the permission mode for config files. The file
// holds no secrets (public client, device-code flow), but it identifies the
// tenant, so it is not world-readable.
const configFilePermissions = 0o600

// configDirPermissions is the standard permission mode for config directories.
const configDirPermissions = 0o700

// ErrConfigExists is returned by CreateConfig when the target file is
// already present.
var ErrConfigExists = errors.New("config file already exists")

// configTemplate is the config file content written by "config init".
// Every optional setting is present as a commented-out default so users can
// discover each option without reading docs.
const configTemplate = `# onedrive-client configuration

# Azure AD application (client) ID and directory (tenant) ID.
# AZURE_CLIENT_ID / AZURE_TENANT_ID override these.
client_id = %q
tenant_id = %q

# Delegated permissions requested at sign-in.
# scopes = ["User.Read", "Files.Read.All", "Sites.Read.All", "offline_access"]

# Log verbosity: debug, info, warn, error
# log_level = "info"

# Log format: auto (text on a terminal, JSON otherwise), text, json
# log_format = "auto"

# Per-request HTTP timeout
# timeout = "30s"

# user_agent = "onedrive-client/0.1"
# graph_base_url = "https://graph.microsoft.com/v1.0"
`

// CreateConfig writes a new config file from the default template with the
// given identity values. It refuses to overwrite an existing file. The write
// is atomic (temp file + rename) and parent directories are created as
// needed.
func CreateConfig(path, clientID, tenantID string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	cfg := DefaultConfig()
	cfg.ClientID = clientID
	cfg.TenantID = tenantID

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger.Info("creating config file",
		slog.String("path", path),
		slog.String("tenant_id", tenantID),
	)

	content := fmt.Sprintf(configTemplate, clientID, tenantID)

	return atomicWriteFile(path, []byte(content))
}

// atomicWriteFile writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial file.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	// Clean up the temp file on any error path.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
