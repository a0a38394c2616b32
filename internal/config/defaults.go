package config

// Default values for configuration options. These represent "layer 0" of the
// override chain.
const (
	defaultLogLevel     = "info"
	defaultLogFormat    = "auto"
	defaultTimeout      = "30s"
	defaultUserAgent    = "onedrive-client/0.1"
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
)

// DefaultScopes are the delegated permissions requested when the config
// file does not list any.
var DefaultScopes = []string{
	"User.Read",
	"Files.Read.All",
	"Sites.Read.All",
	"offline_access",
}

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
// ClientID and TenantID have no default: every deployment registers its
// own application in its own directory.
func DefaultConfig() *Config {
	return &Config{
		AuthConfig:    defaultAuthConfig(),
		LoggingConfig: defaultLoggingConfig(),
		NetworkConfig: defaultNetworkConfig(),
	}
}

func defaultAuthConfig() AuthConfig {
	return AuthConfig{
		Scopes: append([]string(nil), DefaultScopes...),
	}
}

func defaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

func defaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Timeout:      defaultTimeout,
		UserAgent:    defaultUserAgent,
		GraphBaseURL: defaultGraphBaseURL,
	}
}
