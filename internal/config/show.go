package config

import (
	"fmt"
	"io"
	"strings"
)

// RenderEffective writes the resolved configuration as annotated TOML to w.
// This powers the "config show" command: the values shown are the ones in
// effect after all four override layers have been applied.
func RenderEffective(rc *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n")
	ew.printf("# Config file: %s\n\n", rc.ConfigPath)

	renderAuthSection(ew, &rc.AuthConfig)
	renderLoggingSection(ew, &rc.LoggingConfig)
	renderNetworkSection(ew, &rc.NetworkConfig)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAuthSection(ew *errWriter, a *AuthConfig) {
	ew.printf("# auth\n")
	ew.printf("client_id      = %q\n", a.ClientID)
	ew.printf("tenant_id      = %q\n", a.TenantID)
	ew.printf("scopes         = [%s]\n", joinQuoted(a.Scopes))
	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("# logging\n")
	ew.printf("log_level      = %q\n", l.LogLevel)
	ew.printf("log_format     = %q\n", l.LogFormat)
	ew.printf("\n")
}

func renderNetworkSection(ew *errWriter, n *NetworkConfig) {
	ew.printf("# network\n")
	ew.printf("timeout        = %q\n", n.Timeout)
	ew.printf("user_agent     = %q\n", n.UserAgent)
	ew.printf("graph_base_url = %q\n", n.GraphBaseURL)
}

// joinQuoted formats a string slice as comma-separated quoted values.
func joinQuoted(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}

	return strings.Join(quoted, ", ")
}
