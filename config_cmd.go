package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chassweeting/onedrive-client/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file with the given client and tenant IDs",
		Long: `Create a config file at the default location (or --config) holding the
Azure AD application and directory IDs. Every other setting is written as a
commented-out default. An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
}

// configShowJSON is the JSON schema for `config show --json`.
type configShowJSON struct {
	ConfigPath   string   `json:"config_path"`
	ClientID     string   `json:"client_id"`
	TenantID     string   `json:"tenant_id"`
	Scopes       []string `json:"scopes"`
	LogLevel     string   `json:"log_level"`
	LogFormat    string   `json:"log_format"`
	Timeout      string   `json:"timeout"`
	UserAgent    string   `json:"user_agent"`
	GraphBaseURL string   `json:"graph_base_url"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	rc := cc.Cfg

	if cc.Flags.JSON {
		return writeJSON(cc.Out, configShowJSON{
			ConfigPath:   rc.ConfigPath,
			ClientID:     rc.ClientID,
			TenantID:     rc.TenantID,
			Scopes:       rc.Scopes,
			LogLevel:     rc.LogLevel,
			LogFormat:    rc.LogFormat,
			Timeout:      rc.Timeout,
			UserAgent:    rc.UserAgent,
			GraphBaseURL: rc.GraphBaseURL,
		})
	}

	return config.RenderEffective(rc, cc.Out)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	if flagClientID == "" || flagTenantID == "" {
		return errors.New("config init requires --client-id and --tenant-id")
	}

	path := cc.Flags.ConfigPath
	if path == "" {
		path = config.ReadEnvOverrides(cc.Logger).ConfigPath
	}

	if path == "" {
		path = config.DefaultConfigPath()
	}

	if path == "" {
		return errors.New("cannot determine config path; pass --config")
	}

	if err := config.CreateConfig(path, flagClientID, flagTenantID, cc.Logger); err != nil {
		return fmt.Errorf("creating config: %w", err)
	}

	cc.Statusf("Created %s\n", path)

	return nil
}
