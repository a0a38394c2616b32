package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/chassweeting/onedrive-client/internal/config"
	"github.com/chassweeting/onedrive-client/internal/graph"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagClientID   string
	flagTenantID   string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// skipConfigCommands lists commands that run without a resolved config.
// "config init" creates the file the resolver would otherwise fail on.
// Uses CommandPath() for explicit matching.
var skipConfigCommands = map[string]bool{
	"onedrive-client config init": true,
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "onedrive-client",
		Short:   "Read-only Microsoft Graph client for OneDrive and SharePoint",
		Long:    "Browse and download OneDrive and SharePoint files through Microsoft Graph using device-code sign-in.",
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfigCommands[cmd.CommandPath()] {
				return bootstrapContext(cmd)
			}

			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagClientID, "client-id", "", "Azure AD application (client) ID")
	cmd.PersistentFlags().StringVar(&flagTenantID, "tenant-id", "", "Azure AD directory (tenant) ID")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newDriveCmd())
	cmd.AddCommand(newSiteDriveCmd())
	cmd.AddCommand(newSitesCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newStatCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// CLIFlags is a snapshot of the global flags for one invocation.
type CLIFlags struct {
	ConfigPath string
	JSON       bool
	Verbose    bool
	Quiet      bool
}

// CLIContext carries everything a subcommand needs: flags, the resolved
// configuration, the logger, and the output streams. It is attached to the
// command context by the root pre-run.
type CLIContext struct {
	Flags  CLIFlags
	Cfg    *config.Resolved
	Logger *slog.Logger
	Out    io.Writer
	ErrOut io.Writer
}

type cliContextKey struct{}

// Statusf prints a status message to ErrOut unless quiet mode is set.
func (cc *CLIContext) Statusf(format string, args ...any) {
	statusf(cc.ErrOut, cc.Flags.Quiet, format, args...)
}

// mustCLIContext returns the CLIContext attached by the root pre-run.
// A missing context is a programming error.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		panic("onedrive-client: CLIContext missing from command context")
	}

	return cc
}

func currentFlags() CLIFlags {
	return CLIFlags{
		ConfigPath: flagConfigPath,
		JSON:       flagJSON,
		Verbose:    flagVerbose,
		Quiet:      flagQuiet,
	}
}

// attachContext stores cc on cmd's context. Commands run under the
// shutdown context installed by main, or Background in tests.
func attachContext(cmd *cobra.Command, cc *CLIContext) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	cmd.SetContext(context.WithValue(parent, cliContextKey{}, cc))
}

// bootstrapContext attaches a CLIContext with no resolved config, for
// commands that must run before a config file exists.
func bootstrapContext(cmd *cobra.Command) error {
	flags := currentFlags()

	attachContext(cmd, &CLIContext{
		Flags:  flags,
		Logger: buildLogger(nil, flags, cmd.ErrOrStderr()),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	})

	return nil
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and attaches it to the command context.
func loadConfig(cmd *cobra.Command) error {
	flags := currentFlags()

	// Config resolution logs through a bootstrap logger: the configured
	// level is not known yet.
	bootLogger := buildLogger(nil, flags, cmd.ErrOrStderr())

	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	// Only pass identity flags to the resolver if the user explicitly set them.
	if cmd.Flags().Changed("client-id") {
		cli.ClientID = &flagClientID
	}

	if cmd.Flags().Changed("tenant-id") {
		cli.TenantID = &flagTenantID
	}

	env := config.ReadEnvOverrides(bootLogger)

	resolved, err := config.Resolve(env, cli, bootLogger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	attachContext(cmd, &CLIContext{
		Flags:  flags,
		Cfg:    resolved,
		Logger: buildLogger(resolved, flags, cmd.ErrOrStderr()),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	})

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it. With log_format "auto", a terminal gets text and
// anything else gets JSON.
func buildLogger(cfg *config.Resolved, flags CLIFlags, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	format := "auto"

	// Config-based settings (lower priority than CLI flags).
	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = cfg.LogFormat
	}

	// CLI flags override config (highest priority).
	if flags.Verbose {
		level = slog.LevelDebug
	}

	if flags.Quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if format == "json" || (format == "auto" && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// isTerminal reports whether w is a file descriptor attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newTokenSource builds the credential used by Graph commands. Tests
// replace it with a static token.
var newTokenSource = func(cc *CLIContext) graph.TokenSource {
	return graph.NewDeviceCodeCredential(cc.Cfg.ClientID, cc.Cfg.TenantID, cc.Cfg.Scopes,
		func(da graph.DeviceAuth) {
			// Device code prompts must always be visible, even with --quiet.
			fmt.Fprintf(cc.ErrOut, "To sign in, visit: %s\n", da.VerificationURI)
			fmt.Fprintf(cc.ErrOut, "Enter code: %s\n", da.UserCode)
		}, cc.Logger)
}

// newGraphClient returns a Graph client configured from the resolved
// config: base URL, per-request timeout, and user agent.
func newGraphClient(cc *CLIContext) *graph.Client {
	httpClient := &http.Client{Timeout: cc.Cfg.HTTPTimeout}

	return graph.NewClient(cc.Cfg.GraphBaseURL, httpClient, newTokenSource(cc), cc.Logger, cc.Cfg.UserAgent)
}
