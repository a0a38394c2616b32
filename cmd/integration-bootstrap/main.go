// Signs in once with the device-code flow and prints an access token for
// the live integration tests in internal/graph.
//
// Usage: go run ./cmd/integration-bootstrap >> .env
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/chassweeting/onedrive-client/internal/config"
	"github.com/chassweeting/onedrive-client/internal/graph"
)

// tokenEnvVar is the variable the integration tests read the token from.
const tokenEnvVar = "ONEDRIVE_TEST_ACCESS_TOKEN"

func main() {
	cfgPath := flag.String("config", "", "config file path")
	flag.Parse()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rc, err := config.Resolve(config.ReadEnvOverrides(logger), config.CLIOverrides{ConfigPath: *cfgPath}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	cred := graph.NewDeviceCodeCredential(rc.ClientID, rc.TenantID, rc.Scopes, func(da graph.DeviceAuth) {
		// Prompts go to stderr so stdout can be appended to .env.
		fmt.Fprintf(os.Stderr, "Go to %s and enter code: %s\n", da.VerificationURI, da.UserCode)
	}, logger)

	tok, err := cred.Token(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign-in failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s=%s\n", tokenEnvVar, tok)
}
