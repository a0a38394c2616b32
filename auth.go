package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chassweeting/onedrive-client/internal/graph"
)

// sitesUnknown marks a followed-site count that could not be read.
const sitesUnknown = -1

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the signed-in user, their drive, and followed sites",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	User          whoamiUser  `json:"user"`
	Drive         whoamiDrive `json:"drive"`
	FollowedSites int         `json:"followed_sites"`
}

type whoamiUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type whoamiDrive struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DriveType  string `json:"drive_type"`
	QuotaUsed  int64  `json:"quota_used"`
	QuotaTotal int64  `json:"quota_total"`
}

// whoamiResult gathers the three lookups whoami runs concurrently.
type whoamiResult struct {
	user      *graph.User
	drive     *graph.Drive
	siteCount int
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	client := newGraphClient(cc)

	cc.Logger.Debug("whoami", slog.String("tenant_id", cc.Cfg.TenantID))

	res, err := fetchWhoami(cmd.Context(), client, cc.Logger)
	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		return printWhoamiJSON(cc.Out, res)
	}

	printWhoamiText(cc.Out, res)

	return nil
}

// fetchWhoami issues /me, /me/drive and /me/followedSites concurrently.
// The first hard failure cancels the others. A 403 on followed sites
// only means Sites.Read.All was not granted, so the count is reported as
// unknown instead of failing the command.
func fetchWhoami(ctx context.Context, client *graph.Client, logger *slog.Logger) (*whoamiResult, error) {
	res := &whoamiResult{siteCount: sitesUnknown}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := client.Me(gctx)
		if err != nil {
			return fmt.Errorf("fetching user profile: %w", err)
		}

		res.user = user

		return nil
	})

	g.Go(func() error {
		drive, err := client.MyDrive(gctx)
		if err != nil {
			return fmt.Errorf("fetching drive: %w", err)
		}

		res.drive = drive

		return nil
	})

	g.Go(func() error {
		sites, err := client.FollowedSites(gctx)
		if errors.Is(err, graph.ErrForbidden) {
			logger.Warn("followed sites not readable, Sites.Read.All may not be granted",
				slog.String("error", err.Error()),
			)

			return nil
		}

		if err != nil {
			return fmt.Errorf("listing followed sites: %w", err)
		}

		res.siteCount = len(sites)

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

func printWhoamiJSON(w io.Writer, res *whoamiResult) error {
	out := whoamiOutput{
		User: whoamiUser{
			ID:          res.user.ID,
			DisplayName: res.user.DisplayName,
			Email:       res.user.Email,
		},
		Drive: whoamiDrive{
			ID:         res.drive.ID,
			Name:       res.drive.Name,
			DriveType:  res.drive.DriveType,
			QuotaUsed:  res.drive.QuotaUsed,
			QuotaTotal: res.drive.QuotaTotal,
		},
		FollowedSites: res.siteCount,
	}

	return writeJSON(w, out)
}

func printWhoamiText(w io.Writer, res *whoamiResult) {
	fmt.Fprintf(w, "User:  %s", res.user.DisplayName)

	if res.user.Email != "" {
		fmt.Fprintf(w, " (%s)", res.user.Email)
	}

	fmt.Fprintf(w, "\nID:    %s\n", res.user.ID)

	fmt.Fprintf(w, "\nDrive: %s (%s)\n", res.drive.Name, res.drive.DriveType)
	fmt.Fprintf(w, "  ID:    %s\n", res.drive.ID)

	if res.drive.QuotaTotal > 0 {
		fmt.Fprintf(w, "  Quota: %s / %s\n", formatSize(res.drive.QuotaUsed), formatSize(res.drive.QuotaTotal))
	}

	if res.siteCount == sitesUnknown {
		fmt.Fprintf(w, "\nFollowed sites: unknown (permission denied)\n")
		return
	}

	fmt.Fprintf(w, "\nFollowed sites: %d\n", res.siteCount)
}
