package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chassweeting/onedrive-client/internal/graph"
)

// Flags for drive selection, bound by addDriveFlags.
var (
	flagDriveID string
	flagSiteID  string
)

// Flags for site-drive, bound in newSiteDriveCmd.
var (
	flagHostname string
	flagSitePath string
)

func newDriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drive",
		Short: "Print the signed-in user's drive",
		Args:  cobra.NoArgs,
		RunE:  runDrive,
	}
}

func newSiteDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site-drive [site-id]",
		Short: "Print a SharePoint site's default document library",
		Long: `Resolve a SharePoint site's default document library.

Identify the site either by its Graph ID ("hostname,siteCollectionID,webID")
or by --hostname and --path, for example:

  onedrive-client site-drive --hostname contoso.sharepoint.com --path /sites/team`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSiteDrive,
	}

	cmd.Flags().StringVar(&flagHostname, "hostname", "", "SharePoint hostname (e.g. contoso.sharepoint.com)")
	cmd.Flags().StringVar(&flagSitePath, "path", "", "server-relative site path (e.g. /sites/team)")

	return cmd
}

// addDriveFlags registers --drive-id and --site on item commands.
func addDriveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDriveID, "drive-id", "", "drive ID (default: the signed-in user's drive)")
	cmd.Flags().StringVar(&flagSiteID, "site", "", "SharePoint site ID whose default library to use")
	cmd.MarkFlagsMutuallyExclusive("drive-id", "site")
}

// driveJSON is the JSON schema for `drive --json` and `site-drive --json`.
type driveJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DriveType  string `json:"drive_type"`
	Owner      string `json:"owner,omitempty"`
	QuotaUsed  int64  `json:"quota_used"`
	QuotaTotal int64  `json:"quota_total"`
}

func runDrive(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	client := newGraphClient(cc)

	drive, err := client.MyDrive(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching drive: %w", err)
	}

	return printDrive(cc, drive)
}

func runSiteDrive(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	siteID := ""
	if len(args) > 0 {
		siteID = args[0]
	}

	byPath := flagHostname != "" || flagSitePath != ""

	switch {
	case siteID != "" && byPath:
		return errors.New("pass either a site ID or --hostname/--path, not both")
	case siteID == "" && !byPath:
		return errors.New("a site ID or --hostname and --path is required")
	case byPath && (flagHostname == "" || flagSitePath == ""):
		return errors.New("--hostname and --path must be used together")
	}

	ctx := cmd.Context()
	client := newGraphClient(cc)

	if byPath {
		site, err := client.SiteByPath(ctx, flagHostname, flagSitePath)
		if err != nil {
			return fmt.Errorf("resolving site %s:%s: %w", flagHostname, flagSitePath, err)
		}

		cc.Logger.Debug("site resolved",
			slog.String("hostname", flagHostname),
			slog.String("site_id", site.ID),
		)

		siteID = site.ID
	}

	drive, err := client.SiteDrive(ctx, siteID)
	if err != nil {
		return fmt.Errorf("fetching drive for site %q: %w", siteID, err)
	}

	return printDrive(cc, drive)
}

func printDrive(cc *CLIContext, drive *graph.Drive) error {
	if cc.Flags.JSON {
		return writeJSON(cc.Out, driveJSON{
			ID:         drive.ID,
			Name:       drive.Name,
			DriveType:  drive.DriveType,
			Owner:      drive.OwnerName,
			QuotaUsed:  drive.QuotaUsed,
			QuotaTotal: drive.QuotaTotal,
		})
	}

	printDriveText(cc.Out, drive)

	return nil
}

func printDriveText(w io.Writer, drive *graph.Drive) {
	fmt.Fprintf(w, "ID:    %s\n", drive.ID)
	fmt.Fprintf(w, "Name:  %s\n", drive.Name)
	fmt.Fprintf(w, "Type:  %s\n", drive.DriveType)

	if drive.OwnerName != "" {
		fmt.Fprintf(w, "Owner: %s\n", drive.OwnerName)
	}

	if drive.QuotaTotal > 0 {
		fmt.Fprintf(w, "Quota: %s / %s\n", formatSize(drive.QuotaUsed), formatSize(drive.QuotaTotal))
	}
}

// selectDrive returns the drive ID an item command operates on: --drive-id
// verbatim, the default library of --site, or the caller's own drive.
func selectDrive(ctx context.Context, client *graph.Client, logger *slog.Logger) (string, error) {
	if flagDriveID != "" {
		return flagDriveID, nil
	}

	var (
		drive *graph.Drive
		err   error
	)

	if flagSiteID != "" {
		drive, err = client.SiteDrive(ctx, flagSiteID)
	} else {
		drive, err = client.MyDrive(ctx)
	}

	if err != nil {
		return "", fmt.Errorf("resolving drive: %w", err)
	}

	logger.Debug("drive selected", slog.String("drive_id", drive.ID))

	return drive.ID, nil
}
