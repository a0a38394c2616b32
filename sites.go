package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chassweeting/onedrive-client/internal/graph"
)

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List SharePoint sites the signed-in user follows",
		Args:  cobra.NoArgs,
		RunE:  runSites,
	}
}

// siteJSON is the JSON output schema for a single site.
type siteJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	WebURL      string `json:"web_url,omitempty"`
}

func runSites(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	client := newGraphClient(cc)

	sites, err := client.FollowedSites(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing followed sites: %w", err)
	}

	if cc.Flags.JSON {
		return printSitesJSON(cc.Out, sites)
	}

	if len(sites) == 0 {
		cc.Statusf("No followed sites.\n")
		return nil
	}

	printSitesTable(cc.Out, sites)

	return nil
}

func printSitesJSON(w io.Writer, sites []graph.Site) error {
	out := make([]siteJSON, 0, len(sites))
	for i := range sites {
		out = append(out, siteJSON{
			ID:          sites[i].ID,
			Name:        sites[i].Name,
			DisplayName: sites[i].DisplayName,
			WebURL:      sites[i].WebURL,
		})
	}

	return writeJSON(w, out)
}

func printSitesTable(w io.Writer, sites []graph.Site) {
	headers := []string{"NAME", "ID", "URL"}
	rows := make([][]string, 0, len(sites))

	for i := range sites {
		rows = append(rows, []string{sites[i].DisplayName, sites[i].ID, sites[i].WebURL})
	}

	printTable(w, headers, rows)
}
