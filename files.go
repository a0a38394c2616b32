package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chassweeting/onedrive-client/internal/graph"
)

// partialSuffix marks a download still in progress.
const partialSuffix = ".partial"

// downloadDirPerm is used for missing parent directories of a get target.
const downloadDirPerm = 0o755

// flagChildren is bound in newStatCmd.
var flagChildren bool

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List files and folders",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}

	addDriveFlags(cmd)

	return cmd
}

func newStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show file or folder metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runStat,
	}

	addDriveFlags(cmd)
	cmd.Flags().BoolVar(&flagChildren, "children", false, "also list a folder's children")

	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <remote-path> [local-path]",
		Short: "Download a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}

	addDriveFlags(cmd)

	return cmd
}

// cleanRemotePath strips leading and trailing slashes and collapses
// repeated ones. The drive root is "".
func cleanRemotePath(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })

	return strings.Join(parts, "/")
}

// itemCommand resolves the client and target drive shared by ls, stat
// and get.
func itemCommand(cmd *cobra.Command) (*CLIContext, *graph.Client, string, error) {
	cc := mustCLIContext(cmd.Context())
	client := newGraphClient(cc)

	driveID, err := selectDrive(cmd.Context(), client, cc.Logger)
	if err != nil {
		return nil, nil, "", err
	}

	return cc, client, driveID, nil
}

func runLs(cmd *cobra.Command, args []string) error {
	remotePath := "/"
	if len(args) > 0 {
		remotePath = args[0]
	}

	cc, client, driveID, err := itemCommand(cmd)
	if err != nil {
		return err
	}

	cc.Logger.Debug("ls", slog.String("path", remotePath))

	items, err := client.ListChildrenByPath(cmd.Context(), driveID, cleanRemotePath(remotePath))
	if err != nil {
		return fmt.Errorf("listing %q: %w", remotePath, err)
	}

	if cc.Flags.JSON {
		return printItemsJSON(cc.Out, items)
	}

	printItemsTable(cc.Out, items)

	return nil
}

// itemJSON is the JSON output schema for an item in ls and stat output.
type itemJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Size       int64  `json:"size"`
	ChildCount *int   `json:"child_count,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	DriveID    string `json:"drive_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	WebURL     string `json:"web_url,omitempty"`
}

func toItemJSON(item *graph.Item) itemJSON {
	out := itemJSON{
		ID:         item.ID,
		Name:       item.Name,
		Kind:       item.Kind.String(),
		Size:       item.Size,
		MimeType:   item.MimeType,
		ParentID:   item.ParentID,
		DriveID:    item.DriveID,
		CreatedAt:  formatTimestamp(item.CreatedAt),
		ModifiedAt: formatTimestamp(item.ModifiedAt),
		WebURL:     item.WebURL,
	}

	if item.IsFolder() && item.ChildCount != graph.ChildCountUnknown {
		n := item.ChildCount
		out.ChildCount = &n
	}

	return out
}

func printItemsJSON(w io.Writer, items []graph.Item) error {
	out := make([]itemJSON, 0, len(items))
	for i := range items {
		out = append(out, toItemJSON(&items[i]))
	}

	return writeJSON(w, out)
}

// printItemsTable prints folders first, then files, each alphabetically.
// The JSON form keeps Graph's order.
func printItemsTable(w io.Writer, items []graph.Item) {
	sorted := make([]graph.Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsFolder() != sorted[j].IsFolder() {
			return sorted[i].IsFolder()
		}

		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	headers := []string{"NAME", "SIZE", "MODIFIED"}
	rows := make([][]string, 0, len(sorted))

	for i := range sorted {
		name := sorted[i].Name
		size := formatSize(sorted[i].Size)

		if sorted[i].IsFolder() {
			name += "/"

			if sorted[i].ChildCount != graph.ChildCountUnknown {
				size = fmt.Sprintf("%d items", sorted[i].ChildCount)
			}
		}

		rows = append(rows, []string{name, size, formatTime(sorted[i].ModifiedAt)})
	}

	printTable(w, headers, rows)
}

func runStat(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	cc, client, driveID, err := itemCommand(cmd)
	if err != nil {
		return err
	}

	cc.Logger.Debug("stat", slog.String("path", remotePath), slog.Bool("children", flagChildren))

	if flagChildren {
		return runStatFolder(cmd, cc, client, driveID, remotePath)
	}

	item, err := client.GetItemByPath(cmd.Context(), driveID, cleanRemotePath(remotePath))
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	if cc.Flags.JSON {
		return writeJSON(cc.Out, toItemJSON(item))
	}

	printStatText(cc.Out, item)

	return nil
}

// folderJSON is the JSON schema for `stat --children --json`.
type folderJSON struct {
	itemJSON
	Children []itemJSON `json:"children"`
}

func runStatFolder(cmd *cobra.Command, cc *CLIContext, client *graph.Client, driveID, remotePath string) error {
	folder, err := client.FolderInfoByPath(cmd.Context(), driveID, cleanRemotePath(remotePath))
	if errors.Is(err, graph.ErrNotFolder) {
		return fmt.Errorf("%q is a file; --children needs a folder", remotePath)
	}

	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	if cc.Flags.JSON {
		out := folderJSON{
			itemJSON: toItemJSON(&folder.Item),
			Children: make([]itemJSON, 0, len(folder.Children)),
		}

		for i := range folder.Children {
			out.Children = append(out.Children, toItemJSON(&folder.Children[i]))
		}

		return writeJSON(cc.Out, out)
	}

	printStatText(cc.Out, &folder.Item)
	fmt.Fprintln(cc.Out)
	printItemsTable(cc.Out, folder.Children)

	return nil
}

func printStatText(w io.Writer, item *graph.Item) {
	fmt.Fprintf(w, "Name:     %s\n", item.Name)
	fmt.Fprintf(w, "Type:     %s\n", item.Kind)

	if item.IsFolder() {
		if item.ChildCount != graph.ChildCountUnknown {
			fmt.Fprintf(w, "Children: %d\n", item.ChildCount)
		}
	} else {
		fmt.Fprintf(w, "Size:     %s (%d bytes)\n", formatSize(item.Size), item.Size)
	}

	if !item.ModifiedAt.IsZero() {
		fmt.Fprintf(w, "Modified: %s\n", item.ModifiedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	if !item.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:  %s\n", item.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	fmt.Fprintf(w, "ID:       %s\n", item.ID)

	if item.MimeType != "" {
		fmt.Fprintf(w, "MIME:     %s\n", item.MimeType)
	}

	if item.WebURL != "" {
		fmt.Fprintf(w, "URL:      %s\n", item.WebURL)
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	ctx := cmd.Context()

	cc, client, driveID, err := itemCommand(cmd)
	if err != nil {
		return err
	}

	cc.Logger.Debug("get", slog.String("remote_path", remotePath))

	item, err := client.GetItemByPath(ctx, driveID, cleanRemotePath(remotePath))
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	if item.IsFolder() {
		return fmt.Errorf("%q is a folder, not a file", remotePath)
	}

	localPath := item.Name
	if len(args) > 1 {
		localPath = args[1]
	}

	localPath = downloadTarget(localPath, item.Name)

	n, err := downloadToFile(ctx, client, driveID, item.ID, localPath)
	if err != nil {
		return err
	}

	cc.Logger.Debug("download complete",
		slog.String("local_path", localPath),
		slog.Int64("bytes", n),
	)
	cc.Statusf("Downloaded %s (%s)\n", localPath, formatSize(n))

	return nil
}

// downloadTarget places the file inside localPath when it names an
// existing directory.
func downloadTarget(localPath, itemName string) string {
	if info, err := os.Stat(localPath); err == nil && info.IsDir() {
		return filepath.Join(localPath, itemName)
	}

	return localPath
}

// downloadToFile streams the item into localPath+".partial" and renames
// it into place on success, so an interrupted download never leaves a
// truncated file under the final name.
func downloadToFile(ctx context.Context, client *graph.Client, driveID, itemID, localPath string) (int64, error) {
	partialPath := localPath + partialSuffix

	if err := os.MkdirAll(filepath.Dir(localPath), downloadDirPerm); err != nil {
		return 0, fmt.Errorf("creating directory for %q: %w", localPath, err)
	}

	f, err := os.Create(partialPath)
	if err != nil {
		return 0, fmt.Errorf("creating %q: %w", partialPath, err)
	}

	n, err := client.Download(ctx, driveID, itemID, f)
	closeErr := f.Close()

	if err == nil {
		err = closeErr
	}

	if err != nil {
		if rmErr := os.Remove(partialPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}

		return 0, fmt.Errorf("downloading to %q: %w", localPath, err)
	}

	// Atomic rename: .partial -> target.
	if err := os.Rename(partialPath, localPath); err != nil {
		return 0, fmt.Errorf("renaming download to %q: %w", localPath, err)
	}

	return n, nil
}
