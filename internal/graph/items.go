package graph

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// rootItemID is the Graph alias for a drive's root folder.
const rootItemID = "root"

// encodePathSegments NFC-normalizes a slash-separated path and URL-encodes
// each segment, so names typed on macOS (NFD) match what Graph stores and
// characters like #, ?, % and spaces are safe inside Graph API URLs.
func encodePathSegments(path string) string {
	segments := strings.Split(norm.NFC.String(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}

// driveItemResponse mirrors the Graph API driveItem JSON.
// Unexported: callers use Item via toItem() normalization.
type driveItemResponse struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Size                 int64        `json:"size"`
	CreatedDateTime      string       `json:"createdDateTime"`
	LastModifiedDateTime string       `json:"lastModifiedDateTime"`
	WebURL               string       `json:"webUrl"`
	ParentReference      *parentRef   `json:"parentReference"`
	File                 *fileFacet   `json:"file"`
	Folder               *folderFacet `json:"folder"`
	DownloadURL          string       `json:"@microsoft.graph.downloadUrl"` //nolint:tagliatelle // Graph API annotation key
}

type parentRef struct {
	ID      string `json:"id"`
	DriveID string `json:"driveId"`
}

type fileFacet struct {
	MimeType string `json:"mimeType"`
}

type folderFacet struct {
	ChildCount *int `json:"childCount"`
}

type listChildrenResponse struct {
	Value    *[]driveItemResponse `json:"value"`
	NextLink string               `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// itemKind derives the item's kind from its facets. Exactly one of file and
// folder must be present.
func (d *driveItemResponse) itemKind() (ItemKind, error) {
	switch {
	case d.Folder != nil && d.File == nil:
		return KindFolder, nil
	case d.File != nil && d.Folder == nil:
		return KindFile, nil
	case d.File != nil && d.Folder != nil:
		return 0, &ContractError{
			Resource: "driveItem",
			Detail:   fmt.Sprintf("item %q has both file and folder facets", d.ID),
		}
	default:
		return 0, &ContractError{
			Resource: "driveItem",
			Detail:   fmt.Sprintf("item %q has neither file nor folder facet", d.ID),
		}
	}
}

// toItem normalizes a Graph API driveItem response into our Item type.
func (d *driveItemResponse) toItem(logger *slog.Logger) (Item, error) {
	if d.ID == "" {
		return Item{}, &ContractError{Resource: "driveItem", Detail: "missing id"}
	}

	kind, err := d.itemKind()
	if err != nil {
		return Item{}, err
	}

	item := Item{
		ID:          d.ID,
		Name:        d.Name,
		Kind:        kind,
		Size:        d.Size,
		ChildCount:  ChildCountUnknown,
		WebURL:      d.WebURL,
		DownloadURL: d.DownloadURL,
	}

	if d.ParentReference != nil {
		item.DriveID = d.ParentReference.DriveID
		item.ParentID = d.ParentReference.ID
	}

	if d.Folder != nil && d.Folder.ChildCount != nil {
		item.ChildCount = *d.Folder.ChildCount
	}

	if d.File != nil {
		item.MimeType = d.File.MimeType
	}

	item.CreatedAt = parseTimestamp(d.CreatedDateTime, "createdDateTime", d.ID, logger)
	item.ModifiedAt = parseTimestamp(d.LastModifiedDateTime, "lastModifiedDateTime", d.ID, logger)

	return item, nil
}

// parseTimestamp parses an RFC3339 timestamp. Empty or unparseable values
// yield the zero time; the latter is logged.
func parseTimestamp(raw, field, itemID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Debug("invalid timestamp, leaving unset",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)

		return time.Time{}
	}

	return t
}

// GetItem retrieves a single drive item by ID.
func (c *Client) GetItem(ctx context.Context, driveID, itemID string) (*Item, error) {
	if err := requireArg("drive ID", driveID); err != nil {
		return nil, err
	}

	if err := requireArg("item ID", itemID); err != nil {
		return nil, err
	}

	c.logger.Info("getting item",
		slog.String("drive_id", driveID),
		slog.String("item_id", itemID),
	)

	return c.fetchItem(ctx, fmt.Sprintf("/drives/%s/items/%s", driveID, itemID))
}

// GetItemByPath retrieves a drive item by its path relative to the drive root.
// Leading and trailing slashes are ignored; an empty path means the root.
func (c *Client) GetItemByPath(ctx context.Context, driveID, remotePath string) (*Item, error) {
	if err := requireArg("drive ID", driveID); err != nil {
		return nil, err
	}

	remotePath = strings.Trim(remotePath, "/")
	if remotePath == "" {
		return c.GetItem(ctx, driveID, rootItemID)
	}

	c.logger.Info("getting item by path",
		slog.String("drive_id", driveID),
		slog.String("path", remotePath),
	)

	return c.fetchItem(ctx, fmt.Sprintf("/drives/%s/root:/%s:", driveID, encodePathSegments(remotePath)))
}

// fetchItem fetches a single drive item from the given API path and decodes it.
func (c *Client) fetchItem(ctx context.Context, apiPath string) (*Item, error) {
	var dir driveItemResponse
	if err := c.getJSON(ctx, apiPath, "driveItem", &dir); err != nil {
		return nil, err
	}

	item, err := dir.toItem(c.logger)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// ListRootChildren returns the items directly under a drive's root folder,
// in the order the service returned them.
func (c *Client) ListRootChildren(ctx context.Context, driveID string) ([]Item, error) {
	return c.ListChildren(ctx, driveID, rootItemID)
}

// ListChildren returns the items directly under a folder. A folderID of
// "root" addresses the drive root.
func (c *Client) ListChildren(ctx context.Context, driveID, folderID string) ([]Item, error) {
	if err := requireArg("drive ID", driveID); err != nil {
		return nil, err
	}

	if err := requireArg("folder ID", folderID); err != nil {
		return nil, err
	}

	apiPath := fmt.Sprintf("/drives/%s/items/%s/children", driveID, folderID)
	if folderID == rootItemID {
		apiPath = fmt.Sprintf("/drives/%s/root/children", driveID)
	}

	return c.listChildren(ctx, apiPath, "listing children",
		slog.String("drive_id", driveID),
		slog.String("folder_id", folderID),
	)
}

// ListChildrenByPath returns the items directly under the folder at the given
// path relative to the drive root. An empty path lists the root.
func (c *Client) ListChildrenByPath(ctx context.Context, driveID, remotePath string) ([]Item, error) {
	remotePath = strings.Trim(remotePath, "/")
	if remotePath == "" {
		return c.ListRootChildren(ctx, driveID)
	}

	if err := requireArg("drive ID", driveID); err != nil {
		return nil, err
	}

	return c.listChildren(ctx,
		fmt.Sprintf("/drives/%s/root:/%s:/children", driveID, encodePathSegments(remotePath)),
		"listing children by path",
		slog.String("drive_id", driveID),
		slog.String("remote_path", remotePath),
	)
}

// listChildren fetches one page of children. Only the first page is
// returned; a nextLink in the response is logged as a truncation.
func (c *Client) listChildren(ctx context.Context, apiPath, entryMsg string, attrs ...any) ([]Item, error) {
	c.logger.Info(entryMsg, attrs...)

	var lcr listChildrenResponse
	if err := c.getJSON(ctx, apiPath, "driveItem collection", &lcr); err != nil {
		return nil, err
	}

	if lcr.Value == nil {
		return nil, &ContractError{Resource: "driveItem collection", Detail: "missing value array"}
	}

	raw := *lcr.Value

	items := make([]Item, 0, len(raw))
	for i := range raw {
		item, err := raw[i].toItem(c.logger)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if lcr.NextLink != "" {
		c.logger.Warn("listing truncated to first page",
			append(attrs, slog.Int("count", len(items)))...,
		)
	}

	c.logger.Debug("listed children", append(attrs, slog.Int("count", len(items)))...)

	return items, nil
}
