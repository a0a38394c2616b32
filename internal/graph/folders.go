package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFolder is returned by FolderInfo when the addressed item is a file.
var ErrNotFolder = errors.New("graph: item is not a folder")

// Folder is a folder's metadata together with its direct children.
type Folder struct {
	Item
	Children []Item // first page only, in service order
}

// FolderInfo returns the folder with the given ID and its children. A
// folderID of "root" addresses the drive root. It issues two requests: the
// item lookup and the children listing.
func (c *Client) FolderInfo(ctx context.Context, driveID, folderID string) (*Folder, error) {
	item, err := c.GetItem(ctx, driveID, folderID)
	if err != nil {
		return nil, err
	}

	return c.withChildren(ctx, driveID, item)
}

// FolderInfoByPath is FolderInfo for a path relative to the drive root.
// An empty path means the root.
func (c *Client) FolderInfoByPath(ctx context.Context, driveID, remotePath string) (*Folder, error) {
	item, err := c.GetItemByPath(ctx, driveID, remotePath)
	if err != nil {
		return nil, err
	}

	return c.withChildren(ctx, driveID, item)
}

func (c *Client) withChildren(ctx context.Context, driveID string, item *Item) (*Folder, error) {
	if !item.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, item.Name)
	}

	children, err := c.ListChildren(ctx, driveID, item.ID)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("folder info",
		slog.String("drive_id", driveID),
		slog.String("folder_id", item.ID),
		slog.Int("children", len(children)),
	)

	return &Folder{Item: *item, Children: children}, nil
}
