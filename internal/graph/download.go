package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Download streams the content of a file to w and returns the number of
// bytes written. Graph answers /content with a redirect to a
// pre-authenticated location; the HTTP client follows it within the same
// request and drops the Authorization header when the host changes.
func (c *Client) Download(ctx context.Context, driveID, itemID string, w io.Writer) (int64, error) {
	if err := requireArg("drive ID", driveID); err != nil {
		return 0, err
	}

	if err := requireArg("item ID", itemID); err != nil {
		return 0, err
	}

	c.logger.Info("downloading item",
		slog.String("drive_id", driveID),
		slog.String("item_id", itemID),
	)

	resp, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/drives/%s/items/%s/content", driveID, itemID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		c.logger.Error("streaming download content failed",
			slog.String("error", err.Error()),
			slog.Int64("bytes_before_error", n),
		)

		return n, fmt.Errorf("graph: streaming download content: %w", err)
	}

	c.logger.Debug("download complete",
		slog.String("drive_id", driveID),
		slog.String("item_id", itemID),
		slog.Int64("bytes_written", n),
	)

	return n, nil
}
