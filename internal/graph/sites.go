package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// siteResponse mirrors the Graph API site JSON response.
type siteResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

type sitesListResponse struct {
	Value    *[]siteResponse `json:"value"`
	NextLink string          `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// toSite normalizes a Graph API site response. DisplayName falls back to
// Name when Graph leaves it empty.
func (s *siteResponse) toSite() (Site, error) {
	if s.ID == "" {
		return Site{}, &ContractError{Resource: "site", Detail: "missing id"}
	}

	display := s.DisplayName
	if display == "" {
		display = s.Name
	}

	return Site{
		ID:          s.ID,
		Name:        s.Name,
		DisplayName: display,
		WebURL:      s.WebURL,
	}, nil
}

// FollowedSites returns the SharePoint sites the authenticated user follows.
// Only the first page is returned.
func (c *Client) FollowedSites(ctx context.Context) ([]Site, error) {
	c.logger.Info("listing followed sites")

	var slr sitesListResponse
	if err := c.getJSON(ctx, "/me/followedSites", "site collection", &slr); err != nil {
		return nil, err
	}

	if slr.Value == nil {
		return nil, &ContractError{Resource: "site collection", Detail: "missing value array"}
	}

	raw := *slr.Value

	sites := make([]Site, 0, len(raw))
	for i := range raw {
		site, err := raw[i].toSite()
		if err != nil {
			return nil, err
		}

		sites = append(sites, site)
	}

	if slr.NextLink != "" {
		c.logger.Warn("followed sites truncated to first page",
			slog.Int("count", len(sites)),
		)
	}

	c.logger.Debug("listed followed sites", slog.Int("count", len(sites)))

	return sites, nil
}

// SiteByPath resolves a SharePoint site from its hostname and
// server-relative path, e.g. ("contoso.sharepoint.com", "/sites/team").
func (c *Client) SiteByPath(ctx context.Context, hostname, sitePath string) (*Site, error) {
	if err := requireArg("hostname", hostname); err != nil {
		return nil, err
	}

	sitePath = strings.Trim(sitePath, "/")
	if err := requireArg("site path", sitePath); err != nil {
		return nil, err
	}

	c.logger.Info("resolving site by path",
		slog.String("hostname", hostname),
		slog.String("site_path", sitePath),
	)

	var sr siteResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/sites/%s:/%s", hostname, encodePathSegments(sitePath)), "site", &sr); err != nil {
		return nil, err
	}

	site, err := sr.toSite()
	if err != nil {
		return nil, err
	}

	return &site, nil
}
