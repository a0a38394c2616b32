package graph

import (
	"context"
	"fmt"
	"log/slog"
)

// userResponse mirrors the Graph API /me JSON response.
// DisplayName is a pointer so an absent or null field is distinguishable
// from an empty one.
type userResponse struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"displayName"`
	Mail        string  `json:"mail"`
	// UPN is a fallback when mail is empty (common on Personal accounts
	// where the mail field is often blank).
	UPN string `json:"userPrincipalName"`
}

// toUser normalizes a Graph API user response into our User type.
func (u *userResponse) toUser() (User, error) {
	if u.DisplayName == nil {
		return User{}, &ContractError{Resource: "user", Detail: "missing displayName"}
	}

	email := u.Mail
	if email == "" {
		email = u.UPN
	}

	return User{
		ID:          u.ID,
		DisplayName: *u.DisplayName,
		Email:       email,
	}, nil
}

// driveResponse mirrors the Graph API drive JSON response.
type driveResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	DriveType string      `json:"driveType"`
	Owner     *ownerFacet `json:"owner"`
	Quota     *quotaFacet `json:"quota"`
}

// ownerFacet represents the owner block in a Graph API drive response.
type ownerFacet struct {
	User struct {
		DisplayName string `json:"displayName"`
	} `json:"user"`
}

// quotaFacet represents the quota block in a Graph API drive response.
type quotaFacet struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

// toDrive normalizes a Graph API drive response into our Drive type.
// Nil-safe for optional owner and quota facets. The ID is kept verbatim.
func (d *driveResponse) toDrive() (Drive, error) {
	if d.ID == "" {
		return Drive{}, &ContractError{Resource: "drive", Detail: "missing id"}
	}

	drive := Drive{
		ID:        d.ID,
		Name:      d.Name,
		DriveType: d.DriveType,
	}

	if d.Owner != nil {
		drive.OwnerName = d.Owner.User.DisplayName
	}

	if d.Quota != nil {
		drive.QuotaUsed = d.Quota.Used
		drive.QuotaTotal = d.Quota.Total
	}

	return drive, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	c.logger.Info("fetching authenticated user profile")

	var ur userResponse
	if err := c.getJSON(ctx, "/me", "user", &ur); err != nil {
		return nil, err
	}

	user, err := ur.toUser()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched user profile",
		slog.String("id", user.ID),
		slog.String("display_name", user.DisplayName),
	)

	return &user, nil
}

// DisplayName returns the authenticated user's display name.
func (c *Client) DisplayName(ctx context.Context) (string, error) {
	user, err := c.Me(ctx)
	if err != nil {
		return "", err
	}

	return user.DisplayName, nil
}

// MyDrive returns the authenticated user's own OneDrive.
func (c *Client) MyDrive(ctx context.Context) (*Drive, error) {
	c.logger.Info("fetching own drive")

	return c.fetchDrive(ctx, "/me/drive")
}

// SiteDrive returns the default document library of a SharePoint site.
func (c *Client) SiteDrive(ctx context.Context, siteID string) (*Drive, error) {
	if err := requireArg("site ID", siteID); err != nil {
		return nil, err
	}

	c.logger.Info("fetching site default drive",
		slog.String("site_id", siteID),
	)

	return c.fetchDrive(ctx, fmt.Sprintf("/sites/%s/drive", siteID))
}

// fetchDrive fetches and normalizes a single drive resource.
func (c *Client) fetchDrive(ctx context.Context, apiPath string) (*Drive, error) {
	var dr driveResponse
	if err := c.getJSON(ctx, apiPath, "drive", &dr); err != nil {
		return nil, err
	}

	drive, err := dr.toDrive()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched drive",
		slog.String("id", drive.ID),
		slog.String("name", drive.Name),
		slog.String("drive_type", drive.DriveType),
	)

	return &drive, nil
}
