package graph

import "time"

// ChildCountUnknown indicates the child count was not present in the API response.
const ChildCountUnknown = -1

// User is the authenticated user's profile.
type User struct {
	ID          string
	DisplayName string
	Email       string // mail, or userPrincipalName when mail is empty
}

// Drive is a file storage container: a personal OneDrive or a SharePoint
// document library. ID is opaque and passed verbatim to item calls.
type Drive struct {
	ID         string
	Name       string
	DriveType  string // "personal", "business", or "documentLibrary"
	OwnerName  string
	QuotaUsed  int64
	QuotaTotal int64
}

// ItemKind discriminates drive items by the facet Graph attaches to them.
type ItemKind int

const (
	KindFile ItemKind = iota + 1
	KindFolder
)

func (k ItemKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// Item is a file or folder in a drive. Fields are normalized from the Graph
// API response; callers never see raw API data.
type Item struct {
	ID          string
	Name        string
	DriveID     string
	ParentID    string
	Kind        ItemKind
	Size        int64
	MimeType    string // files only
	ChildCount  int    // folders only; ChildCountUnknown otherwise
	CreatedAt   time.Time
	ModifiedAt  time.Time
	WebURL      string
	DownloadURL string // pre-authenticated, ephemeral; never log
}

// IsFolder reports whether the item carries the folder facet.
func (i *Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// Site is a SharePoint site.
type Site struct {
	ID          string // "hostname,siteCollectionID,webID"
	Name        string
	DisplayName string
	WebURL      string
}
