package graph

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemKind_FacetDiscrimination(t *testing.T) {
	tests := []struct {
		name     string
		resp     driveItemResponse
		want     ItemKind
		wantFail bool
	}{
		{"folder only", driveItemResponse{ID: "a", Folder: &folderFacet{}}, KindFolder, false},
		{"file only", driveItemResponse{ID: "b", File: &fileFacet{}}, KindFile, false},
		{"both", driveItemResponse{ID: "c", File: &fileFacet{}, Folder: &folderFacet{}}, 0, true},
		{"neither", driveItemResponse{ID: "d"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := tt.resp.toItem(slog.Default())
			if tt.wantFail {
				var ce *ContractError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, "driveItem", ce.Resource)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Kind)
			assert.Equal(t, tt.want == KindFolder, item.IsFolder())
		})
	}
}

func TestItemKind_String(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "folder", KindFolder.String())
	assert.Equal(t, "unknown", ItemKind(0).String())
}

func TestToItem_Fields(t *testing.T) {
	resp := driveItemResponse{
		ID:                   "item-1",
		Name:                 "report.pdf",
		Size:                 2048,
		CreatedDateTime:      "2024-01-15T10:30:00Z",
		LastModifiedDateTime: "2024-02-01T09:00:00Z",
		WebURL:               "https://contoso-my.sharepoint.com/report.pdf",
		ParentReference:      &parentRef{ID: "parent-1", DriveID: "b!Drive"},
		File:                 &fileFacet{MimeType: "application/pdf"},
		DownloadURL:          "https://download.example/secret",
	}

	item, err := resp.toItem(slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, "report.pdf", item.Name)
	assert.Equal(t, int64(2048), item.Size)
	assert.Equal(t, "b!Drive", item.DriveID)
	assert.Equal(t, "parent-1", item.ParentID)
	assert.Equal(t, "application/pdf", item.MimeType)
	assert.Equal(t, ChildCountUnknown, item.ChildCount)
	assert.Equal(t, time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC), item.CreatedAt.UTC())
	assert.Equal(t, time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC), item.ModifiedAt.UTC())
	assert.Equal(t, "https://download.example/secret", item.DownloadURL)
}

func TestToItem_FolderChildCount(t *testing.T) {
	count := 7
	resp := driveItemResponse{ID: "f", Folder: &folderFacet{ChildCount: &count}}

	item, err := resp.toItem(slog.Default())
	require.NoError(t, err)
	assert.Equal(t, 7, item.ChildCount)
}

func TestToItem_MissingID(t *testing.T) {
	resp := driveItemResponse{Name: "x", File: &fileFacet{}}

	_, err := resp.toItem(slog.Default())

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, parseTimestamp("", "f", "id", slog.Default()).IsZero())
	assert.True(t, parseTimestamp("not-a-time", "f", "id", slog.Default()).IsZero())
	assert.Equal(t, 2023, parseTimestamp("2023-06-01T00:00:00Z", "f", "id", slog.Default()).Year())
}

func TestEncodePathSegments(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Documents", "Documents"},
		{"Documents/Reports", "Documents/Reports"},
		{"My Files/a#b?c.txt", "My%20Files/a%23b%3Fc.txt"},
		{"100%", "100%25"},
		// NFD "é" (e + combining acute) normalizes to NFC U+00E9.
		{"Cafe\u0301", "Caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, encodePathSegments(tt.in))
		})
	}
}

func TestListRootChildren_OrderAndFacets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/drives/b!abc123/root/children", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		fmt.Fprint(w, `{"value": [
			{"id": "folder-1", "name": "Reports", "folder": {"childCount": 3}},
			{"id": "file-1", "name": "notes.txt", "size": 12, "file": {"mimeType": "text/plain"}}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListRootChildren(context.Background(), "b!abc123")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Reports", items[0].Name)
	assert.True(t, items[0].IsFolder())
	assert.Equal(t, 3, items[0].ChildCount)

	assert.Equal(t, "notes.txt", items[1].Name)
	assert.False(t, items[1].IsFolder())
	assert.Equal(t, "text/plain", items[1].MimeType)
}

func TestListRootChildren_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"value": []}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListRootChildren(context.Background(), "d1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestListRootChildren_EmptyDriveID(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, srv.URL)
	_, err := client.ListRootChildren(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int32(0), hits.Load())
}

func TestListRootChildren_DriveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListRootChildren(context.Background(), "b!missing")

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusNotFound, ue.StatusCode)
	assert.Equal(t, "itemNotFound", ue.Code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRootChildren_MalformedItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Second item carries neither facet.
		fmt.Fprint(w, `{"value": [
			{"id": "a", "name": "ok", "file": {}},
			{"id": "b", "name": "odd"}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListRootChildren(context.Background(), "d1")

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Detail, `"b"`)
}

func TestListRootChildren_MissingValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListRootChildren(context.Background(), "d1")

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Detail, "value")
}

func TestListRootChildren_NextLinkNotFollowed(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"value": [{"id": "a", "name": "a.txt", "file": {}}],
			"@odata.nextLink": "https://graph.microsoft.com/v1.0/drives/d1/root/children?$skiptoken=abc"
		}`)
	})

	client := newTestClient(t, srv.URL)
	items, err := client.ListRootChildren(context.Background(), "d1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(1), hits.Load())
}

func TestListChildren_FolderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/d1/items/folder-9/children", r.URL.Path)
		fmt.Fprint(w, `{"value": [{"id": "x", "name": "x.txt", "file": {}}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	items, err := client.ListChildren(context.Background(), "d1", "folder-9")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].ID)
}

func TestListChildrenByPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/d1/root:/Documents/My Reports:/children", r.URL.Path)
		assert.Contains(t, r.URL.EscapedPath(), "My%20Reports")
		fmt.Fprint(w, `{"value": []}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListChildrenByPath(context.Background(), "d1", "/Documents/My Reports/")
	require.NoError(t, err)
}

func TestListChildrenByPath_RootFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/d1/root/children", r.URL.Path)
		fmt.Fprint(w, `{"value": []}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.ListChildrenByPath(context.Background(), "d1", "/")
	require.NoError(t, err)
}

func TestGetItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/d1/items/item-1", r.URL.Path)
		fmt.Fprint(w, `{"id": "item-1", "name": "a.txt", "size": 5, "file": {"mimeType": "text/plain"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	item, err := client.GetItem(context.Background(), "d1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", item.Name)
	assert.Equal(t, KindFile, item.Kind)
}

func TestGetItemByPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/d1/root:/Documents/a.txt:", r.URL.Path)
		fmt.Fprint(w, `{"id": "item-2", "name": "a.txt", "file": {}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	item, err := client.GetItemByPath(context.Background(), "d1", "Documents/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "item-2", item.ID)
}

func TestGetItemByPath_Root(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drives/d1/items/root", r.URL.Path)
		fmt.Fprint(w, `{"id": "root-id", "name": "root", "folder": {"childCount": 2}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	item, err := client.GetItemByPath(context.Background(), "d1", "")
	require.NoError(t, err)
	assert.True(t, item.IsFolder())
}
