package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{
			"id": "user-abc-123",
			"displayName": "Test User",
			"mail": "test@example.com",
			"userPrincipalName": "test_upn@example.com"
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "user-abc-123", user.ID)
	assert.Equal(t, "Test User", user.DisplayName)
	// When mail is present, it takes priority over UPN.
	assert.Equal(t, "test@example.com", user.Email)
}

func TestMe_EmailFallbackToUPN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		// Personal accounts often have empty mail field.
		fmt.Fprint(w, `{
			"id": "user-personal",
			"displayName": "Personal User",
			"mail": "",
			"userPrincipalName": "personal@outlook.com"
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	user, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "personal@outlook.com", user.Email)
}

func TestDisplayName_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"displayName": "Jane Doe"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	name, err := client.DisplayName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", name)
}

func TestDisplayName_EmptyIsNotMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"displayName": ""}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	name, err := client.DisplayName(context.Background())
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestDisplayName_Missing(t *testing.T) {
	bodies := map[string]string{
		"absent": `{"id": "u1"}`,
		"null":   `{"id": "u1", "displayName": null}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.DisplayName(context.Background())

			var ce *ContractError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "user", ce.Resource)
			assert.Contains(t, ce.Detail, "displayName")
		})
	}
}

func TestMe_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"displayName": `)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Me(context.Background())

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Error(t, ce.Err)
}

func TestMe_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("request-id", "req-401")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"InvalidAuthenticationToken"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMyDrive_OpaqueID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/drive", r.URL.Path)
		fmt.Fprint(w, `{"id": "b!abc123"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	drive, err := client.MyDrive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b!abc123", drive.ID)
}

func TestMyDrive_FullResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"id": "b!MixedCASE_Drive",
			"name": "OneDrive",
			"driveType": "business",
			"owner": {"user": {"displayName": "Jane Doe"}},
			"quota": {"used": 1073741824, "total": 5368709120}
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	drive, err := client.MyDrive(context.Background())
	require.NoError(t, err)

	// IDs are never case-folded.
	assert.Equal(t, "b!MixedCASE_Drive", drive.ID)
	assert.Equal(t, "OneDrive", drive.Name)
	assert.Equal(t, "business", drive.DriveType)
	assert.Equal(t, "Jane Doe", drive.OwnerName)
	assert.Equal(t, int64(1073741824), drive.QuotaUsed)
	assert.Equal(t, int64(5368709120), drive.QuotaTotal)
}

func TestMyDrive_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name": "OneDrive"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.MyDrive(context.Background())

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "drive", ce.Resource)
}

func TestSiteDrive_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sites/contoso.sharepoint.com,guid-1,guid-2/drive", r.URL.Path)
		fmt.Fprint(w, `{"id": "b!site-lib", "name": "Documents", "driveType": "documentLibrary"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	drive, err := client.SiteDrive(context.Background(), "contoso.sharepoint.com,guid-1,guid-2")
	require.NoError(t, err)
	assert.Equal(t, "b!site-lib", drive.ID)
	assert.Equal(t, "documentLibrary", drive.DriveType)
}

func TestSiteDrive_EmptySiteID(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil, failingToken{}, nil, "")
	_, err := client.SiteDrive(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
