package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chassweeting/onedrive-client/internal/graph"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"bytes", 512, "512 B"},
		{"kilobytes", 1536, "1.5 KB"},
		{"megabytes", 5242880, "5.0 MB"},
		{"gigabytes", 1610612736, "1.5 GB"},
		{"terabytes", 1099511627776, "1.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSize(tt.bytes))
		})
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()
	sameYear := time.Date(now.Year(), time.March, 15, 10, 30, 0, 0, time.UTC)
	diffYear := time.Date(2020, time.December, 25, 8, 0, 0, 0, time.UTC)

	t.Run("same year", func(t *testing.T) {
		result := formatTime(sameYear)
		assert.Contains(t, result, "Mar")
		assert.Contains(t, result, "15")
		assert.Contains(t, result, "10:30")
	})

	t.Run("different year", func(t *testing.T) {
		result := formatTime(diffYear)
		assert.Contains(t, result, "Dec")
		assert.Contains(t, result, "25")
		assert.Contains(t, result, "2020")
	})

	t.Run("zero", func(t *testing.T) {
		assert.Equal(t, "-", formatTime(time.Time{}))
	})
}

func TestFormatTimestamp(t *testing.T) {
	assert.Empty(t, formatTimestamp(time.Time{}))

	ts := time.Date(2024, time.January, 15, 12, 30, 0, 0, time.FixedZone("EET", 2*60*60))
	assert.Equal(t, "2024-01-15T10:30:00Z", formatTimestamp(ts))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	headers := []string{"NAME", "SIZE", "MODIFIED"}
	rows := [][]string{
		{"file.txt", "1.2 MB", "Jan 15 10:30"},
		{"folder/", "0 B", "Feb  1 09:00"},
	}

	printTable(&buf, headers, rows)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "NAME      SIZE    MODIFIED", lines[0])
	assert.Equal(t, "file.txt  1.2 MB  Jan 15 10:30", lines[1])
	assert.Equal(t, "folder/   0 B     Feb  1 09:00", lines[2])
}

func TestPrintTable_NoRows(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"NAME", "SIZE"}, nil)
	assert.Equal(t, "NAME  SIZE\n", buf.String())
}

func TestStatusf(t *testing.T) {
	var buf bytes.Buffer

	statusf(&buf, true, "quiet %s\n", "mode")
	assert.Empty(t, buf.String())

	statusf(&buf, false, "loud %s\n", "mode")
	assert.Equal(t, "loud mode\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding JSON output")
}

func TestCleanRemotePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root slash", "/", ""},
		{"nested with trailing slash", "/foo/bar/", "foo/bar"},
		{"empty string", "", ""},
		{"no slashes", "foo", "foo"},
		{"double slashes", "//double//inner", "double/inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanRemotePath(tt.path))
		})
	}
}

func TestPrintItemsTable_DoesNotReorderInput(t *testing.T) {
	items := []graph.Item{
		{ID: "1", Name: "b.txt", Kind: graph.KindFile, ChildCount: graph.ChildCountUnknown},
		{ID: "2", Name: "A", Kind: graph.KindFolder, ChildCount: graph.ChildCountUnknown},
	}

	var buf bytes.Buffer
	printItemsTable(&buf, items)

	assert.Equal(t, "1", items[0].ID)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "A/"))
	assert.Contains(t, lines[1], "0 B")
}

func TestToItemJSON_FileHasNoChildCount(t *testing.T) {
	item := graph.Item{ID: "f", Name: "f", Kind: graph.KindFile, ChildCount: graph.ChildCountUnknown}
	assert.Nil(t, toItemJSON(&item).ChildCount)

	folder := graph.Item{ID: "d", Name: "d", Kind: graph.KindFolder, ChildCount: 0}
	out := toItemJSON(&folder)
	require.NotNil(t, out.ChildCount)
	assert.Equal(t, 0, *out.ChildCount)
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestPrintSitesJSON_WriteError(t *testing.T) {
	err := printSitesJSON(failingWriter{}, []graph.Site{{ID: "s"}})
	require.Error(t, err)
}
