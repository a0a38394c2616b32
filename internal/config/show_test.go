package config

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolved() *Resolved {
	return &Resolved{
		Config:      *validConfig(),
		ConfigPath:  "/home/user/.config/onedrive-client/config.toml",
		HTTPTimeout: 30 * time.Second,
	}
}

func TestRenderEffective_AllKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEffective(testResolved(), &buf))

	output := buf.String()
	assert.Contains(t, output, "# Config file: /home/user/.config/onedrive-client/config.toml")

	for _, k := range knownKeysList {
		assert.Contains(t, output, k)
	}

	assert.Contains(t, output, `"contoso.onmicrosoft.com"`)
	assert.Contains(t, output, `["User.Read", "Files.Read.All", "Sites.Read.All", "offline_access"]`)
}

func TestRenderEffective_IsValidTOML(t *testing.T) {
	rc := testResolved()

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(rc, &buf))

	var decoded Config
	_, err := toml.Decode(buf.String(), &decoded)
	require.NoError(t, err)
	assert.Equal(t, rc.Config, decoded)
}

// failWriter returns an error on every write.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderEffective_WriteError(t *testing.T) {
	err := RenderEffective(testResolved(), failWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestJoinQuoted(t *testing.T) {
	assert.Empty(t, joinQuoted(nil))
	assert.Equal(t, `"a"`, joinQuoted([]string{"a"}))
	assert.Equal(t, `"a", "b c"`, joinQuoted([]string{"a", "b c"}))
}
