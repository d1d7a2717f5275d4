package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCatalog(t *testing.T, args ...string) map[string]map[string][]map[string]string {
	t.Helper()
	cmd := newCatalogCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	var got map[string]map[string][]map[string]string
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	return got
}

func TestCatalogCommand_Default(t *testing.T) {
	t.Setenv("CATALOG_FILE", "")
	got := runCatalog(t)

	require.Len(t, got["roles"]["staff"], 1)
	assert.Equal(t, "Staff App", got["roles"]["staff"][0]["name"])
	assert.Equal(t, "http://localhost:5178", got["roles"]["admin"][0]["url"])
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`roles:
  agent:
    - name: Orders
      url: https://orders.example.com
`), 0o600))
	return path
}

func TestCatalogCommand_File(t *testing.T) {
	t.Setenv("CATALOG_FILE", "")
	got := runCatalog(t, "--file", writeCatalog(t))

	require.Len(t, got["roles"]["agent"], 1)
	assert.Equal(t, "Orders", got["roles"]["agent"][0]["name"])
	assert.Empty(t, got["roles"]["staff"])
}

func TestCatalogCommand_FileFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_FILE", writeCatalog(t))
	t.Setenv("ENV", "production")
	got := runCatalog(t)

	require.Len(t, got["roles"]["agent"], 1)
	assert.Equal(t, "Orders", got["roles"]["agent"][0]["name"])
}

func TestCatalogCommand_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv("CATALOG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	got := runCatalog(t, "--file", writeCatalog(t))

	require.Len(t, got["roles"]["agent"], 1)
}
