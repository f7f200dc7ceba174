package infer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoleCatalog(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "accountchek.json")
	rolesPath := filepath.Join(dir, "roles.json")

	require.NoError(t, os.WriteFile(rolesPath, []byte(`{
		"roles": [
			{"value": "User", "description": "Standard User", "keywords": ["officer"]},
			{"value": "Admin", "description": "Administrator", "keywords": ["admin"]}
		]
	}`), 0o644))

	catalog, err := LoadRoleCatalog(configPath)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "User", catalog[0].Value)
	assert.Equal(t, []string{"admin"}, catalog[1].Keywords)
}

func TestLoadRoleCatalog_MissingFileUsesDefault(t *testing.T) {
	catalog, err := LoadRoleCatalog(filepath.Join(t.TempDir(), "vendor.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRoleCatalog(), catalog)
}

func TestLoadRoleCatalog_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roles.json"), []byte("{not json"), 0o644))

	_, err := LoadRoleCatalog(filepath.Join(dir, "vendor.json"))
	assert.Error(t, err)
}
