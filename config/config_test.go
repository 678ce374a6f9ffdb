package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, 64, cfg.BufferPoolCapacity)
	require.Equal(t, 2, cfg.ReplacerK)
	require.Equal(t, 2, cfg.HeaderMaxDepth)
	require.Equal(t, 9, cfg.DirectoryMaxDepth)
	require.Equal(t, 0, cfg.BucketMaxSize)
}

func TestLoadOverridesOnlyFieldsPresentInFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coredb.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/var/lib/coredb"
buffer_pool_capacity = 256
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/coredb", cfg.DataDir)
	require.Equal(t, 256, cfg.BufferPoolCapacity)
	require.Equal(t, 2, cfg.ReplacerK, "fields the file omits must keep their default")
	require.Equal(t, 9, cfg.DirectoryMaxDepth)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestLoadInvalidHCL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("not valid hcl {{{"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
