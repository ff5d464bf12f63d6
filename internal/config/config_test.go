package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "native", cfg.Analysis.Platform)
	assert.Equal(t, int64(10*1024*1024), cfg.Analysis.MaxFileSize)
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
	assert.Empty(t, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/.git/**")
	assert.NotEmpty(t, cfg.Project.Root)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ".cppsym.kdl"))
	require.NoError(t, err)
	assert.Equal(t, "native", cfg.Analysis.Platform)
}

func TestLoadFullConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cppsym.kdl")
	src := `
project {
    root "src"
    name "demo"
}
analysis {
    platform "unix32"
    library "descriptors/posix.toml" "descriptors/qt.toml"
    max_file_size 1048576
    max_goroutines 4
}
watch {
    debounce_ms 50
}
include "src/**/*.cpp" "src/**/*.h"
exclude "src/vendor/**"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), cfg.Project.Root)
	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "unix32", cfg.Analysis.Platform)
	assert.Equal(t, []string{
		filepath.Join(dir, "descriptors/posix.toml"),
		filepath.Join(dir, "descriptors/qt.toml"),
	}, cfg.Analysis.Libraries)
	assert.Equal(t, int64(1048576), cfg.Analysis.MaxFileSize)
	assert.Equal(t, 4, cfg.Analysis.MaxGoroutines)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.Equal(t, []string{"src/**/*.cpp", "src/**/*.h"}, cfg.Include)
	assert.Equal(t, []string{"src/vendor/**"}, cfg.Exclude,
		"an explicit exclude replaces the default list")
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cppsym.kdl")
	src := `
project {
    root "/opt/project"
}
analysis {
    library "/etc/cppsym/std.toml"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/project", cfg.Project.Root)
	assert.Equal(t, []string{"/etc/cppsym/std.toml"}, cfg.Analysis.Libraries)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cppsym.kdl")
	require.NoError(t, os.WriteFile(path, []byte("analysis {\n    platform \"win64\"\n}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "win64", cfg.Analysis.Platform)
	assert.Equal(t, int64(10*1024*1024), cfg.Analysis.MaxFileSize)
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
}

func TestLoadRejectsMalformedKDL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".cppsym.kdl")
	require.NoError(t, os.WriteFile(path, []byte("project {\n    root \"x\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
