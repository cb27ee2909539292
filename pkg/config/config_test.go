package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.True(t, cfg.Indexes)
	assert.False(t, cfg.Extensions)
	assert.Empty(t, cfg.Catalog)
}

func TestFile(t *testing.T) {
	path := writeFile(t, "log:\n  level: debug\n  format: json\ncache:\n  size: 16\nindexes: false\nextensions: true\ncatalog: items.yaml\n")
	cfg, err := load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.False(t, cfg.Indexes)
	assert.True(t, cfg.Extensions)
	assert.Equal(t, "items.yaml", cfg.Catalog)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "log:\n  level: debug\n")
	cfg, err := load(path, []string{
		"CATQL_LOG_LEVEL=warn",
		"CATQL_CACHE_SIZE=8",
		"CATQL_INDEXES=false",
		"OTHER_LOG_LEVEL=error",
	})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Cache.Size)
	assert.False(t, cfg.Indexes)
}

func TestErrors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = load(writeFile(t, "log:\n  level: loud\n"), nil)
	assert.ErrorContains(t, err, "unknown log level")

	_, err = load(writeFile(t, "log:\n  format: xml\n"), nil)
	assert.ErrorContains(t, err, "unknown log format")

	_, err = load(writeFile(t, "cache:\n  size: -1\n"), nil)
	assert.ErrorContains(t, err, "negative cache size")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Log: LogConfig{Level: "warn", Format: "json"}}
	logger := cfg.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
