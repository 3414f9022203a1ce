package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "services", "orders")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, configFileName), []byte(`
output: docs/ORDERS.md
clientDir: internal/orderdb
package: orderdb
cacheDir: /var/cache/dynaspec
logLevel: debug
inclusiveBetween: true
watchDebounce: 300ms
aws:
  region: eu-north-1
  endpoint: http://localhost:8000
`), 0o644))

	t.Run("found walking up", func(t *testing.T) {
		cfg, path, err := LoadConfig("", nested)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, configFileName), path)
		assert.Equal(t, filepath.Join(root, "docs", "ORDERS.md"), cfg.Output)
		assert.Equal(t, filepath.Join(root, "internal", "orderdb"), cfg.ClientDir)
		assert.Equal(t, "/var/cache/dynaspec", cfg.CacheDir)
		assert.Equal(t, "orderdb", cfg.Package)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.InclusiveBetween)
		assert.Equal(t, 300*time.Millisecond, cfg.WatchDebounce)
		assert.Equal(t, AWSConfig{Region: "eu-north-1", Endpoint: "http://localhost:8000"}, cfg.AWS)
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(nested, "other.yaml")
		require.NoError(t, os.WriteFile(path, []byte("package: other\n"), 0o644))
		cfg, found, err := LoadConfig(path, "")
		require.NoError(t, err)
		assert.Equal(t, path, found)
		assert.Equal(t, "other", cfg.Package)
		assert.Empty(t, cfg.Output)
	})

	t.Run("missing explicit path", func(t *testing.T) {
		_, _, err := LoadConfig(filepath.Join(root, "nope.yaml"), "")
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(nested, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("watchDebounce: [1, 2]\n"), 0o644))
		_, _, err := LoadConfig(path, "")
		require.Error(t, err)
	})
}

func TestLoadConfigNotFound(t *testing.T) {
	cfg, path, err := LoadConfig("", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Config{}, cfg)
}
