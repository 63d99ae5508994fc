package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := filepath.Join(t.TempDir(), "custom-cache")
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".local", "share", appName)) {
		t.Errorf("dataDir() = %q, should end with .local/share/%s", dir, appName)
	}

	t.Setenv("XDG_DATA_HOME", "/srv/data")
	if dir, _ := dataDir(); dir != filepath.Join("/srv/data", appName) {
		t.Errorf("dataDir() with XDG_DATA_HOME = %q", dir)
	}
}

func TestOpenCatalogDefaultPath(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	c := New(os.Stderr, LogInfo)
	c.config.Catalog.Backend = "badger"
	cat, err := c.openCatalog(t.Context())
	if err != nil {
		t.Fatalf("openCatalog() error: %v", err)
	}
	defer cat.Close()

	if _, err := os.Stat(filepath.Join(data, appName, catalogDirName)); err != nil {
		t.Errorf("badger catalog not under the data dir: %v", err)
	}
}
