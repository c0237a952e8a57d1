package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdkit/libmerge/pkg/cache"
)

// testCLI builds a CLI that logs nowhere and ignores any user config.
func testCLI(t *testing.T) *CLI {
	t.Helper()
	return &CLI{
		Logger: newLogger(io.Discard, LogInfo),
		cfg:    defaultConfig(),
	}
}

func TestRootCommand(t *testing.T) {
	root := testCLI(t).RootCommand()

	if root.Use != "libmerge" {
		t.Errorf("root.Use = %q, want %q", root.Use, "libmerge")
	}
	if !root.SilenceUsage {
		t.Error("root command should silence usage on errors")
	}

	want := []string{"generate", "corners", "leflist", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".cache", "libmerge")
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "libmerge") {
		t.Errorf("cacheDir() = %q, should honor XDG_CACHE_HOME", dir)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	t.Run("no-cache flag wins", func(t *testing.T) {
		c := testCLI(t)
		c.cfg.Cache.Backend = backendFile

		store, err := c.newCache(ctx, true)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if _, ok := store.(*cache.NullCache); !ok {
			t.Errorf("newCache(noCache) = %T, want *cache.NullCache", store)
		}
	})

	t.Run("backend off", func(t *testing.T) {
		c := testCLI(t)
		c.cfg.Cache.Backend = backendOff

		store, err := c.newCache(ctx, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if _, ok := store.(*cache.NullCache); !ok {
			t.Errorf("newCache() = %T, want *cache.NullCache", store)
		}
	})

	t.Run("backend file", func(t *testing.T) {
		c := testCLI(t)
		c.cfg.Cache.Backend = backendFile
		c.cfg.Cache.Dir = t.TempDir()

		store, err := c.newCache(ctx, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if _, ok := store.(*cache.FileCache); !ok {
			t.Errorf("newCache() = %T, want *cache.FileCache", store)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := testCLI(t)
		c.cfg.Cache.Backend = "memcached"

		_, err := c.newCache(ctx, false)
		if err == nil {
			t.Fatal("newCache() should reject an unknown backend")
		}
		if !strings.Contains(err.Error(), "memcached") {
			t.Errorf("error %q should name the backend", err)
		}
	})
}
