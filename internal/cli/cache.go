package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend and its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("backend", c.cfg.Cache.Backend)

			if c.cfg.Cache.Backend == backendRedis {
				printKeyValue("address", c.cfg.Cache.RedisAddr)
				return nil
			}
			if c.cfg.Cache.Backend == backendOff {
				return nil
			}

			dir, err := c.localCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			printKeyValue("directory", dir)

			entries, size, err := statCacheDir(dir)
			if err != nil {
				return err
			}
			printKeyValue("entries", fmt.Sprintf("%d", entries))
			printKeyValue("size", humanSize(int(size)))
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == backendRedis {
				printInfo("Redis cache entries expire on their own; nothing to clear locally")
				return nil
			}

			dir, err := c.localCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			count, err := clearCacheDir(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// localCacheDir resolves the file cache directory, preferring the
// configured one.
func (c *CLI) localCacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// statCacheDir counts the cache entries under dir and sums their sizes.
// A missing directory counts as empty.
func statCacheDir(dir string) (int, int64, error) {
	var entries int
	var size int64

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipAll
			}
			return nil // unreadable entries are skipped
		}
		if d.IsDir() {
			return nil
		}
		entries++
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return entries, size, nil
}

// clearCacheDir removes every cache entry under dir and returns how many
// files were deleted. Empty shard directories are cleaned up afterwards.
func clearCacheDir(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if !info.IsDir() {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	// Clean up empty shard directories
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if info.IsDir() {
			os.Remove(path)
		}
		return nil
	})

	return count, nil
}
