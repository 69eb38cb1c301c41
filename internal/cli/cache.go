package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/catup/internal/config"
	"github.com/matzehuels/catup/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent fetch cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.NoCache {
				printInfo(c.Stdout, "Cache is disabled")
				return nil
			}
			ctx := cmd.Context()
			backend, err := openCacheBackend(ctx, c.cfg)
			if err != nil {
				return err
			}
			store := cache.Open(backend, cache.WithLogger(c.logger))
			if err := store.Clear(ctx); err != nil {
				_ = store.Close(ctx)
				return err
			}
			if err := store.Close(ctx); err != nil {
				return err
			}
			printSuccess(c.Stdout, "Cleared the %s cache", c.cfg.CacheBackend)
			if loc, err := cacheLocation(c.cfg); err == nil {
				printKeyValue(c.Stdout, "location", loc)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := cacheLocation(c.cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Stdout, loc)
			return nil
		},
	}
}

// cacheLocation describes where the backend keeps its data: a directory, a
// database file, or a redis address and key prefix.
func cacheLocation(cfg *config.Config) (string, error) {
	if cfg.CacheBackend == "redis" {
		return fmt.Sprintf("redis://%s (keys %s*)", cfg.RedisAddr, cache.DefaultRedisPrefix), nil
	}
	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return "", err
	}
	if cfg.CacheBackend == "bolt" {
		return filepath.Join(dir, cache.BoltFileName), nil
	}
	return dir, nil
}
