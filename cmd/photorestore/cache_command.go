package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"photorestore/internal/hashcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the hash cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show hash cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, warn, err := openCache(ctx, cmd)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || cache == nil {
				return err
			}
			defer cache.Close()

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPairs("Hash cache", [][]string{
				{"Path", stats.Path},
				{"Entries", humanize.Comma(int64(stats.Entries))},
				{"With perceptual hash", humanize.Comma(int64(stats.WithPerceptual))},
				{"Size", humanize.IBytes(uint64(stats.FileBytes))},
			}))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached hash",
		Long:  "Remove every cached hash. --reset deletes the database file instead, which also recovers from a schema mismatch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if reset {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				if err := hashcache.Remove(cfg.HashCachePath()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted hash cache %s\n", cfg.HashCachePath())
				return nil
			}

			cache, warn, err := openCache(ctx, cmd)
			if warn != "" {
				fmt.Fprintln(out, warn)
			}
			if err != nil || cache == nil {
				return err
			}
			defer cache.Close()
			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %s cache entries\n", humanize.Comma(removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Delete the cache database file")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cache entries for files that no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cache, warn, err := openCache(ctx, cmd)
			if warn != "" {
				fmt.Fprintln(out, warn)
			}
			if err != nil || cache == nil {
				return err
			}
			defer cache.Close()
			removed, err := cache.Prune(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(out, "No cache entries pruned")
				return nil
			}
			fmt.Fprintf(out, "Pruned %s stale entries\n", humanize.Comma(int64(removed)))
			return nil
		},
	}
}

func openCache(ctx *commandContext, cmd *cobra.Command) (*hashcache.Cache, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Hashing.CacheEnabled {
		return nil, "Hash cache is disabled (set hashing.cache_enabled = true in config.toml)", nil
	}
	cache, err := hashcache.Open(cmd.Context(), cfg.HashCachePath())
	if err != nil {
		return nil, "", fmt.Errorf("open hash cache: %w", err)
	}
	return cache, "", nil
}
