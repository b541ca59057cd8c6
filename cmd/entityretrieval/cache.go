package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Query cache maintenance",
}

var cachePruneMaxAge string

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete query cache rows older than the configured max age",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		maxAge := cfg.Store.QueryCacheMaxAge
		if cachePruneMaxAge != "" {
			d, err := time.ParseDuration(cachePruneMaxAge)
			if err != nil {
				return fmt.Errorf("invalid --max-age: %w", err)
			}
			maxAge = d
		}
		if maxAge <= 0 {
			return fmt.Errorf("cache prune: no max age configured (set store.query_cache_max_age or pass --max-age)")
		}

		deleted, err := s.PruneQueryCache(ctx, maxAge)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d query cache rows older than %s\n", deleted, maxAge)
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().StringVar(&cachePruneMaxAge, "max-age", "", "override store.query_cache_max_age (Go duration syntax, e.g. 24h)")
	cacheCmd.AddCommand(cachePruneCmd)
}
