package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Atarvano/ManifestAi/cmd/manifest-ai/ui"
	"github.com/Atarvano/ManifestAi/internal/cache"
	"github.com/Atarvano/ManifestAi/internal/hscode"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the HS classification cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Forget every cached HS classification",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("cache disabled: set cache.driver to redis")
		}
		defer c.Close()

		n, err := c.Purge(ctx, hscode.CachePrefix+":")
		if err != nil {
			return err
		}
		ui.Success("Removed %d cached classifications", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
