package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/gitguard/internal/cache"
	"github.com/dshills/gitguard/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit message cache",
}

func openCache(cmd *cobra.Command, force bool) (*cache.Cache, bool) {
	cfg, err := config.Load(nil)
	if err != nil {
		fail(cmd.ErrOrStderr(), ExitUsageError, "%v", err)
		return nil, false
	}
	c, err := cache.New(force || cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		fail(cmd.ErrOrStderr(), ExitRuntimeError, "opening cache: %v", err)
		return nil, false
	}
	return c, true
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commit messages",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, ok := openCache(cmd, true)
		if !ok {
			return
		}
		n, err := c.Clear()
		if err != nil {
			fail(cmd.ErrOrStderr(), ExitRuntimeError, "clearing cache: %v", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d entries).\n", n)
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, ok := openCache(cmd, true)
		if !ok {
			return
		}
		n, err := c.Prune()
		if err != nil {
			fail(cmd.ErrOrStderr(), ExitRuntimeError, "pruning cache: %v", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries.\n", n)
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, ok := openCache(cmd, false)
		if !ok {
			return
		}
		if !c.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
			return
		}
		stats, err := c.GetStats()
		if err != nil {
			fail(cmd.ErrOrStderr(), ExitRuntimeError, "reading cache stats: %v", err)
			return
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			fail(cmd.ErrOrStderr(), ExitRuntimeError, "%v", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
