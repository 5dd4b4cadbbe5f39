package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sessiongate/sessiongate/api"
	"github.com/sessiongate/sessiongate/log"
)

func newCacheCommand() *cobra.Command {
	c := &cobra.Command{
		Use:               "cache",
		Short:             "Performs session cache operations",
		PersistentPreRunE: initConfigPreRun,
	}
	c.AddCommand(&cobra.Command{
		Use:   "stats",
		Args:  cobra.NoArgs,
		Short: "Print the session cache state",
		RunE:  cacheStats,
	}, &cobra.Command{
		Use:     "drain",
		Args:    cobra.NoArgs,
		Aliases: []string{"flush", "clear"},
		Short:   "Close all idle sessions",
		RunE:    drainCache,
	})

	return c
}

func cacheStats(_ *cobra.Command, _ []string) error {
	stats, err := api.NewClient(apiURL(), nil).CacheStats(context.Background())
	if err != nil {
		return fmt.Errorf("can't execute %w", err)
	}

	log.Log().Infof("idle sessions: %d", stats.Entries)
	log.Log().Infof("keys: %d", stats.Keys)
	log.Log().Infof("lifespan: %s", time.Duration(stats.LifespanSec*float64(time.Second)))

	return nil
}

func drainCache(_ *cobra.Command, _ []string) error {
	if err := api.NewClient(apiURL(), nil).DrainCache(context.Background()); err != nil {
		return fmt.Errorf("can't execute %w", err)
	}

	log.Log().Info("OK")

	return nil
}
