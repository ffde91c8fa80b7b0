package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/fintrace/insider/cache"
	"github.com/fintrace/insider/config"
	"github.com/fintrace/insider/errors"
)

// CacheCmd represents the cache command
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the resolved-identity cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show persisted cache statistics",
	RunE:  runCacheStatsCommand,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached identities",
	RunE:  runCacheClearCommand,
}

func init() {
	CacheCmd.AddCommand(cacheStatsCmd)
	CacheCmd.AddCommand(cacheClearCmd)
}

func openConfiguredStore() (*cache.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Path == "" {
		return nil, errors.New("no cache path configured; the cache is memory-only")
	}
	return cache.OpenStore(cfg.Cache.Path)
}

func runCacheStatsCommand(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(time.Now())
	if err != nil {
		return err
	}

	rows := pterm.TableData{
		{"Entries", pterm.Sprintf("%d", stats.Total)},
		{"Positive", pterm.Sprintf("%d", stats.Positive)},
		{"Negative", pterm.Sprintf("%d", stats.Negative)},
		{"Expired", pterm.Sprintf("%d", stats.Expired)},
	}
	return pterm.DefaultTable.WithData(rows).Render()
}

func runCacheClearCommand(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	pterm.Success.Println("Cache cleared")
	return nil
}
