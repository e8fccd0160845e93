package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/skimmer/internal/config"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask running extraction workers to halt between shards",
	Long: `Stop creates the stop file in the records directory. Workers check it
between shards and exit cleanly; already-completed shards stay recorded,
so the next extract run resumes from where the stopped one left off.
Prefer this over Ctrl+C when multiple workers are running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.EnsureDirs(); err != nil {
			return err
		}
		f, err := os.Create(cfg.StopFile())
		if err != nil {
			return fmt.Errorf("create stop file: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info().Str("file", cfg.StopFile()).Msg("stop requested")
		return nil
	},
}

var resetMirror bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Purge the extraction cache and records",
	Long: `Reset removes the extraction directory, scratch space, run records, and
the stop file. With --mirror it also removes the mirror directory and its
journals. The persisted cache-location setting is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := []string{cfg.ExtractionDir(), cfg.TmpDir(), cfg.RecordsDir()}
		if resetMirror {
			targets = append(targets, filepath.Join(cfg.CacheDir, "mirror"))
		}
		for _, dir := range targets {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("remove %s: %w", dir, err)
			}
		}
		log.Info().Str("cache", cfg.CacheDir).Msg("cache reset")
		return cfg.EnsureDirs()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration options, such as cache management",
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cache directory location",
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <directory>",
	Short: "Persist a non-default cache directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		return config.SetCacheDir(dir)
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective cache directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cfg.CacheDir)
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetMirror, "mirror", false, "also remove the mirror directory")
	cacheCmd.AddCommand(cacheSetCmd, cacheShowCmd)
	configCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(stopCmd, resetCmd, configCmd)
}
