package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/skimmer/internal/mirror"
	"github.com/crimson-sun/skimmer/internal/records"
	"github.com/crimson-sun/skimmer/internal/sink"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Bin extracted shard streams into per-object-key directories",
	Long: `Mirror reads each extracted shard's aligned streams and appends the
timestamps, byte counts, and IPs under one directory per object key,
mirroring the bucket's object structure. Start/end journal records guard
against interrupted copies: a shard journaled as started but never
finished means the mirror is corrupt and must be reset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.EnsureDirs(); err != nil {
			return err
		}

		startRec, err := records.Open(filepath.Join(cfg.RecordsDir(), "mirror-copy-start.txt"))
		if err != nil {
			return err
		}
		defer startRec.Close()
		endRec, err := records.Open(filepath.Join(cfg.RecordsDir(), "mirror-copy-end.txt"))
		if err != nil {
			return err
		}
		defer endRec.Close()

		shardDirs, err := listShardDirs(cfg.ExtractionDir())
		if err != nil {
			return err
		}
		for _, dir := range shardDirs {
			if startRec.Has(dir) && !endRec.Has(dir) {
				return fmt.Errorf("mirror copy corruption from a previous run detected for %s - run \"skimmer reset --mirror\" before retrying", dir)
			}
		}

		destDir := filepath.Join(cfg.CacheDir, "mirror")
		mirrored := 0
		for _, dir := range shardDirs {
			if endRec.Has(dir) {
				continue
			}
			if err := startRec.Add(dir); err != nil {
				return err
			}
			if err := mirror.Run(dir, destDir); err != nil {
				return err
			}
			if err := endRec.Add(dir); err != nil {
				return err
			}
			mirrored++
		}
		log.Info().Int("shards", mirrored).Str("dest", destDir).Msg("mirror complete")
		return nil
	},
}

// listShardDirs finds directories holding an object_keys.txt stream.
func listShardDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Base(path) == sink.FileObjectKeys {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
}
