package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/skimmer/internal/extract"
	"github.com/crimson-sun/skimmer/internal/source/s3remote"
)

var (
	extractLimit  int
	extractBucket string
	extractPrefix string
)

var extractCmd = &cobra.Command{
	Use:   "extract [directory]",
	Short: "Extract access records from raw log shards",
	Long: `Extract walks a directory of *.log shards (or fetches them from an S3
bucket with --bucket) and appends retained access records to each shard's
four aligned output streams under the cache's extraction directory.

Shards listed in the extraction record are skipped, so interrupted runs
resume where they left off. Use "skimmer stop" to halt a running
extraction between shards.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && extractBucket == "" {
			return fmt.Errorf("either a log directory or --bucket is required")
		}

		ctx, cancel := signalContext()
		defer cancel()

		ex, err := extract.New(cfg, log)
		if err != nil {
			return err
		}
		defer ex.Close()

		root := ""
		if len(args) == 1 {
			root, err = filepath.Abs(args[0])
			if err != nil {
				return err
			}
		}

		if extractBucket != "" {
			dest := filepath.Join(cfg.TmpDir(), "remote-logs")
			src, err := s3remote.New(ctx, extractBucket, extractPrefix, dest)
			if err != nil {
				return err
			}
			log.Info().Str("bucket", extractBucket).Str("prefix", extractPrefix).Msg("fetching remote shards")
			shards, err := src.Shards(ctx)
			if err != nil {
				return err
			}
			_, err = ex.ExtractShards(ctx, dest, shards, extractLimit)
			return err
		}

		_, err = ex.ExtractDirectory(ctx, root, extractLimit)
		return err
	},
}

func init() {
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "maximum number of shards to process (0 = all)")
	extractCmd.Flags().StringVar(&extractBucket, "bucket", "", "S3 bucket to fetch log shards from")
	extractCmd.Flags().StringVar(&extractPrefix, "prefix", "", "key prefix within --bucket")
	rootCmd.AddCommand(extractCmd)
}
