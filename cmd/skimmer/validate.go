package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/skimmer/internal/validate"
)

var validateLimit int

var validateCmd = &cobra.Command{
	Use:   "validate <directory>",
	Short: "Cross-check the fast extraction heuristic against ground truth",
	Long: `Validate audits every line of every *.log shard under the directory:
marker occurrence counts, independent ground-truth status resolution, and
fast-path consistency. It produces no output streams. The first fatal
verdict aborts with a diagnostic naming the file, line number, and raw
text. Run this against any new log source before trusting extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		if err := cfg.EnsureDirs(); err != nil {
			return err
		}
		v, err := validate.New(filepath.Join(cfg.RecordsDir(), "validation.txt"), log)
		if err != nil {
			return err
		}
		defer v.Close()

		return v.ValidateDirectory(ctx, args[0], validateLimit)
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateLimit, "limit", 0, "maximum number of shards to validate (0 = all)")
	rootCmd.AddCommand(validateCmd)
}
