package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/skimmer/internal/ipindex"
)

var ipindexDir string

var ipindexCmd = &cobra.Command{
	Use:   "index-ips",
	Short: "Replace full IPs with stable salted-hash indices",
	Long: `Index-ips walks the extraction output for ips.txt streams and writes an
aligned indexed_ips.txt next to each, assigning every distinct routable
address a stable index backed by a persistent map. Non-routable addresses
(private, loopback, link-local) all share index 0. The salt comes from
SKIMMER_IP_SALT and must stay constant across runs for indices to remain
stable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		salt := os.Getenv("SKIMMER_IP_SALT")
		if salt == "" {
			return fmt.Errorf("SKIMMER_IP_SALT is required for IP indexing")
		}
		if err := cfg.EnsureDirs(); err != nil {
			return err
		}

		ix, err := ipindex.Open(filepath.Join(cfg.CacheDir, "ip_index.txt"), salt)
		if err != nil {
			return err
		}

		dir := ipindexDir
		if dir == "" {
			dir = cfg.ExtractionDir()
		}
		if err := ix.IndexTree(dir); err != nil {
			return err
		}
		return ix.Save()
	},
}

func init() {
	ipindexCmd.Flags().StringVar(&ipindexDir, "dir", "", "directory to index (default: the extraction directory)")
	rootCmd.AddCommand(ipindexCmd)
}
