package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/skimmer/internal/config"
	"github.com/crimson-sun/skimmer/internal/logging"
)

var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skimmer",
	Short: "Skim access summaries out of raw S3 server access logs",
	Long: `Skimmer extracts a minimal access summary (object key, timestamp, bytes
sent, client IP) from raw S3 server access logs in a single pass, and
cross-validates its fast extraction heuristic against an independent
ground-truth derivation before you trust it on a new log source.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.Init(cfg.LogLevel, cfg.LogFormat)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Environment supplies the defaults; flags override per invocation.
	cfg = config.Load()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.IPFilter, "ip-filter", cfg.IPFilter,
		"regular expression matching client IPs to exclude (required for extraction; or SKIMMER_IP_FILTER)")
	pf.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "cache directory for streams, records and scratch space")
	pf.StringVar(&cfg.Mode, "mode", cfg.Mode, "object-key policy: generic or dandi")
	pf.StringVar(&cfg.Timestamps, "timestamps", cfg.Timestamps, "timestamp encoding: canonical or compact")
	pf.IntVar(&cfg.Workers, "workers", cfg.Workers, "shard-level parallelism")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
}

// signalContext cancels on SIGINT/SIGTERM so runs stop between lines, not
// mid-write.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
