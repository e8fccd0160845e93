// Package skimmer provides programmatic access to the S3 access log
// extraction and validation engines.
//
// Quick start:
//
//	s, err := skimmer.New(
//	    skimmer.WithCacheDir("/var/cache/skimmer"),
//	    skimmer.WithIPFilter(`^10\.`),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	stats, err := s.Extract(ctx, "/srv/s3-logs")
//	fmt.Println(stats.Events, "access records extracted")
//
// Validate any new log source before trusting extraction on it: the fast
// path reads fixed token positions, and Validate proves those positions
// hold for your files by cross-checking against an independent
// ground-truth derivation.
//
// Unlike the skimmer command, which fails fast, library callers receive
// typed errors per shard and may continue across shards at their own risk.
package skimmer
