package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
	"uclasoc/lib/scrapers/soc"
	"uclasoc/lib/serviceutil"
	"uclasoc/lib/telemetry"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var cachePath *string
var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "uclasoc",
	Short: "uclasoc is a CLI for browsing the UCLA schedule of classes.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	cachePath = rootCmd.PersistentFlags().String("cache", "", "Path to a sqlite database to cache fetched pages in.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const cacheLifetime = 24 * time.Hour

func newFetcher() soc.PageFetcher {
	opts := soc.ClientOptions{
		Pacer: soc.Pacer{
			Min: 500 * time.Millisecond,
			Max: 2 * time.Second,
		},
	}

	if *cachePath != "" {
		db, err := sql.Open("sqlite", *cachePath)
		if err != nil {
			serviceutil.Fatal("failed to open page cache", err)
		}
		cache, err := soc.NewPageCache(db, cacheLifetime)
		if err != nil {
			serviceutil.Fatal("failed to initialize page cache", err)
		}
		opts.Cache = cache
	}

	client, err := soc.NewClient(opts)
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}
	return client
}
