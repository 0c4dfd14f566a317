package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tilezen/go-tilefetch/tilefetch"
)

// applyFlags copies explicitly set flags over the config file values.
func applyFlags(cfg *tilefetch.Config, outputMode, dsn, bucket, prefix *string, timeout *int, failFast *bool) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-mode":
			cfg.OutputMode = *outputMode
		case "dsn":
			cfg.DSN = *dsn
		case "bucket":
			cfg.Bucket = *bucket
		case "prefix":
			cfg.Prefix = *prefix
		case "timeout":
			cfg.Timeout = time.Duration(*timeout) * time.Second
		case "fail-fast":
			cfg.FailFast = *failFast
		}
	})
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("fetching tiles"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func main() {
	configPath := flag.String("config", "", "Optional TOML, YAML or JSON file with output settings, headers and a tile list.")
	outputMode := flag.String("output-mode", tilefetch.OutputDisk, "Valid modes are: disk, mbtiles, pmtiles, s3.")
	outputDSN := flag.String("dsn", "", "Root directory (disk) or archive path (mbtiles, pmtiles) to write tiles to. Defaults to ., tiles.mbtiles or tiles.pmtiles.")
	bucket := flag.String("bucket", "", "(For s3 output) The name of the S3 bucket to upload tiles to.")
	prefix := flag.String("prefix", "", "(For s3 output) Key prefix for uploaded tiles.")
	requestTimeout := flag.Int("timeout", 60, "HTTP client timeout for tile requests in seconds. 0 disables the timeout.")
	failFast := flag.Bool("fail-fast", false, "Stop at the first network error instead of skipping the tile.")
	showProgress := flag.Bool("progress", true, "Show a progress bar on stderr.")
	verbose := flag.Bool("verbose", false, "Enable debug logging.")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := tilefetch.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = tilefetch.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Couldn't load config: %+v", err)
		}
	}

	applyFlags(cfg, outputMode, outputDSN, bucket, prefix, requestTimeout, failFast)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %+v", err)
	}

	entries, err := cfg.Entries()
	if err != nil {
		log.Fatalf("Couldn't build tile list: %+v", err)
	}

	outputter, err := cfg.NewOutputter()
	if err != nil {
		log.Fatalf("Couldn't create %s output: %+v", cfg.OutputMode, err)
	}

	if err := outputter.CreateTiles(); err != nil {
		log.Fatalf("Failed to create %s output: %+v", cfg.OutputMode, err)
	}

	log.Printf("Created %s output\n", cfg.OutputMode)

	var bar *progressbar.ProgressBar
	if *showProgress {
		bar = newProgressBar(len(entries))
	}

	saved := 0
	fetcher, err := tilefetch.NewFetcher(&tilefetch.FetcherOptions{
		Client:    tilefetch.NewHTTPClient(cfg.Timeout),
		Headers:   cfg.Headers,
		Outputter: outputter,
		FailFast:  cfg.FailFast,
		OnResult: func(resp *tilefetch.TileResponse) {
			if resp.OK() {
				saved++
			}
			if bar != nil {
				bar.Add(1)
			}
		},
	})
	if err != nil {
		log.Fatalf("Couldn't create fetcher: %+v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := fetcher.Run(ctx, entries)

	if err := outputter.Close(); err != nil {
		log.Printf("Error closing outputter: %+v", err)
	}

	if runErr != nil {
		log.Fatalf("Tile fetch aborted after %d tiles: %+v", saved, runErr)
	}

	log.Printf("Saved %d of %d tiles", saved, len(entries))
}
