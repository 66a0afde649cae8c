package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/airband/feed-tracker/internal/cache"
	"github.com/airband/feed-tracker/internal/config"
	"github.com/airband/feed-tracker/internal/extract"
	"github.com/airband/feed-tracker/internal/fetch"
	"github.com/airband/feed-tracker/internal/ingest"
	"github.com/airband/feed-tracker/internal/stats"
	"github.com/airband/feed-tracker/internal/store"
)

func main() {
	once := flag.Bool("once", false, "run a single snapshot and exit")
	flag.Parse()

	if err := run(*once); err != nil {
		log.Printf("snapshot failed: %v", err)
		os.Exit(1)
	}
}

func run(once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return err
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.New(cfg.RedisAddr)
		if err != nil {
			// The cache is an optimization; the pipeline runs without it.
			log.Printf("continuing without latest-status cache: %v", err)
		} else {
			defer cacheClient.Close()
		}
	}

	runner := ingest.New(
		fetch.New(cfg.HTTPTimeout),
		extract.New(),
		st,
		cacheClient,
		stats.New(),
		cfg.FeedURLs,
	)

	if once {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.FetchInterval).Do(func() {
		runCtx, runCancel := context.WithTimeout(ctx, cfg.FetchInterval)
		defer runCancel()

		if err := runner.Run(runCtx); err != nil {
			log.Printf("snapshot run failed: %v", err)
		}
	}); err != nil {
		return err
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	log.Printf("snapshot scheduler started: %d pages every %s", len(cfg.FeedURLs), cfg.FetchInterval)
	<-ctx.Done()
	log.Println("Shutting down...")
	return nil
}
