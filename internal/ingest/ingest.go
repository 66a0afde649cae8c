// Package ingest orchestrates one snapshot run: fetch every category
// page, extract records, merge them into the day's partition, and
// refresh the latest-status cache.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airband/feed-tracker/internal/cache"
	"github.com/airband/feed-tracker/internal/extract"
	"github.com/airband/feed-tracker/internal/fetch"
	"github.com/airband/feed-tracker/internal/stats"
	"github.com/airband/feed-tracker/internal/store"
	"github.com/airband/feed-tracker/internal/types"
)

// Runner executes snapshot runs against a fixed set of category pages.
type Runner struct {
	fetcher   fetch.PageFetcher
	extractor *extract.Extractor
	store     *store.Store
	cache     *cache.Client // nil disables cache updates
	stats     *stats.Stats
	urls      []string
}

// New creates a Runner. The cache client may be nil.
func New(fetcher fetch.PageFetcher, extractor *extract.Extractor, st *store.Store, c *cache.Client, statistics *stats.Stats, urls []string) *Runner {
	return &Runner{
		fetcher:   fetcher,
		extractor: extractor,
		store:     st,
		cache:     c,
		stats:     statistics,
		urls:      urls,
	}
}

// Run performs one snapshot run. Pages are fetched and extracted
// concurrently (extraction is pure); the merge into the day's partition
// is a single sequential pass, which is what makes run-level dedup and
// the single-writer-per-date requirement hold. Per-page failures are
// logged and skipped; only a partition write failure fails the run.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()
	start := time.Now()
	log.Printf("ingest: run %s starting for %d pages", runID, len(r.urls))

	pageRecords := make([][]types.FeedRecord, len(r.urls))

	var wg sync.WaitGroup
	for i, url := range r.urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()

			html, err := r.fetcher.FetchPage(ctx, url)
			if err != nil {
				r.stats.IncrementPagesFailed()
				log.Printf("ingest: run %s: skipping page %s: %v", runID, url, err)
				return
			}
			r.stats.IncrementPagesFetched()

			records := r.extractor.ExtractPage(html)
			r.stats.AddRecordsExtracted(len(records))
			pageRecords[i] = records
		}(i, url)
	}
	wg.Wait()

	if ctx.Err() != nil {
		r.stats.IncrementRunsFailed()
		return ctx.Err()
	}

	// Flatten in page order so merge dedup keeps the first sighting.
	var records []types.FeedRecord
	for _, page := range pageRecords {
		records = append(records, page...)
	}

	date, err := r.store.MergeRun(records)
	if err != nil {
		r.stats.IncrementRunsFailed()
		return fmt.Errorf("run %s: %w", runID, err)
	}
	r.stats.IncrementPartitionWrites()

	r.refreshCache(ctx, records)

	r.stats.IncrementRunsCompleted()
	r.stats.UpdateLastRunTime(time.Now().UTC())
	log.Printf("ingest: run %s merged %d records into partition %s in %s",
		runID, len(records), date, time.Since(start).Round(time.Millisecond))
	return nil
}

// refreshCache stores the newest observation per feed, mirroring the
// merge engine's first-sighting-wins dedup. Cache failures never fail
// the run.
func (r *Runner) refreshCache(ctx context.Context, records []types.FeedRecord) {
	if r.cache == nil {
		return
	}

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, done := seen[rec.FeedName]; done {
			continue
		}
		seen[rec.FeedName] = struct{}{}

		status := &cache.LatestStatus{
			FeedName: rec.FeedName,
			StaticData: types.StaticData{
				ICAO:         strings.ToUpper(rec.ICAO),
				Location:     rec.Location,
				Frequencies:  rec.Frequencies,
				ChannelTypes: rec.ChannelTypes,
			},
			Entry: types.TimeSeriesEntry{
				Timestamp:      rec.Timestamp,
				Status:         rec.Status,
				Listeners:      rec.Listeners,
				TotalListeners: rec.TotalListeners,
				METAR:          rec.METAR,
			},
		}
		if err := r.cache.StoreLatest(ctx, status); err != nil {
			log.Printf("ingest: failed to cache latest status for %q: %v", rec.FeedName, err)
		}
	}
}
