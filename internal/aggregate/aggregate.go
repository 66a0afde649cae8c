// Package aggregate merges date-partitioned feed data across an
// arbitrary date range into one chronologically normalized result.
package aggregate

import (
	"log"
	"sort"
	"time"

	"github.com/airband/feed-tracker/internal/store"
	"github.com/airband/feed-tracker/internal/types"
)

// Query selects partitions by inclusive date range and optionally
// restricts the result to named feeds. A zero Start means the earliest
// representable date; a zero End means the current UTC date.
type Query struct {
	Start     time.Time
	End       time.Time
	FeedNames []string
}

// Engine answers aggregation queries against a partition store.
type Engine struct {
	store *store.Store

	// Now supplies the default query end date.
	Now func() time.Time
}

// New creates an Engine over the given store.
func New(st *store.Store) *Engine {
	return &Engine{
		store: st,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run loads every partition in the query's date range and merges them
// into a single mapping with the same shape as one partition file. A
// missing index yields an empty result; unreadable partitions are
// skipped and logged without aborting the rest.
func (e *Engine) Run(q Query) types.FeedData {
	result := make(types.FeedData)

	index := e.store.ReadIndex()
	if len(index.Partitions) == 0 {
		return result
	}

	startDate := ""
	if !q.Start.IsZero() {
		startDate = q.Start.UTC().Format(store.DateLayout)
	}
	endDate := e.Now().UTC().Format(store.DateLayout)
	if !q.End.IsZero() {
		endDate = q.End.UTC().Format(store.DateLayout)
	}

	var filter map[string]struct{}
	if len(q.FeedNames) > 0 {
		filter = make(map[string]struct{}, len(q.FeedNames))
		for _, name := range q.FeedNames {
			filter[name] = struct{}{}
		}
	}

	for _, desc := range index.Partitions {
		if desc.Date < startDate || desc.Date > endDate {
			continue
		}

		data, err := e.store.ReadPartitionFile(desc.Filename)
		if err != nil {
			log.Printf("aggregate: skipping partition %s: %v", desc.Filename, err)
			continue
		}

		for feedName, series := range data {
			if filter != nil {
				if _, keep := filter[feedName]; !keep {
					continue
				}
			}

			existing, seen := result[feedName]
			if !seen {
				// First sighting: take the partition's series as-is.
				// Static data from later partitions never replaces it.
				result[feedName] = series
				continue
			}
			existing.TimeSeries = append(existing.TimeSeries, series.TimeSeries...)
		}
	}

	// Partitions were visited in index order, not chronological order;
	// normalize every series.
	for _, series := range result {
		entries := series.TimeSeries
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		})
	}

	return result
}
