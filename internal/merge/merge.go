// Package merge folds one ingestion run's extracted records into a
// per-feed time-series mapping.
package merge

import (
	"strings"

	"github.com/airband/feed-tracker/internal/types"
)

// Apply merges the run's records, in order, into data and returns it.
// The same feed appearing on multiple overlapping category pages
// contributes exactly one time-series entry: a processed set scoped to
// this call guards against duplicates. Static data is set once, on the
// first sighting of a feed name, and never overwritten.
func Apply(data types.FeedData, records []types.FeedRecord) types.FeedData {
	if data == nil {
		data = make(types.FeedData)
	}

	processed := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if _, done := processed[rec.FeedName]; done {
			continue
		}
		processed[rec.FeedName] = struct{}{}

		series, exists := data[rec.FeedName]
		if !exists {
			series = &types.FeedSeries{
				StaticData: types.StaticData{
					ICAO:         strings.ToUpper(rec.ICAO),
					Location:     rec.Location,
					Frequencies:  rec.Frequencies,
					ChannelTypes: append([]string(nil), rec.ChannelTypes...),
				},
			}
			data[rec.FeedName] = series
		}

		series.TimeSeries = append(series.TimeSeries, types.TimeSeriesEntry{
			Timestamp:      rec.Timestamp,
			Status:         rec.Status,
			Listeners:      rec.Listeners,
			TotalListeners: rec.TotalListeners,
			METAR:          rec.METAR,
		})
	}

	return data
}
