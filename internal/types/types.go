package types

import (
	"time"
)

// Feed status values as they appear in stored time-series entries.
const (
	StatusUp      = "UP"
	StatusDown    = "DOWN"
	StatusUnknown = "UNKNOWN"
)

// NormalizeStatus maps raw status-cell text onto the three stored values.
func NormalizeStatus(raw string) string {
	switch raw {
	case "UP", "Up", "up":
		return StatusUp
	case "DOWN", "Down", "down":
		return StatusDown
	default:
		return StatusUnknown
	}
}

// FeedRecord represents one feed row extracted from a category page.
// Records live only for the duration of a single ingestion run.
type FeedRecord struct {
	ICAO           string    `json:"icao"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	Listeners      int       `json:"listeners"`
	TotalListeners int       `json:"total_listeners"`
	ChannelTypes   []string  `json:"channel_types"`
	METAR          string    `json:"metar"`
	Frequencies    string    `json:"frequencies"`
	Timestamp      time.Time `json:"timestamp"`
	FeedName       string    `json:"feed_name"`
}

// StaticData holds the per-feed fields captured on first sighting and
// never overwritten afterwards.
type StaticData struct {
	ICAO         string   `json:"icao"`
	Location     string   `json:"location"`
	Frequencies  string   `json:"frequencies"`
	ChannelTypes []string `json:"channel_types"`
}

// TimeSeriesEntry is one sample of a feed's mutable state.
type TimeSeriesEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
	Listeners      int       `json:"listeners"`
	TotalListeners int       `json:"total_listeners"`
	METAR          string    `json:"metar"`
}

// FeedSeries is the durable unit stored per feed name.
type FeedSeries struct {
	StaticData StaticData        `json:"static_data"`
	TimeSeries []TimeSeriesEntry `json:"time_series"`
}

// FeedData maps feed names to their series. It is the payload shape of a
// partition file and of an aggregation result.
type FeedData map[string]*FeedSeries

// PartitionDescriptor describes one per-day partition file.
type PartitionDescriptor struct {
	Filename     string    `json:"filename"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

// PartitionIndex lists every known partition, unique by filename and
// kept sorted by date descending.
type PartitionIndex struct {
	Partitions []PartitionDescriptor `json:"partitions"`
}
