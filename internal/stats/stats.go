// Package stats tracks ingestion-run statistics.
package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Stats accumulates counters across ingestion runs. Counter updates are
// atomic so the fetch/extract goroutines can report without locking.
type Stats struct {
	PagesFetched     uint64
	PagesFailed      uint64
	RecordsExtracted uint64
	PartitionWrites  uint64
	RunsCompleted    uint64
	RunsFailed       uint64

	LastRunTime time.Time

	mu sync.RWMutex
}

// New creates a Stats instance.
func New() *Stats {
	return &Stats{}
}

// IncrementPagesFetched increments the fetched-page counter.
func (s *Stats) IncrementPagesFetched() {
	atomic.AddUint64(&s.PagesFetched, 1)
}

// IncrementPagesFailed increments the failed-page counter.
func (s *Stats) IncrementPagesFailed() {
	atomic.AddUint64(&s.PagesFailed, 1)
}

// AddRecordsExtracted adds to the extracted-record counter.
func (s *Stats) AddRecordsExtracted(n int) {
	atomic.AddUint64(&s.RecordsExtracted, uint64(n))
}

// IncrementPartitionWrites increments the partition-write counter.
func (s *Stats) IncrementPartitionWrites() {
	atomic.AddUint64(&s.PartitionWrites, 1)
}

// IncrementRunsCompleted increments the completed-run counter.
func (s *Stats) IncrementRunsCompleted() {
	atomic.AddUint64(&s.RunsCompleted, 1)
}

// IncrementRunsFailed increments the failed-run counter.
func (s *Stats) IncrementRunsFailed() {
	atomic.AddUint64(&s.RunsFailed, 1)
}

// UpdateLastRunTime records the end of the most recent run.
func (s *Stats) UpdateLastRunTime(t time.Time) {
	s.mu.Lock()
	s.LastRunTime = t
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics.
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"pages_fetched":     atomic.LoadUint64(&s.PagesFetched),
		"pages_failed":      atomic.LoadUint64(&s.PagesFailed),
		"records_extracted": atomic.LoadUint64(&s.RecordsExtracted),
		"partition_writes":  atomic.LoadUint64(&s.PartitionWrites),
		"runs_completed":    atomic.LoadUint64(&s.RunsCompleted),
		"runs_failed":       atomic.LoadUint64(&s.RunsFailed),
		"last_run_time":     s.LastRunTime,
	}
}

// String returns a string representation of the statistics.
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Pages Fetched: %d\n"+
			"Pages Failed: %d\n"+
			"Records Extracted: %d\n"+
			"Partition Writes: %d\n"+
			"Runs Completed: %d\n"+
			"Runs Failed: %d\n"+
			"Last Run Time: %s",
		stats["pages_fetched"],
		stats["pages_failed"],
		stats["records_extracted"],
		stats["partition_writes"],
		stats["runs_completed"],
		stats["runs_failed"],
		stats["last_run_time"],
	)
}
