package stats

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIncrements(t *testing.T) {
	s := New()

	s.IncrementPagesFetched()
	s.IncrementPagesFetched()
	s.IncrementPagesFailed()
	s.AddRecordsExtracted(42)
	s.IncrementPartitionWrites()
	s.IncrementRunsCompleted()
	s.IncrementRunsFailed()

	got := s.GetStats()
	want := map[string]uint64{
		"pages_fetched":     2,
		"pages_failed":      1,
		"records_extracted": 42,
		"partition_writes":  1,
		"runs_completed":    1,
		"runs_failed":       1,
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("GetStats()[%q] = %v, want %d", key, got[key], value)
		}
	}
}

func TestUpdateLastRunTime(t *testing.T) {
	s := New()
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	s.UpdateLastRunTime(ts)

	got, ok := s.GetStats()["last_run_time"].(time.Time)
	if !ok {
		t.Fatal("last_run_time has unexpected type")
	}
	if !got.Equal(ts) {
		t.Errorf("last_run_time = %s, want %s", got, ts)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.IncrementPagesFetched()
			s.AddRecordsExtracted(2)
		}()
	}
	wg.Wait()

	got := s.GetStats()
	if got["pages_fetched"] != uint64(50) {
		t.Errorf("pages_fetched = %v, want 50", got["pages_fetched"])
	}
	if got["records_extracted"] != uint64(100) {
		t.Errorf("records_extracted = %v, want 100", got["records_extracted"])
	}
}

func TestString(t *testing.T) {
	s := New()
	s.IncrementPagesFetched()

	out := s.String()
	if !strings.Contains(out, "Pages Fetched: 1") {
		t.Errorf("String() = %q, missing fetched-page count", out)
	}
}
