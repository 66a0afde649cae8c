// Package store persists merged feed data as one JSON partition file per
// UTC calendar day, and maintains an index of all partitions.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/airband/feed-tracker/internal/merge"
	"github.com/airband/feed-tracker/internal/types"
)

const (
	// DateLayout is the partition key format.
	DateLayout = "2006-01-02"

	indexFilename = "partitions_index.json"
)

// PartitionFilename returns the partition filename for a YYYY-MM-DD date.
func PartitionFilename(date string) string {
	return fmt.Sprintf("feeds_%s.json", date)
}

// Store owns a data directory of per-day partition files plus the index.
// Writes to the same partition date are serialized with a per-date lock;
// reads need no locking because writes replace whole files.
type Store struct {
	dataDir string

	// Now names the partition for an ingestion run. Injected so tests
	// control the partition date.
	Now func() time.Time

	mu        sync.Mutex
	dateLocks map[string]*sync.Mutex
}

// New creates a Store rooted at dataDir, creating the directory if
// needed.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{
		dataDir:   dataDir,
		Now:       func() time.Time { return time.Now().UTC() },
		dateLocks: make(map[string]*sync.Mutex),
	}, nil
}

// MergeRun folds one run's records into the partition for the current
// UTC date: lock the date, read the existing partition (or start empty),
// merge, write the whole mapping back, and update the index. Only write
// failures are returned; a missing or corrupt existing partition is
// treated as empty.
func (s *Store) MergeRun(records []types.FeedRecord) (string, error) {
	date := s.Now().UTC().Format(DateLayout)
	return date, s.MergeRunForDate(date, records)
}

// MergeRunForDate is MergeRun against an explicit partition date.
func (s *Store) MergeRunForDate(date string, records []types.FeedRecord) error {
	lock := s.dateLock(date)
	lock.Lock()
	defer lock.Unlock()

	data := s.readOrEmpty(date)
	data = merge.Apply(data, records)

	if err := s.writePartition(date, data); err != nil {
		return err
	}
	return s.updateIndex(date)
}

// ReadPartition loads the partition for a YYYY-MM-DD date.
func (s *Store) ReadPartition(date string) (types.FeedData, error) {
	return s.readPartitionFile(PartitionFilename(date))
}

// ReadPartitionFile loads a partition by its filename, as listed in the
// index.
func (s *Store) ReadPartitionFile(filename string) (types.FeedData, error) {
	return s.readPartitionFile(filename)
}

func (s *Store) readPartitionFile(filename string) (types.FeedData, error) {
	raw, err := os.ReadFile(filepath.Join(s.dataDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", filename, err)
	}
	var data types.FeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse partition %s: %w", filename, err)
	}
	return data, nil
}

// readOrEmpty is the write-path baseline: a partition that is missing or
// unparseable never fails the run.
func (s *Store) readOrEmpty(date string) types.FeedData {
	data, err := s.ReadPartition(date)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("store: starting partition %s from empty: %v", date, err)
		}
		return make(types.FeedData)
	}
	return data
}

func (s *Store) writePartition(date string, data types.FeedData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode partition %s: %w", date, err)
	}
	path := filepath.Join(s.dataDir, PartitionFilename(date))
	if err := os.WriteFile(path, raw, 0o640); err != nil {
		return fmt.Errorf("failed to write partition %s: %w", date, err)
	}
	return nil
}

// ReadIndex loads the partition index. A missing or unparseable index is
// treated as empty.
func (s *Store) ReadIndex() types.PartitionIndex {
	var index types.PartitionIndex
	raw, err := os.ReadFile(filepath.Join(s.dataDir, indexFilename))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("store: treating index as empty: %v", err)
		}
		return index
	}
	if err := json.Unmarshal(raw, &index); err != nil {
		log.Printf("store: treating corrupt index as empty: %v", err)
		return types.PartitionIndex{}
	}
	return index
}

// updateIndex records a successful write to the partition for date,
// keeping descriptors unique by filename and sorted by date descending.
func (s *Store) updateIndex(date string) error {
	index := s.ReadIndex()
	filename := PartitionFilename(date)
	now := s.Now().UTC()

	found := false
	for i := range index.Partitions {
		if index.Partitions[i].Filename == filename {
			index.Partitions[i].LastModified = now
			found = true
			break
		}
	}
	if !found {
		index.Partitions = append(index.Partitions, types.PartitionDescriptor{
			Filename:     filename,
			Date:         date,
			Created:      now,
			LastModified: now,
		})
	}

	sortDescriptors(index.Partitions)

	raw, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode partition index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dataDir, indexFilename), raw, 0o640); err != nil {
		return fmt.Errorf("failed to write partition index: %w", err)
	}
	return nil
}

func (s *Store) dateLock(date string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.dateLocks[date]
	if !ok {
		lock = &sync.Mutex{}
		s.dateLocks[date] = lock
	}
	return lock
}

func sortDescriptors(descriptors []types.PartitionDescriptor) {
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Date > descriptors[j].Date
	})
}
