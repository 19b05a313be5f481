// Package seenstore persists the set of opportunity URLs that have
// already been reported, so a listing is never emailed twice.
package seenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record holds the metadata stored for a seen URL.
type Record struct {
	FirstSeenAt time.Time `json:"firstSeenAt"`
}

// Set is the in-memory seen set, keyed by canonical URL. Insertions
// only; entries are never removed by the scanner.
type Set struct {
	records map[string]Record
}

// NewSet creates an empty seen set.
func NewSet() *Set {
	return &Set{records: make(map[string]Record)}
}

// Contains reports whether the key is already in the set.
func (s *Set) Contains(key string) bool {
	_, ok := s.records[key]

	return ok
}

// Add inserts a key with its first-seen timestamp. Re-adding a known
// key is a no-op so the original timestamp is preserved.
func (s *Set) Add(key string, firstSeen time.Time) {
	if _, ok := s.records[key]; ok {
		return
	}

	s.records[key] = Record{FirstSeenAt: firstSeen}
}

// Get returns the record for a key.
func (s *Set) Get(key string) (Record, bool) {
	rec, ok := s.records[key]

	return rec, ok
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	return len(s.records)
}

// Load reads the seen set from disk. A missing file yields an empty
// set with no error; an unreadable or corrupt file yields an empty set
// alongside the error so the caller can log it and continue. The run
// must never abort because the store could not be read: re-notifying
// is preferred over silently dropping a run.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSet(), nil
		}

		return NewSet(), fmt.Errorf("failed to read seen file %s: %w", path, err)
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return NewSet(), fmt.Errorf("failed to parse seen file %s: %w", path, err)
	}

	if records == nil {
		records = make(map[string]Record)
	}

	return &Set{records: records}, nil
}

// Save writes the full set atomically: marshal to a temp file in the
// same directory, then rename over the target. A crash mid-write never
// leaves a truncated store behind.
func (s *Set) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create seen dir: %w", err)
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen set: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".seen-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp seen file: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("failed to write temp seen file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("failed to close temp seen file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("failed to replace seen file: %w", err)
	}

	return nil
}
