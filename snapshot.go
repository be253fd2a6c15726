package hpolog

import (
	"fmt"
	"sort"
)

// Snapshot is the persisted checkpoint of a Registry.
//
// Table maps canonical keys to IDs. A valid snapshot has exactly Counter
// entries whose IDs are 0..Counter-1.
type Snapshot struct {
	Counter int            `json:"counter" yaml:"counter"`
	Table   map[string]int `json:"table" yaml:"table"`
}

// Validate checks the snapshot invariants.
func (s Snapshot) Validate() error {
	if s.Counter < 0 {
		return fmt.Errorf("%w: negative counter %d", ErrInvalidSnapshot, s.Counter)
	}
	if s.Counter != len(s.Table) {
		return fmt.Errorf(
			"%w: counter %d does not match %d table entries",
			ErrInvalidSnapshot, s.Counter, len(s.Table))
	}
	seen := make([]bool, s.Counter)
	for key, id := range s.Table {
		if id < 0 || id >= s.Counter {
			return fmt.Errorf("%w: id %d of %s out of range", ErrInvalidSnapshot, id, key)
		}
		if seen[id] {
			return fmt.Errorf("%w: id %d assigned twice", ErrInvalidSnapshot, id)
		}
		seen[id] = true
	}
	return nil
}

// SnapshotEntry is one row of a snapshot table.
type SnapshotEntry struct {
	ID  int
	Key string
}

// Entries returns the table rows ordered by ID.
func (s Snapshot) Entries() []SnapshotEntry {
	entries := make([]SnapshotEntry, 0, len(s.Table))
	for key, id := range s.Table {
		entries = append(entries, SnapshotEntry{ID: id, Key: key})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ID != entries[j].ID {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
