package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Snapshot is the on-disk shape of a draft. The field names mirror what the
// web client persisted so old snapshot files keep loading.
type Snapshot struct {
	DraftName  string            `json:"draftName"`
	Categories map[string][]Item `json:"categories"`
}

// Snapshot copies the current draft state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := make(map[string][]Item, len(s.categories))
	for name, items := range s.categories {
		dup := make([]Item, len(items))
		copy(dup, items)
		cats[name] = dup
	}
	return Snapshot{DraftName: s.name, Categories: cats}
}

// Restore replaces the draft with the snapshot's contents, repairing
// anything that violates the store's invariants rather than rejecting the
// whole snapshot: duplicate (category, id) pairs keep their first
// occurrence, items with a non-positive amount or a category field that
// disagrees with their bucket are dropped, and empty buckets are removed.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = snap.DraftName
	s.categories = make(map[string][]Item, len(snap.Categories))
	for category, items := range snap.Categories {
		seen := make(map[int64]bool, len(items))
		var kept []Item
		for _, item := range items {
			if seen[item.ID] || item.Amount < 1 || item.Category != category {
				continue
			}
			seen[item.ID] = true
			kept = append(kept, item)
		}
		if len(kept) > 0 {
			s.categories[category] = kept
		}
	}
}

// Load reads a snapshot file and restores it into the store. A missing file
// is not an error; the draft simply starts empty.
func Load(path string, s *Store) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read draft snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode draft snapshot: %w", err)
	}
	s.Restore(snap)
	return nil
}

// Save writes the store's snapshot to path, creating parent directories as
// needed.
func Save(path string, s *Store) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft snapshot: %w", err)
	}
	return nil
}
