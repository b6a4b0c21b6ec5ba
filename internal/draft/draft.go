// Package draft holds the in-memory shopping list a user is assembling
// before it is persisted. All operations are synchronous and never fail:
// every input either applies cleanly or is a no-op, so callers never handle
// draft-mutation errors.
package draft

import (
	"sort"
	"strings"
	"sync"
)

// Item is one catalog item placed on the draft, with the amount to buy.
type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Amount   int    `json:"amount"`
}

// Direction selects whether ChangeAmount adds or removes.
type Direction string

const (
	Increment Direction = "increment"
	Decrement Direction = "decrement"
)

// Store aggregates draft items grouped by category name. Two invariants hold
// after every operation: no category bucket is empty, and at most one item
// exists per (category, id) pair.
type Store struct {
	mu         sync.Mutex
	name       string
	categories map[string][]Item
}

func NewStore() *Store {
	return &Store{categories: make(map[string][]Item)}
}

// AddItem inserts the item with amount 1. Adding an item already present in
// the same category is a no-op, keeping the operation idempotent for replay.
func (s *Store) AddItem(id int64, name, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id, category) >= 0 {
		return
	}
	s.categories[category] = append(s.categories[category], Item{
		ID:       id,
		Name:     name,
		Category: category,
		Amount:   1,
	})
}

// RemoveItem deletes the matching entry. The category bucket is deleted when
// it becomes empty. No-op if absent.
func (s *Store) RemoveItem(id int64, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id, category)
}

// ChangeAmount adjusts an item's amount by step (1 when step < 1). A
// decrement that would take the amount to zero or below removes the item
// instead; a non-positive amount is never retained.
func (s *Store) ChangeAmount(id int64, category string, dir Direction, step int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id, category)
	if idx < 0 {
		return
	}
	if step < 1 {
		step = 1
	}
	delta := step
	if dir == Decrement {
		delta = -step
	}

	items := s.categories[category]
	items[idx].Amount += delta
	if items[idx].Amount <= 0 {
		s.remove(id, category)
	}
}

// SetName overwrites the draft's name. No trimming or validation happens
// here; that is the caller's concern.
func (s *Store) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Clear empties all buckets and resets the name.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make(map[string][]Item)
	s.name = ""
}

// Contains reports whether the (category, id) pair is on the draft.
func (s *Store) Contains(id int64, category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id, category) >= 0
}

// Empty reports whether the draft holds no items.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories) == 0
}

// Items returns all draft items across categories, order-irrelevant. Used to
// build the list-creation payload.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Item
	for _, items := range s.categories {
		all = append(all, items...)
	}
	return all
}

// CategoryGroup is one category bucket with its items.
type CategoryGroup struct {
	Name  string
	Items []Item
}

// Categories returns the buckets ordered case-insensitively by category
// name. The ordering is a user-facing guarantee.
func (s *Store) Categories() []CategoryGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make([]CategoryGroup, 0, len(s.categories))
	for name, items := range s.categories {
		dup := make([]Item, len(items))
		copy(dup, items)
		groups = append(groups, CategoryGroup{Name: name, Items: dup})
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
	return groups
}

// indexOf returns the position of (id, category) in its bucket, or -1.
// Callers must hold s.mu.
func (s *Store) indexOf(id int64, category string) int {
	for i, item := range s.categories[category] {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// remove deletes the entry and its bucket when the bucket empties. Callers
// must hold s.mu.
func (s *Store) remove(id int64, category string) {
	items, ok := s.categories[category]
	if !ok {
		return
	}
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		delete(s.categories, category)
		return
	}
	s.categories[category] = kept
}
