// Package shopper is the client-side application service. It owns the draft
// being composed, a cache of server state, and the mutation coordinator, and
// exposes the operations a shopping UI needs. All mutations apply
// optimistically where a cached view exists and reconcile against the server
// outcome.
package shopper

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hnordin/handla/internal/api"
	"github.com/hnordin/handla/internal/cache"
	"github.com/hnordin/handla/internal/draft"
	"github.com/hnordin/handla/internal/lifecycle"
	"github.com/hnordin/handla/internal/remote"
)

type Service struct {
	client       *api.Client
	draft        *draft.Store
	cache        *cache.Cache
	coord        *cache.Coordinator
	logger       *slog.Logger
	snapshotPath string
}

// New builds a Service around client. snapshotPath is where the draft is
// persisted between runs; empty disables persistence.
func New(client *api.Client, logger *slog.Logger, snapshotPath string) *Service {
	s := &Service{
		client:       client,
		draft:        draft.NewStore(),
		logger:       logger.With("component", "shopper"),
		snapshotPath: snapshotPath,
	}
	s.cache = cache.New(s.fetch)
	s.coord = cache.NewCoordinator(s.cache, logger)
	return s
}

// fetch loads server state for a cache key.
func (s *Service) fetch(ctx context.Context, key cache.Key) (any, error) {
	switch key {
	case cache.KeyLists:
		return s.client.Lists(ctx)
	case cache.KeyCurrentID:
		return s.client.CurrentListID(ctx)
	case cache.KeyCatalog:
		return s.client.Catalog(ctx)
	case cache.KeyTopItems:
		return s.client.TopItems(ctx)
	case cache.KeyTopCategories:
		return s.client.TopCategories(ctx)
	case cache.KeyTimeline:
		return s.client.MonthlyTimeline(ctx)
	}
	if id, ok := parseListKey(key); ok {
		return s.client.ListByID(ctx, id)
	}
	return nil, fmt.Errorf("unknown cache key %q", key)
}

func parseListKey(key cache.Key) (int64, bool) {
	rest, ok := strings.CutPrefix(string(key), "list/")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Draft returns the draft store for direct composition operations.
func (s *Service) Draft() *draft.Store {
	return s.draft
}

// LoadDraft restores the persisted draft, if any.
func (s *Service) LoadDraft() error {
	if s.snapshotPath == "" {
		return nil
	}
	return draft.Load(s.snapshotPath, s.draft)
}

// SaveDraft persists the current draft.
func (s *Service) SaveDraft() error {
	if s.snapshotPath == "" {
		return nil
	}
	return draft.Save(s.snapshotPath, s.draft)
}

// Lists returns summaries of the user's lists, newest first.
func (s *Service) Lists(ctx context.Context) ([]api.ListSummary, error) {
	v, err := s.cache.Get(ctx, cache.KeyLists)
	if err != nil {
		return nil, err
	}
	return v.([]api.ListSummary), nil
}

// CurrentListID returns the current list's id, nil when no list is current.
func (s *Service) CurrentListID(ctx context.Context) (*int64, error) {
	v, err := s.cache.Get(ctx, cache.KeyCurrentID)
	if err != nil {
		return nil, err
	}
	return v.(*int64), nil
}

// List returns one list with its items.
func (s *Service) List(ctx context.Context, id int64) (*api.List, error) {
	v, err := s.cache.Get(ctx, cache.ListKey(id))
	if err != nil {
		return nil, err
	}
	return v.(*api.List), nil
}

// CurrentList resolves the current list, nil when there is none.
func (s *Service) CurrentList(ctx context.Context) (*api.List, error) {
	id, err := s.CurrentListID(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, nil
	}
	return s.List(ctx, *id)
}

// Catalog returns the user's catalog grouped by category.
func (s *Service) Catalog(ctx context.Context) ([]api.CategoryWithItems, error) {
	v, err := s.cache.Get(ctx, cache.KeyCatalog)
	if err != nil {
		return nil, err
	}
	return v.([]api.CategoryWithItems), nil
}

// TopItems returns the user's most-bought items.
func (s *Service) TopItems(ctx context.Context) ([]api.UsageRank, error) {
	v, err := s.cache.Get(ctx, cache.KeyTopItems)
	if err != nil {
		return nil, err
	}
	return v.([]api.UsageRank), nil
}

// TopCategories returns the user's most-bought categories.
func (s *Service) TopCategories(ctx context.Context) ([]api.UsageRank, error) {
	v, err := s.cache.Get(ctx, cache.KeyTopCategories)
	if err != nil {
		return nil, err
	}
	return v.([]api.UsageRank), nil
}

// MonthlyTimeline returns the purchase timeline, oldest month first.
func (s *Service) MonthlyTimeline(ctx context.Context) ([]api.MonthlyUsage, error) {
	v, err := s.cache.Get(ctx, cache.KeyTimeline)
	if err != nil {
		return nil, err
	}
	return v.([]api.MonthlyUsage), nil
}

// CreateList submits the draft as a new list. The new list becomes current
// server-side, cancelling any previous current list. The draft is cleared
// only after the server accepts it, so a failed submit loses nothing.
func (s *Service) CreateList(ctx context.Context) (*api.List, error) {
	name := strings.TrimSpace(s.draft.Name())
	if name == "" {
		return nil, &remote.ValidationError{Message: "list name is required"}
	}
	items := s.draft.Items()
	if len(items) == 0 {
		return nil, &remote.ValidationError{Message: "list has to have at least one item"}
	}

	payload := make([]api.NewListItem, 0, len(items))
	for _, item := range items {
		payload = append(payload, api.NewListItem{ItemID: item.ID, Amount: item.Amount})
	}

	var created *api.List
	err := s.coord.Do(ctx, cache.Mutation{
		Name: "create-list",
		Dispatch: func(ctx context.Context) error {
			list, err := s.client.CreateList(ctx, name, payload)
			if err != nil {
				return err
			}
			created = list
			return nil
		},
		SettleKeys:     []cache.Key{cache.KeyLists, cache.KeyCurrentID},
		SettlePrefixes: []string{cache.StatsPrefix},
	})
	if err != nil {
		return nil, err
	}

	s.draft.Clear()
	if s.snapshotPath != "" {
		if err := draft.Save(s.snapshotPath, s.draft); err != nil {
			s.logger.Warn("persist cleared draft", "error", err)
		}
	}
	return created, nil
}

// ToggleItem flips a list item's checked state. The cached list view shows
// the new state immediately and is restored if the server rejects it.
func (s *Service) ToggleItem(ctx context.Context, listID, itemID int64, checked bool) error {
	key := cache.ListKey(listID)
	return s.coord.Do(ctx, cache.Mutation{
		Name: "toggle-item",
		Keys: []cache.Key{key},
		Update: func(_ cache.Key, current any) (any, bool) {
			list, ok := current.(*api.List)
			if !ok || list == nil {
				return nil, false
			}
			next := cloneList(list)
			for i := range next.Items {
				if next.Items[i].ID == itemID {
					next.Items[i].Checked = checked
					break
				}
			}
			return next, true
		},
		Dispatch: func(ctx context.Context) error {
			_, err := s.client.ToggleListItem(ctx, itemID, checked)
			return err
		},
		SettleKeys: []cache.Key{key},
	})
}

// RenameList updates the list's name, optimistically in both the detail view
// and the summaries.
func (s *Service) RenameList(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &remote.ValidationError{Message: "list name is required"}
	}

	key := cache.ListKey(id)
	return s.coord.Do(ctx, cache.Mutation{
		Name: "rename-list",
		Keys: []cache.Key{key, cache.KeyLists},
		Update: func(k cache.Key, current any) (any, bool) {
			switch k {
			case key:
				list, ok := current.(*api.List)
				if !ok || list == nil {
					return nil, false
				}
				next := cloneList(list)
				next.Name = name
				return next, true
			case cache.KeyLists:
				summaries, ok := current.([]api.ListSummary)
				if !ok {
					return nil, false
				}
				next := make([]api.ListSummary, len(summaries))
				copy(next, summaries)
				for i := range next {
					if next[i].ID == id {
						next[i].Name = name
					}
				}
				return next, true
			}
			return nil, false
		},
		Dispatch: func(ctx context.Context) error {
			_, err := s.client.UpdateListName(ctx, id, name)
			return err
		},
		SettleKeys: []cache.Key{key, cache.KeyLists},
	})
}

// ChangeStatus moves the current list to a terminal status. The current-id
// view optimistically flips to none, since either terminal status ends the
// list's run as current.
func (s *Service) ChangeStatus(ctx context.Context, to lifecycle.Status) error {
	if !to.Valid() || to == lifecycle.StatusCurrent {
		return &remote.ValidationError{Message: "status must be completed or cancelled"}
	}

	return s.coord.Do(ctx, cache.Mutation{
		Name: "change-status",
		Keys: []cache.Key{cache.KeyCurrentID},
		Update: func(_ cache.Key, current any) (any, bool) {
			return (*int64)(nil), true
		},
		Dispatch: func(ctx context.Context) error {
			_, err := s.client.ChangeListStatus(ctx, to)
			return err
		},
		SettleKeys:     []cache.Key{cache.KeyCurrentID, cache.KeyLists},
		SettlePrefixes: []string{"list/"},
	})
}

// AddCatalogItem creates a catalog item, creating its category on demand.
func (s *Service) AddCatalogItem(ctx context.Context, req api.CreateCatalogItemRequest) (*api.CatalogItem, error) {
	var created *api.CatalogItem
	err := s.coord.Do(ctx, cache.Mutation{
		Name: "add-catalog-item",
		Dispatch: func(ctx context.Context) error {
			item, err := s.client.CreateCatalogItem(ctx, req)
			if err != nil {
				return err
			}
			created = item
			return nil
		},
		SettleKeys: []cache.Key{cache.KeyCatalog},
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteCatalogItem removes a catalog item, optimistically dropping it (and
// its category, when it empties) from the cached catalog. The item also
// leaves any draft it is on.
func (s *Service) DeleteCatalogItem(ctx context.Context, id int64) error {
	err := s.coord.Do(ctx, cache.Mutation{
		Name: "delete-catalog-item",
		Keys: []cache.Key{cache.KeyCatalog},
		Update: func(_ cache.Key, current any) (any, bool) {
			categories, ok := current.([]api.CategoryWithItems)
			if !ok {
				return nil, false
			}
			return removeCatalogItem(categories, id), true
		},
		Dispatch: func(ctx context.Context) error {
			return s.client.DeleteCatalogItem(ctx, id)
		},
		SettleKeys: []cache.Key{cache.KeyCatalog},
	})
	if err != nil {
		return err
	}

	for _, group := range s.draft.Categories() {
		for _, item := range group.Items {
			if item.ID == id {
				s.draft.RemoveItem(item.ID, item.Category)
			}
		}
	}
	return nil
}

func cloneList(list *api.List) *api.List {
	next := *list
	next.Items = make([]api.ListItem, len(list.Items))
	copy(next.Items, list.Items)
	return &next
}

func removeCatalogItem(categories []api.CategoryWithItems, id int64) []api.CategoryWithItems {
	next := make([]api.CategoryWithItems, 0, len(categories))
	for _, cat := range categories {
		kept := make([]api.CatalogItem, 0, len(cat.Items))
		for _, item := range cat.Items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			continue
		}
		cat.Items = kept
		next = append(next, cat)
	}
	return next
}
