package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hnordin/handla/internal/lifecycle"
	"github.com/hnordin/handla/internal/model"
)

// ErrNoCurrentList is returned by status changes when the user has no list in
// the current state.
var ErrNoCurrentList = errors.New("no current list")

type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

func scanListRow(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	err := scanner.Scan(&l.ID, &l.UserID, &l.Name, &l.State, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `id, user_id, name, state, created_at`

// NewListItem is one entry of a list-creation payload.
type NewListItem struct {
	ItemID int64
	Amount int
}

// Create persists a new list in the current state. Any existing current list
// owned by the same user is cancelled first, in the same transaction, so at
// most one current list exists per user at any instant.
func (s *ListStore) Create(userID int64, name string, items []NewListItem) (*model.ListWithItems, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE lists SET state = ? WHERE user_id = ? AND state = ?`,
		string(lifecycle.StatusCancelled), userID, string(lifecycle.StatusCurrent),
	)
	if err != nil {
		return nil, fmt.Errorf("cancel previous current list: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO lists (user_id, name, state) VALUES (?, ?, ?)`,
		userID, name, string(lifecycle.StatusCurrent),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	listID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, item := range items {
		_, err := tx.Exec(
			`INSERT INTO list_items (list_id, item_id, amount) VALUES (?, ?, ?)`,
			listID, item.ItemID, item.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("insert list item %d: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(listID)
}

// GetByID returns a list with its items joined against the catalog, or nil if
// the list does not exist.
func (s *ListStore) GetByID(listID int64) (*model.ListWithItems, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ?`, listID)
	l, err := scanListRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	items, err := s.itemsByList(listID)
	if err != nil {
		return nil, err
	}
	return &model.ListWithItems{List: *l, Items: items}, nil
}

const listItemCols = `li.id, li.list_id, li.item_id, i.name, c.name, li.amount, li.checked, li.created_at`

func scanListItem(scanner interface{ Scan(...any) error }) (*model.ListItem, error) {
	var item model.ListItem
	var checked int
	err := scanner.Scan(
		&item.ID, &item.ListID, &item.ItemID, &item.Name, &item.Category,
		&item.Amount, &checked, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Checked = checked != 0
	return &item, nil
}

func (s *ListStore) itemsByList(listID int64) ([]model.ListItem, error) {
	rows, err := s.db.Query(
		`SELECT `+listItemCols+` FROM list_items li
		 JOIN items i ON i.id = li.item_id
		 JOIN categories c ON c.id = i.category_id
		 WHERE li.list_id = ?
		 ORDER BY c.name COLLATE NOCASE ASC, i.name COLLATE NOCASE ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ListItem
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListByUser returns summaries of all the user's lists, newest first.
func (s *ListStore) ListByUser(userID int64) ([]model.ListSummary, error) {
	rows, err := s.db.Query(
		`SELECT id, name, state, created_at FROM lists WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ListSummary
	for rows.Next() {
		var l model.ListSummary
		if err := rows.Scan(&l.ID, &l.Name, &l.State, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan list summary: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// CurrentListID returns the id of the user's current list, or nil when the
// user has none.
func (s *ListStore) CurrentListID(userID int64) (*int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM lists WHERE user_id = ? AND state = ?`,
		userID, string(lifecycle.StatusCurrent),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current list id: %w", err)
	}
	return &id, nil
}

// GetItemByID returns a single list entry for the user, or nil if absent.
func (s *ListStore) GetItemByID(userID, listItemID int64) (*model.ListItem, error) {
	row := s.db.QueryRow(
		`SELECT `+listItemCols+` FROM list_items li
		 JOIN items i ON i.id = li.item_id
		 JOIN categories c ON c.id = i.category_id
		 JOIN lists l ON l.id = li.list_id
		 WHERE li.id = ? AND l.user_id = ?`,
		listItemID, userID,
	)
	item, err := scanListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list item: %w", err)
	}
	return item, nil
}

// ToggleItem sets an entry's checked flag. Returns the updated entry, or nil
// if no such entry belongs to the user.
func (s *ListStore) ToggleItem(userID, listItemID int64, checked bool) (*model.ListItem, error) {
	item, err := s.GetItemByID(userID, listItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	val := 0
	if checked {
		val = 1
	}
	if _, err := s.db.Exec(`UPDATE list_items SET checked = ? WHERE id = ?`, val, listItemID); err != nil {
		return nil, fmt.Errorf("toggle list item: %w", err)
	}
	return s.GetItemByID(userID, listItemID)
}

// Rename updates a list's name. Returns the updated list, or nil if the list
// does not belong to the user.
func (s *ListStore) Rename(userID, listID int64, name string) (*model.List, error) {
	result, err := s.db.Exec(
		`UPDATE lists SET name = ? WHERE id = ? AND user_id = ?`,
		name, listID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("rename list: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ?`, listID)
	l, err := scanListRow(row)
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// ChangeStatus transitions the user's current list to the given terminal
// state. Returns ErrNoCurrentList when the user has no current list, or a
// lifecycle error when the transition is not permitted.
func (s *ListStore) ChangeStatus(userID int64, to lifecycle.Status) (*model.List, error) {
	row := s.db.QueryRow(
		`SELECT `+listCols+` FROM lists WHERE user_id = ? AND state = ?`,
		userID, string(lifecycle.StatusCurrent),
	)
	l, err := scanListRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNoCurrentList
	}
	if err != nil {
		return nil, fmt.Errorf("get current list: %w", err)
	}

	next, err := lifecycle.Transition(lifecycle.Status(l.State), to)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`UPDATE lists SET state = ? WHERE id = ?`, string(next), l.ID); err != nil {
		return nil, fmt.Errorf("update list state: %w", err)
	}
	l.State = string(next)
	return l, nil
}
