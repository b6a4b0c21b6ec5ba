package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hnordin/handla/internal/model"
)

// ErrItemNotFound is returned by DeleteItem when the user owns no such
// catalog item.
var ErrItemNotFound = errors.New("catalog item not found")

type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, user_id, name, created_at`

// Categories returns the user's catalog grouped by category, items included.
func (s *CatalogStore) Categories(userID int64) ([]model.CategoryWithItems, error) {
	rows, err := s.db.Query(
		`SELECT `+categoryCols+` FROM categories WHERE user_id = ? ORDER BY name COLLATE NOCASE ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.CategoryWithItems
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, model.CategoryWithItems{ID: c.ID, Name: c.Name})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		items, err := s.itemsByCategory(categories[i].ID, categories[i].Name)
		if err != nil {
			return nil, err
		}
		categories[i].Items = items
	}
	return categories, nil
}

func (s *CatalogStore) itemsByCategory(categoryID int64, categoryName string) ([]model.CatalogItem, error) {
	rows, err := s.db.Query(
		`SELECT id, category_id, name, description, created_at FROM items WHERE category_id = ? ORDER BY name COLLATE NOCASE ASC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		var item model.CatalogItem
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Desc, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Category = categoryName
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetCategoryByName returns the user's category with the given name, or nil.
func (s *CatalogStore) GetCategoryByName(userID int64, name string) (*model.Category, error) {
	row := s.db.QueryRow(
		`SELECT `+categoryCols+` FROM categories WHERE user_id = ? AND name = ?`,
		userID, name,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// GetItemByID returns a catalog item owned by the user, or nil if absent.
func (s *CatalogStore) GetItemByID(userID, itemID int64) (*model.CatalogItem, error) {
	row := s.db.QueryRow(
		`SELECT i.id, i.category_id, i.name, i.description, c.name, i.created_at
		 FROM items i JOIN categories c ON c.id = i.category_id
		 WHERE i.id = ? AND c.user_id = ?`,
		itemID, userID,
	)
	var item model.CatalogItem
	err := row.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Desc, &item.Category, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get catalog item: %w", err)
	}
	return &item, nil
}

// CreateItem adds an item to the user's catalog. When categoryID is nil the
// user's category named categoryName is used, created first if it does not
// exist yet.
func (s *CatalogStore) CreateItem(userID int64, categoryID *int64, categoryName, name, desc string) (*model.CatalogItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var catID int64
	if categoryID != nil {
		catID = *categoryID
	} else {
		err := tx.QueryRow(
			`SELECT id FROM categories WHERE user_id = ? AND name = ?`,
			userID, categoryName,
		).Scan(&catID)
		if err == sql.ErrNoRows {
			result, err := tx.Exec(
				`INSERT INTO categories (user_id, name) VALUES (?, ?)`,
				userID, categoryName,
			)
			if err != nil {
				return nil, fmt.Errorf("insert category: %w", err)
			}
			catID, err = result.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("last insert id: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
	}

	result, err := tx.Exec(
		`INSERT INTO items (category_id, name, description) VALUES (?, ?, ?)`,
		catID, name, desc,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetItemByID(userID, itemID)
}

// DeleteItem removes an item from the user's catalog. The item's category is
// removed as well when the item was its last member. Returns ErrItemNotFound
// when the user owns no such item.
func (s *CatalogStore) DeleteItem(userID, itemID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var catID int64
	err = tx.QueryRow(
		`SELECT i.category_id FROM items i JOIN categories c ON c.id = i.category_id
		 WHERE i.id = ? AND c.user_id = ?`,
		itemID, userID,
	).Scan(&catID)
	if err == sql.ErrNoRows {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("find item category: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM items WHERE id = ?`, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	var remaining int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM items WHERE category_id = ?`, catID).Scan(&remaining); err != nil {
		return fmt.Errorf("count remaining items: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, catID); err != nil {
			return fmt.Errorf("delete empty category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
