package model

import "time"

type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CatalogItem struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"-"`
	Name       string    `json:"name"`
	Desc       string    `json:"desc"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// CategoryWithItems is the shape the catalog read endpoint returns:
// a category bucket with its items, each item carrying the category name.
type CategoryWithItems struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Items []CatalogItem `json:"items"`
}
