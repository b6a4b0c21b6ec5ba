package api

import (
	"time"

	"github.com/hnordin/handla/internal/lifecycle"
)

// The types here mirror the server's wire format field for field.

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CatalogItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryWithItems struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Items []CatalogItem `json:"items"`
}

type List struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Name      string           `json:"name"`
	State     lifecycle.Status `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
	Items     []ListItem       `json:"items"`
}

// Editable reports whether the list still accepts changes. Terminal lists
// render read-only; the server itself only enforces this for status changes.
func (l *List) Editable() bool {
	return l.State == lifecycle.StatusCurrent
}

type ListItem struct {
	ID        int64     `json:"id"`
	ListID    int64     `json:"list_id"`
	ItemID    int64     `json:"item_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Amount    int       `json:"amount"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
}

type ListSummary struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	State     lifecycle.Status `json:"state"`
	CreatedAt time.Time        `json:"created_at"`
}

// UsageRank is one row of a top-items or top-categories ranking. Total is
// the user's all-time summed amount, for computing this entry's share.
type UsageRank struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Total  int    `json:"total"`
}

// MonthlyUsage is one point of the purchase timeline.
type MonthlyUsage struct {
	Month string `json:"month"`
	Items int    `json:"items"`
}

// NewListItem is one entry in a list-creation request.
type NewListItem struct {
	ItemID int64 `json:"item_id"`
	Amount int   `json:"amount"`
}

// CreateCatalogItemRequest adds an item to the catalog. Exactly one of
// CategoryID and CategoryName should be set; a name creates the category on
// demand.
type CreateCatalogItemRequest struct {
	Name         string `json:"name"`
	Desc         string `json:"desc"`
	CategoryID   *int64 `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}
