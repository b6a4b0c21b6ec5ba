package model

import "time"

type List struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// ListItem is a purchased-list entry joined with its catalog item and
// category, matching what clients need to render a list without extra
// round trips.
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

type ListWithItems struct {
	List
	Items []ListItem `json:"items"`
}

// ListSummary is the id/name/state row used by the history view.
type ListSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}
