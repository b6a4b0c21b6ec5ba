package model

// UsageRank is one row of a top-items or top-categories ranking: the summed
// amount bought of this entry, alongside the user's all-time total for
// computing its share.
type UsageRank struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Total  int    `json:"total"`
}

// MonthlyUsage is one point of the purchase timeline: total item amounts
// across lists created in that month.
type MonthlyUsage struct {
	Month string `json:"month"`
	Items int    `json:"items"`
}
