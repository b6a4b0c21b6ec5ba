package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hnordin/handla/internal/model"
)

// StatsStore aggregates purchase history across a user's lists.
type StatsStore struct {
	db *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

const topRanks = 3

// TopItems returns the user's most-bought catalog items by summed amount,
// highest first, at most three.
func (s *StatsStore) TopItems(userID int64) ([]model.UsageRank, error) {
	total, err := s.totalAmount(userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT i.id, i.name, SUM(li.amount) AS amount
		 FROM list_items li
		 JOIN lists l ON l.id = li.list_id
		 JOIN items i ON i.id = li.item_id
		 WHERE l.user_id = ?
		 GROUP BY i.id, i.name
		 ORDER BY amount DESC, i.name COLLATE NOCASE ASC
		 LIMIT ?`,
		userID, topRanks,
	)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()

	return scanRanks(rows, total)
}

// TopCategories returns the user's most-bought categories by summed amount,
// highest first, at most three.
func (s *StatsStore) TopCategories(userID int64) ([]model.UsageRank, error) {
	total, err := s.totalAmount(userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT c.id, c.name, SUM(li.amount) AS amount
		 FROM list_items li
		 JOIN lists l ON l.id = li.list_id
		 JOIN items i ON i.id = li.item_id
		 JOIN categories c ON c.id = i.category_id
		 WHERE l.user_id = ?
		 GROUP BY c.id, c.name
		 ORDER BY amount DESC, c.name COLLATE NOCASE ASC
		 LIMIT ?`,
		userID, topRanks,
	)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	return scanRanks(rows, total)
}

func scanRanks(rows *sql.Rows, total int) ([]model.UsageRank, error) {
	var ranks []model.UsageRank
	for rows.Next() {
		var r model.UsageRank
		if err := rows.Scan(&r.ID, &r.Name, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan rank: %w", err)
		}
		r.Total = total
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

func (s *StatsStore) totalAmount(userID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(li.amount), 0)
		 FROM list_items li
		 JOIN lists l ON l.id = li.list_id
		 WHERE l.user_id = ?`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total amount: %w", err)
	}
	return total, nil
}

// timelineMonths bounds the timeline to its most recent months.
const timelineMonths = 5

// MonthlyTimeline returns summed item amounts grouped by the month each list
// was created in, oldest first, keeping only the last five months with any
// activity.
func (s *StatsStore) MonthlyTimeline(userID int64) ([]model.MonthlyUsage, error) {
	rows, err := s.db.Query(
		`SELECT strftime('%Y-%m', l.created_at) AS ym, SUM(li.amount)
		 FROM list_items li
		 JOIN lists l ON l.id = li.list_id
		 WHERE l.user_id = ?
		 GROUP BY ym
		 ORDER BY ym ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("monthly timeline: %w", err)
	}
	defer rows.Close()

	var points []model.MonthlyUsage
	for rows.Next() {
		var ym string
		var items int
		if err := rows.Scan(&ym, &items); err != nil {
			return nil, fmt.Errorf("scan timeline point: %w", err)
		}
		month, err := time.Parse("2006-01", ym)
		if err != nil {
			return nil, fmt.Errorf("parse timeline month %q: %w", ym, err)
		}
		points = append(points, model.MonthlyUsage{
			Month: month.Format("January 2006"),
			Items: items,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(points) > timelineMonths {
		points = points[len(points)-timelineMonths:]
	}
	return points, nil
}
