package store

import (
	"database/sql"
	"testing"
)

// seedList creates a list for the user with the given item amounts.
func seedList(t *testing.T, db *sql.DB, userID int64, name string, items []NewListItem) int64 {
	t.Helper()
	ls := NewListStore(db)
	list, err := ls.Create(userID, name, items)
	if err != nil {
		t.Fatalf("seed list %s: %v", name, err)
	}
	return list.ID
}

func TestTopItems(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")
	apple := seedCatalogItem(t, db, userID, "Fruit", "Apple")
	pear := seedCatalogItem(t, db, userID, "Fruit", "Pear")
	milk := seedCatalogItem(t, db, userID, "Dairy", "Milk")
	bread := seedCatalogItem(t, db, userID, "Bakery", "Bread")

	seedList(t, db, userID, "First", []NewListItem{
		{ItemID: apple, Amount: 2},
		{ItemID: milk, Amount: 4},
		{ItemID: bread, Amount: 1},
	})
	seedList(t, db, userID, "Second", []NewListItem{
		{ItemID: apple, Amount: 3},
		{ItemID: pear, Amount: 2},
	})

	ranks, err := NewStatsStore(db).TopItems(userID)
	if err != nil {
		t.Fatalf("top items: %v", err)
	}
	if len(ranks) != 3 {
		t.Fatalf("expected 3 ranks, got %d", len(ranks))
	}

	want := []struct {
		name   string
		amount int
	}{{"Apple", 5}, {"Milk", 4}, {"Pear", 2}}
	for i, w := range want {
		if ranks[i].Name != w.name || ranks[i].Amount != w.amount {
			t.Errorf("rank %d = %s/%d, want %s/%d", i, ranks[i].Name, ranks[i].Amount, w.name, w.amount)
		}
		if ranks[i].Total != 12 {
			t.Errorf("rank %d total = %d, want 12", i, ranks[i].Total)
		}
	}
}

func TestTopCategories(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")
	apple := seedCatalogItem(t, db, userID, "Fruit", "Apple")
	pear := seedCatalogItem(t, db, userID, "Fruit", "Pear")
	milk := seedCatalogItem(t, db, userID, "Dairy", "Milk")
	bread := seedCatalogItem(t, db, userID, "Bakery", "Bread")

	seedList(t, db, userID, "Weekly", []NewListItem{
		{ItemID: apple, Amount: 5},
		{ItemID: pear, Amount: 2},
		{ItemID: milk, Amount: 4},
		{ItemID: bread, Amount: 1},
	})

	ranks, err := NewStatsStore(db).TopCategories(userID)
	if err != nil {
		t.Fatalf("top categories: %v", err)
	}
	if len(ranks) != 3 {
		t.Fatalf("expected 3 ranks, got %d", len(ranks))
	}
	if ranks[0].Name != "Fruit" || ranks[0].Amount != 7 {
		t.Errorf("rank 0 = %s/%d, want Fruit/7", ranks[0].Name, ranks[0].Amount)
	}
	if ranks[1].Name != "Dairy" || ranks[1].Amount != 4 {
		t.Errorf("rank 1 = %s/%d, want Dairy/4", ranks[1].Name, ranks[1].Amount)
	}
	if ranks[2].Name != "Bakery" || ranks[2].Amount != 1 {
		t.Errorf("rank 2 = %s/%d, want Bakery/1", ranks[2].Name, ranks[2].Amount)
	}
}

func TestStatsEmptyHistory(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")
	ss := NewStatsStore(db)

	ranks, err := ss.TopItems(userID)
	if err != nil {
		t.Fatalf("top items: %v", err)
	}
	if len(ranks) != 0 {
		t.Errorf("expected no ranks, got %d", len(ranks))
	}

	points, err := ss.MonthlyTimeline(userID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no timeline points, got %d", len(points))
	}
}

func TestStatsScopedPerUser(t *testing.T) {
	db := setupTestDB(t)
	aliceID := seedUser(t, db, "alice@example.com")
	bobID := seedUser(t, db, "bob@example.com")
	apple := seedCatalogItem(t, db, aliceID, "Fruit", "Apple")

	seedList(t, db, aliceID, "Weekly", []NewListItem{{ItemID: apple, Amount: 3}})

	ranks, err := NewStatsStore(db).TopItems(bobID)
	if err != nil {
		t.Fatalf("top items: %v", err)
	}
	if len(ranks) != 0 {
		t.Errorf("expected bob's history empty, got %d ranks", len(ranks))
	}
}

func TestMonthlyTimeline(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")
	apple := seedCatalogItem(t, db, userID, "Fruit", "Apple")

	// Seven lists across six months; two fall in March.
	months := []string{
		"2025-10-15", "2025-11-15", "2025-12-15",
		"2026-01-15", "2026-02-15", "2026-03-05", "2026-03-20",
	}
	for i, day := range months {
		listID := seedList(t, db, userID, day, []NewListItem{{ItemID: apple, Amount: i + 1}})
		if _, err := db.Exec(`UPDATE lists SET created_at = ? WHERE id = ?`, day+" 10:00:00", listID); err != nil {
			t.Fatalf("backdate list: %v", err)
		}
	}

	points, err := NewStatsStore(db).MonthlyTimeline(userID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}

	// Six distinct months, truncated to the most recent five.
	want := []struct {
		month string
		items int
	}{
		{"November 2025", 2},
		{"December 2025", 3},
		{"January 2026", 4},
		{"February 2026", 5},
		{"March 2026", 13},
	}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i, w := range want {
		if points[i].Month != w.month || points[i].Items != w.items {
			t.Errorf("point %d = %s/%d, want %s/%d", i, points[i].Month, points[i].Items, w.month, w.items)
		}
	}
}
