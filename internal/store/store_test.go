package store

import (
	"database/sql"
	"testing"

	"github.com/hnordin/handla/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser creates a user for tests that need an owner.
func seedUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	us := NewUserStore(db)
	u, err := us.Create(email, "Test User", "x")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

// seedCatalogItem creates an item in the named category, returning the item id.
func seedCatalogItem(t *testing.T, db *sql.DB, userID int64, category, name string) int64 {
	t.Helper()
	cs := NewCatalogStore(db)
	item, err := cs.CreateItem(userID, nil, category, name, "")
	if err != nil {
		t.Fatalf("seed catalog item %s/%s: %v", category, name, err)
	}
	return item.ID
}
