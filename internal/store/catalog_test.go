package store

import (
	"errors"
	"testing"
)

func TestCreateItemWithNewCategory(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")

	cs := NewCatalogStore(db)
	item, err := cs.CreateItem(userID, nil, "Fruit", "Apple", "Granny Smith")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Name != "Apple" {
		t.Errorf("name = %q, want %q", item.Name, "Apple")
	}
	if item.Category != "Fruit" {
		t.Errorf("category = %q, want %q", item.Category, "Fruit")
	}
	if item.Desc != "Granny Smith" {
		t.Errorf("desc = %q, want %q", item.Desc, "Granny Smith")
	}

	cat, err := cs.GetCategoryByName(userID, "Fruit")
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if cat == nil {
		t.Fatal("expected Fruit category to exist")
	}
}

func TestCreateItemInExistingCategory(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")

	cs := NewCatalogStore(db)
	if _, err := cs.CreateItem(userID, nil, "Fruit", "Apple", ""); err != nil {
		t.Fatalf("create first item: %v", err)
	}
	cat, err := cs.GetCategoryByName(userID, "Fruit")
	if err != nil || cat == nil {
		t.Fatalf("get category: %v", err)
	}

	if _, err := cs.CreateItem(userID, &cat.ID, "", "Banana", ""); err != nil {
		t.Fatalf("create second item: %v", err)
	}

	categories, err := cs.Categories(userID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
	if len(categories[0].Items) != 2 {
		t.Fatalf("expected 2 items in Fruit, got %d", len(categories[0].Items))
	}
}

func TestCreateItemReusesCategoryByName(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")

	cs := NewCatalogStore(db)
	if _, err := cs.CreateItem(userID, nil, "Fruit", "Apple", ""); err != nil {
		t.Fatalf("create first item: %v", err)
	}
	if _, err := cs.CreateItem(userID, nil, "Fruit", "Banana", ""); err != nil {
		t.Fatalf("create second item by category name: %v", err)
	}

	categories, err := cs.Categories(userID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected the Fruit category reused, got %d categories", len(categories))
	}
	if len(categories[0].Items) != 2 {
		t.Fatalf("expected 2 items in Fruit, got %d", len(categories[0].Items))
	}
}

func TestCategoriesSortedCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")

	cs := NewCatalogStore(db)
	if _, err := cs.CreateItem(userID, nil, "Bananas", "Banana", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cs.CreateItem(userID, nil, "apples", "Apple", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	categories, err := cs.Categories(userID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "apples" || categories[1].Name != "Bananas" {
		t.Errorf("order = [%q, %q], want [apples, Bananas]", categories[0].Name, categories[1].Name)
	}
}

func TestDeleteItemRemovesEmptyCategory(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")

	cs := NewCatalogStore(db)
	item, err := cs.CreateItem(userID, nil, "Fruit", "Apple", "")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := cs.DeleteItem(userID, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	cat, err := cs.GetCategoryByName(userID, "Fruit")
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if cat != nil {
		t.Error("expected empty category to be removed with its last item")
	}
}

func TestDeleteItemKeepsNonEmptyCategory(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")

	cs := NewCatalogStore(db)
	apple, err := cs.CreateItem(userID, nil, "Fruit", "Apple", "")
	if err != nil {
		t.Fatalf("create apple: %v", err)
	}
	cat, _ := cs.GetCategoryByName(userID, "Fruit")
	if _, err := cs.CreateItem(userID, &cat.ID, "", "Banana", ""); err != nil {
		t.Fatalf("create banana: %v", err)
	}

	if err := cs.DeleteItem(userID, apple.ID); err != nil {
		t.Fatalf("delete apple: %v", err)
	}

	categories, err := cs.Categories(userID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 || len(categories[0].Items) != 1 {
		t.Fatalf("expected Fruit to survive with 1 item, got %+v", categories)
	}
	if categories[0].Items[0].Name != "Banana" {
		t.Errorf("remaining item = %q, want Banana", categories[0].Items[0].Name)
	}
}

func TestCatalogScopedPerUser(t *testing.T) {
	db := setupTestDB(t)
	aliceID := seedUser(t, db, "alice@example.com")
	bobID := seedUser(t, db, "bob@example.com")

	cs := NewCatalogStore(db)
	if _, err := cs.CreateItem(aliceID, nil, "Fruit", "Apple", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	bobCategories, err := cs.Categories(bobID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(bobCategories) != 0 {
		t.Errorf("expected empty catalog for bob, got %d categories", len(bobCategories))
	}
}

func TestDeleteItemMissing(t *testing.T) {
	db := setupTestDB(t)
	aliceID := seedUser(t, db, "alice@example.com")
	bobID := seedUser(t, db, "bob@example.com")

	cs := NewCatalogStore(db)
	if err := cs.DeleteItem(aliceID, 9999); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("delete missing item: err = %v, want ErrItemNotFound", err)
	}

	apple, err := cs.CreateItem(aliceID, nil, "Fruit", "Apple", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := cs.DeleteItem(bobID, apple.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("delete another user's item: err = %v, want ErrItemNotFound", err)
	}
	if item, err := cs.GetItemByID(aliceID, apple.ID); err != nil || item == nil {
		t.Fatalf("apple should survive bob's delete, got item=%v err=%v", item, err)
	}
}

func TestDeleteItemWithListHistory(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice@example.com")
	apple := seedCatalogItem(t, db, userID, "Fruit", "Apple")
	milk := seedCatalogItem(t, db, userID, "Dairy", "Milk")
	listID := seedList(t, db, userID, "Weekly", []NewListItem{
		{ItemID: apple, Amount: 2},
		{ItemID: milk, Amount: 1},
	})

	cs := NewCatalogStore(db)
	if err := cs.DeleteItem(userID, apple); err != nil {
		t.Fatalf("delete purchased item: %v", err)
	}

	list, err := NewListStore(db).GetByID(listID)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "Milk" {
		t.Fatalf("expected only Milk to remain on the list, got %+v", list.Items)
	}
}
