package store

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/bookkeep/bookkeep/model"
)

func TestAddBookToShelfConcurrent(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	shelf, err := s.CreateShelf(&model.Shelf{Name: "Pile", OwnerID: user.ID})
	if err != nil {
		t.Fatalf("Failed to create shelf: %v", err)
	}

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.AddBookToShelf(shelf.ID, fmt.Sprintf("book-%d", i)); err != nil {
				t.Errorf("Failed to add book: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.GetShelf(&model.FindShelf{ID: &shelf.ID})
	if err != nil {
		t.Fatalf("Failed to get shelf: %v", err)
	}
	if len(got.BookIDs) != n {
		t.Errorf("Expected %d books on the shelf, got %d", n, len(got.BookIDs))
	}
}

func TestAddBookToShelfIdempotent(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	shelf, err := s.CreateShelf(&model.Shelf{Name: "Pile", OwnerID: user.ID})
	if err != nil {
		t.Fatalf("Failed to create shelf: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.AddBookToShelf(shelf.ID, "book-1"); err != nil {
			t.Fatalf("Failed to add book: %v", err)
		}
	}

	got, err := s.GetShelf(&model.FindShelf{ID: &shelf.ID})
	if err != nil {
		t.Fatalf("Failed to get shelf: %v", err)
	}
	if len(got.BookIDs) != 1 {
		t.Errorf("Expected 1 book after duplicate add, got %d", len(got.BookIDs))
	}
}

func TestRemoveBookFromShelf(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	shelf, err := s.CreateShelf(&model.Shelf{Name: "Pile", OwnerID: user.ID})
	if err != nil {
		t.Fatalf("Failed to create shelf: %v", err)
	}
	if _, err := s.AddBookToShelf(shelf.ID, "book-1"); err != nil {
		t.Fatalf("Failed to add book: %v", err)
	}
	if _, err := s.AddBookToShelf(shelf.ID, "book-2"); err != nil {
		t.Fatalf("Failed to add book: %v", err)
	}

	got, err := s.RemoveBookFromShelf(shelf.ID, "book-1")
	if err != nil {
		t.Fatalf("Failed to remove book: %v", err)
	}
	if len(got.BookIDs) != 1 || got.BookIDs[0] != "book-2" {
		t.Errorf("Expected only book-2 left, got %v", got.BookIDs)
	}

	// Removing an absent book is a no-op.
	if _, err := s.RemoveBookFromShelf(shelf.ID, "book-1"); err != nil {
		t.Fatalf("Failed to remove absent book: %v", err)
	}
}

func TestAddBookToMissingShelf(t *testing.T) {
	s := createTestStore(t)

	_, err := s.AddBookToShelf("no-such-shelf", "book-1")
	if err == nil {
		t.Fatalf("Expected error for missing shelf")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

// The cache must never serve shelf state that was not persisted: shelf
// mutations go through the store, and the cached entry always reflects
// the committed row.
func TestShelfCacheMatchesPersistedState(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	shelf, err := s.CreateShelf(&model.Shelf{Name: "Pile", OwnerID: user.ID})
	if err != nil {
		t.Fatalf("Failed to create shelf: %v", err)
	}

	// Prime the cache, then mutate the returned shelf the way a careless
	// caller would. The copy handed out later must not show the change.
	cached, err := s.GetShelf(&model.FindShelf{ID: &shelf.ID})
	if err != nil {
		t.Fatalf("Failed to get shelf: %v", err)
	}
	clone := cached.Clone()
	clone.BookIDs = append(clone.BookIDs, "phantom-book")

	got, err := s.GetShelf(&model.FindShelf{ID: &shelf.ID})
	if err != nil {
		t.Fatalf("Failed to get shelf: %v", err)
	}
	if got.Contains("phantom-book") {
		t.Errorf("Cache serves a book id that was never persisted: %v", got.BookIDs)
	}
}
