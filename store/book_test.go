package store

import (
	"strings"
	"testing"

	"github.com/bookkeep/bookkeep/model"
)

func TestCreateBookStartsNotStarted(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	pages := 300
	book, err := s.CreateBook(&model.Book{
		Title:    "The Go Programming Language",
		Author:   "Donovan",
		State:    model.StateFinished, // must be ignored
		Progress: 42,                  // must be ignored
		OwnerID:  user.ID,
		Metadata: model.BookMetadata{Pages: &pages},
	})
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	if book.ID == "" {
		t.Fatalf("Expected generated book id")
	}
	if book.State != model.StateNotStarted {
		t.Errorf("Expected state %s, got %s", model.StateNotStarted, book.State)
	}
	if book.Progress != 0 {
		t.Errorf("Expected progress 0, got %d", book.Progress)
	}

	got, err := s.GetBook(&model.FindBook{ID: &book.ID})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got == nil || got.Title != book.Title {
		t.Fatalf("Expected to read back created book, got %+v", got)
	}
}

func TestListBooksFilters(t *testing.T) {
	s := createTestStore(t)
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	owned := true
	for _, tc := range []struct {
		title  string
		author string
		owner  string
		owned  bool
	}{
		{"Book One", "Author A", alice.ID, true},
		{"Book Two", "Author A", alice.ID, false},
		{"Book Three", "Author B", bob.ID, true},
	} {
		if _, err := s.CreateBook(&model.Book{
			Title:   tc.title,
			Author:  tc.author,
			OwnerID: tc.owner,
			IsOwned: tc.owned,
		}); err != nil {
			t.Fatalf("Failed to create book: %v", err)
		}
	}

	list, err := s.ListBooks(&model.FindBook{OwnerID: &alice.ID})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 books for alice, got %d", len(list))
	}

	author := "Author A"
	list, err = s.ListBooks(&model.FindBook{OwnerID: &alice.ID, Author: &author, IsOwned: &owned})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Book One" {
		t.Errorf("Expected only Book One, got %+v", list)
	}

	state := model.StateInProgress
	list, err = s.ListBooks(&model.FindBook{State: &state})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no in_progress books, got %d", len(list))
	}
}

func TestUpdateBookWithEventIsAtomic(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	book, err := s.CreateBook(&model.Book{
		Title:   "Atomic Habits",
		Author:  "Clear",
		OwnerID: user.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	updated := book.Clone()
	updated.State = model.StateInProgress
	event := model.NewStateChangeEvent(book.ID, user.ID, model.StateNotStarted, model.StateInProgress)

	if _, err := s.UpdateBookWithEvent(updated, event); err != nil {
		t.Fatalf("Failed to update book with event: %v", err)
	}

	got, err := s.GetBook(&model.FindBook{ID: &book.ID})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got.State != model.StateInProgress {
		t.Errorf("Expected state %s, got %s", model.StateInProgress, got.State)
	}
	count, err := s.CountBookEvents(book.ID)
	if err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 event, got %d", count)
	}
}

func TestUpdateBookWithEventRollsBackOnMissingBook(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	ghost := &model.Book{
		ID:            "no-such-book",
		Title:         "Ghost",
		Author:        "Nobody",
		State:         model.StateInProgress,
		OwnerID:       user.ID,
		Collaborators: []string{},
	}
	event := model.NewStateChangeEvent(ghost.ID, user.ID, model.StateNotStarted, model.StateInProgress)

	_, err := s.UpdateBookWithEvent(ghost, event)
	if err == nil {
		t.Fatalf("Expected error updating missing book")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}

	// The event insert must have been rolled back with the book update.
	count, err := s.CountBookEvents(ghost.ID)
	if err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no events after rollback, got %d", count)
	}
}

func TestRemoveBook(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	book, err := s.CreateBook(&model.Book{
		Title:   "Short Lived",
		Author:  "Someone",
		OwnerID: user.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	if err := s.RemoveBook(&model.FindBook{ID: &book.ID}); err != nil {
		t.Fatalf("Failed to remove book: %v", err)
	}

	got, err := s.GetBook(&model.FindBook{ID: &book.ID})
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if got != nil {
		t.Errorf("Expected book to be gone, got %+v", got)
	}
}
