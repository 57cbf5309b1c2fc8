package store

import (
	"testing"
	"time"

	"github.com/bookkeep/bookkeep/model"
)

func TestSubscribeBooksReceivesMatchingWrites(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	sub := s.SubscribeBooks(&model.FindBook{OwnerID: &user.ID})
	defer sub.Cancel()

	book, err := s.CreateBook(&model.Book{
		Title:   "Watched",
		Author:  "Author",
		OwnerID: user.ID,
	})
	if err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	select {
	case snapshot := <-sub.Updates():
		if snapshot.ID != book.ID {
			t.Errorf("Expected snapshot of %s, got %s", book.ID, snapshot.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("Expected a snapshot after create")
	}

	updated := book.Clone()
	updated.State = model.StateInProgress
	event := model.NewStateChangeEvent(book.ID, user.ID, model.StateNotStarted, model.StateInProgress)
	if _, err := s.UpdateBookWithEvent(updated, event); err != nil {
		t.Fatalf("Failed to update book: %v", err)
	}

	select {
	case snapshot := <-sub.Updates():
		if snapshot.State != model.StateInProgress {
			t.Errorf("Expected in_progress snapshot, got %s", snapshot.State)
		}
	case <-time.After(time.Second):
		t.Fatalf("Expected a snapshot after update")
	}
}

func TestSubscribeBooksIgnoresNonMatchingWrites(t *testing.T) {
	s := createTestStore(t)
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	sub := s.SubscribeBooks(&model.FindBook{OwnerID: &alice.ID})
	defer sub.Cancel()

	if _, err := s.CreateBook(&model.Book{
		Title:   "Not Yours",
		Author:  "Author",
		OwnerID: bob.ID,
	}); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	select {
	case snapshot := <-sub.Updates():
		t.Fatalf("Expected no snapshot, got %+v", snapshot)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionCancelStopsDelivery(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	sub := s.SubscribeBooks(&model.FindBook{OwnerID: &user.ID})
	sub.Cancel()
	sub.Cancel() // safe to call twice

	select {
	case <-sub.Done():
	default:
		t.Fatalf("Expected Done to be closed after Cancel")
	}

	if _, err := s.CreateBook(&model.Book{
		Title:   "After Cancel",
		Author:  "Author",
		OwnerID: user.ID,
	}); err != nil {
		t.Fatalf("Failed to create book: %v", err)
	}

	if _, ok := <-sub.Updates(); ok {
		t.Fatalf("Expected updates channel to be closed after Cancel")
	}
}

func TestSlowSubscriberDoesNotBlockWriter(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	// Never read from this subscription.
	sub := s.SubscribeBooks(&model.FindBook{OwnerID: &user.ID})
	defer sub.Cancel()

	queueSize := subscriptionQueueSize()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < queueSize+5; i++ {
			if _, err := s.CreateBook(&model.Book{
				Title:   "Flood",
				Author:  "Author",
				OwnerID: user.ID,
			}); err != nil {
				t.Errorf("Failed to create book: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Writer blocked on a slow subscriber")
	}
}

func TestStoreCloseEndsSubscriptions(t *testing.T) {
	s := createTestStore(t)
	user := createTestUser(t, s, "alice")

	sub := s.SubscribeBooks(&model.FindBook{OwnerID: &user.ID})

	if err := s.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatalf("Expected Done to be closed after store Close")
	}
}
