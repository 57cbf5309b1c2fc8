package store

import (
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/config"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
)

func subscriptionQueueSize() int {
	if config.Opts != nil && config.Opts.WatchQueueSize > 0 {
		return config.Opts.WatchQueueSize
	}
	return 16
}

// Subscription is a cancellable live feed of book snapshots. Updates()
// delivers every committed write matching the filter; Cancel() guarantees
// no further deliveries.
type Subscription struct {
	id      int64
	store   *Store
	find    *model.FindBook
	updates chan *model.Book
	done    chan struct{}
}

// Updates returns the snapshot channel. The channel is closed after
// Cancel.
func (sub *Subscription) Updates() <-chan *model.Book {
	return sub.updates
}

// Done is closed when the subscription ends, either by Cancel or by the
// store shutting down.
func (sub *Subscription) Done() <-chan struct{} {
	return sub.done
}

// Cancel detaches the subscription. Safe to call more than once.
func (sub *Subscription) Cancel() {
	sub.store.subMu.Lock()
	defer sub.store.subMu.Unlock()

	if _, ok := sub.store.subs[sub.id]; !ok {
		return
	}
	delete(sub.store.subs, sub.id)
	close(sub.done)
	close(sub.updates)
}

// SubscribeBooks registers a live query. The filter semantics are the
// same as ListBooks.
func (s *Store) SubscribeBooks(find *model.FindBook) *Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSub++
	sub := &Subscription{
		id:      s.nextSub,
		store:   s,
		find:    find,
		updates: make(chan *model.Book, subscriptionQueueSize()),
		done:    make(chan struct{}),
	}
	s.subs[sub.id] = sub
	return sub
}

// notifySubscribers fans a committed book write out to every matching
// subscription. A slow consumer never blocks the writer, intermediate
// snapshots are dropped and the latest state stays readable through
// GetBook.
func (s *Store) notifySubscribers(book *model.Book) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, sub := range s.subs {
		if !sub.find.Matches(book) {
			continue
		}
		select {
		case sub.updates <- book:
		default:
			log.Debug("Dropping book snapshot for slow subscriber",
				zap.Int64("subscription_id", sub.id),
				zap.String("book_id", book.ID))
		}
	}
}

func (s *Store) closeSubscriptions() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub.done)
		close(sub.updates)
	}
}
