package library

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
)

// validTransitions is the legal state transition table. A finished book
// must pass through in_progress before it can be reset, there is no direct
// finished -> not_started edge and no self-transitions.
var validTransitions = map[model.BookState][]model.BookState{
	model.StateNotStarted: {model.StateInProgress},
	model.StateInProgress: {model.StateFinished, model.StateNotStarted},
	model.StateFinished:   {model.StateInProgress},
}

// ValidateTransition reports whether from -> to is in the transition table.
func ValidateTransition(from, to model.BookState) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from.String(), To: to.String()}
}

// Store is the persistence contract the state machine consumes. The book
// update and its event must be applied as a single atomic unit.
type Store interface {
	UpdateBookWithEvent(book *model.Book, event *model.BookEvent) (*model.Book, error)
}

// Manager validates and applies state transitions, progress updates and
// event logging to books. It holds no book state of its own, every call
// takes the caller's current view of the book and writes back through the
// store.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// WithClock overrides the time source, used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Transition moves the book to a new reading state. On an illegal
// transition the book is returned unchanged alongside the error and no
// write is issued. On success the updated book and one state_change event
// are written atomically.
func (m *Manager) Transition(book *model.Book, to model.BookState, userID string) (*model.Book, error) {
	from := book.State
	if err := ValidateTransition(from, to); err != nil {
		return nil, err
	}

	now := m.now().UnixMilli()
	updated := book.Clone()
	updated.State = to
	updated.UpdatedTs = now

	switch to {
	case model.StateInProgress:
		if from == model.StateNotStarted {
			updated.StartedTs = &now
		}
		// Re-reading from finished keeps progress and startedAt.
		updated.FinishedTs = nil
	case model.StateFinished:
		updated.FinishedTs = &now
	case model.StateNotStarted:
		updated.Progress = 0
		updated.StartedTs = nil
		updated.FinishedTs = nil
	}

	event := model.NewStateChangeEvent(book.ID, userID, from, to)
	event.Timestamp = now

	written, err := m.store.UpdateBookWithEvent(updated, event)
	if err != nil {
		log.Error("Failed to write state transition",
			zap.String("book_id", book.ID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err))
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return written, nil
}

// UpdateProgress records pages read. Only books in_progress accept
// progress updates; downward corrections are allowed and produce a
// negative pagesRead in the emitted event.
func (m *Manager) UpdateProgress(book *model.Book, newProgress int, userID string) (*model.Book, error) {
	if book.State != model.StateInProgress {
		return nil, ErrInvalidStateForProgress
	}
	if newProgress < 0 {
		return nil, ErrNegativeProgress
	}
	if pages := book.Metadata.Pages; pages != nil && newProgress > *pages {
		return nil, ErrProgressExceedsPageCount
	}

	now := m.now().UnixMilli()
	updated := book.Clone()
	updated.Progress = newProgress
	updated.UpdatedTs = now

	event := model.NewProgressUpdateEvent(book.ID, userID, book.Progress, newProgress)
	event.Timestamp = now

	written, err := m.store.UpdateBookWithEvent(updated, event)
	if err != nil {
		log.Error("Failed to write progress update",
			zap.String("book_id", book.ID),
			zap.Int("progress", newProgress),
			zap.Error(err))
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return written, nil
}

// LogComment appends a comment event without touching book fields beyond
// updatedAt.
func (m *Manager) LogComment(book *model.Book, userID string, data model.CommentData) (*model.Book, error) {
	event := model.NewCommentEvent(book.ID, userID, data)
	return m.logEvent(book, event)
}

// LogQuote appends a quote event.
func (m *Manager) LogQuote(book *model.Book, userID string, data model.QuoteData) (*model.Book, error) {
	event := model.NewQuoteEvent(book.ID, userID, data)
	return m.logEvent(book, event)
}

// LogReview appends a review event and records the rating on the book
// metadata in the same write.
func (m *Manager) LogReview(book *model.Book, userID string, data model.ReviewData) (*model.Book, error) {
	if data.Rating < 1 || data.Rating > 5 {
		return nil, ErrInvalidRating
	}
	event := model.NewReviewEvent(book.ID, userID, data)
	return m.logEventWithRating(book, event, data.Rating)
}

// LogRating appends a rating event and records the rating on the book
// metadata in the same write.
func (m *Manager) LogRating(book *model.Book, userID string, rating int) (*model.Book, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	event := model.NewRatingEvent(book.ID, userID, rating)
	return m.logEventWithRating(book, event, rating)
}

func (m *Manager) logEvent(book *model.Book, event *model.BookEvent) (*model.Book, error) {
	now := m.now().UnixMilli()
	updated := book.Clone()
	updated.UpdatedTs = now
	event.Timestamp = now

	written, err := m.store.UpdateBookWithEvent(updated, event)
	if err != nil {
		log.Error("Failed to write book event",
			zap.String("book_id", book.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return written, nil
}

func (m *Manager) logEventWithRating(book *model.Book, event *model.BookEvent, rating int) (*model.Book, error) {
	now := m.now().UnixMilli()
	updated := book.Clone()
	updated.UpdatedTs = now
	updated.Metadata.Rating = &rating
	event.Timestamp = now

	written, err := m.store.UpdateBookWithEvent(updated, event)
	if err != nil {
		log.Error("Failed to write book event",
			zap.String("book_id", book.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return nil, errors.Wrap(ErrStoreUnavailable, err.Error())
	}
	return written, nil
}
