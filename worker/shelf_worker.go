package worker

import (
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/store"
)

// ShelfSyncPool keeps the default shelves in step with reading states.
// Jobs are pushed after an accepted transition; the sync is best effort
// and runs outside the atomic book+event write.
type ShelfSyncPool struct {
	queue chan model.Job
}

func NewShelfSyncPool(store *store.Store, size int) *ShelfSyncPool {
	pool := &ShelfSyncPool{
		queue: make(chan model.Job),
	}

	for i := 0; i < size; i++ {
		worker := &ShelfSyncWorker{id: i, store: store}
		go worker.Run(pool.queue)
	}

	return pool
}

// Implement WorkPool interface
func (p *ShelfSyncPool) Push(job model.Job) {
	p.queue <- job
}

type ShelfSyncWorker struct {
	id    int
	store *store.Store
}

// Run moves books between the owner's default shelves as their reading
// state changes.
func (w *ShelfSyncWorker) Run(c <-chan model.Job) {
	log.Debug("ShelfSyncWorker is running", zap.Int("worker_id", w.id))

	for job := range c {
		log.Debug("Job received by worker",
			zap.Int("worker_id", w.id),
			zap.String("user_id", job.UserID),
			zap.String("book_id", job.BookID))

		if err := w.sync(job); err != nil {
			log.Error("Failed to sync shelves",
				zap.String("book_id", job.BookID),
				zap.Error(err))
		}
	}
}

func (w *ShelfSyncWorker) sync(job model.Job) error {
	switch job.To {
	case model.StateInProgress:
		if err := w.addTo(job.UserID, model.ShelfCurrentlyReading, job.BookID); err != nil {
			return err
		}
		return w.removeFrom(job.UserID, model.ShelfFinished, job.BookID)
	case model.StateFinished:
		if err := w.addTo(job.UserID, model.ShelfFinished, job.BookID); err != nil {
			return err
		}
		return w.removeFrom(job.UserID, model.ShelfCurrentlyReading, job.BookID)
	case model.StateNotStarted:
		if err := w.removeFrom(job.UserID, model.ShelfCurrentlyReading, job.BookID); err != nil {
			return err
		}
		return w.removeFrom(job.UserID, model.ShelfFinished, job.BookID)
	}
	return nil
}

func (w *ShelfSyncWorker) addTo(ownerID, shelfName, bookID string) error {
	shelf, err := w.getDefaultShelf(ownerID, shelfName)
	if err != nil || shelf == nil {
		return err
	}
	_, err = w.store.AddBookToShelf(shelf.ID, bookID)
	return err
}

func (w *ShelfSyncWorker) removeFrom(ownerID, shelfName, bookID string) error {
	shelf, err := w.getDefaultShelf(ownerID, shelfName)
	if err != nil || shelf == nil {
		return err
	}
	_, err = w.store.RemoveBookFromShelf(shelf.ID, bookID)
	return err
}

func (w *ShelfSyncWorker) getDefaultShelf(ownerID, name string) (*model.Shelf, error) {
	isDefault := true
	return w.store.GetShelf(&model.FindShelf{
		OwnerID:   &ownerID,
		Name:      &name,
		IsDefault: &isDefault,
	})
}
