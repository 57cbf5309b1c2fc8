package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/util"
)

// CreateBook inserts a new book. The book always starts in not_started
// with zero progress, whatever the request says.
func (s *Store) CreateBook(book *model.Book) (*model.Book, error) {
	create := book.Clone()
	create.ID = util.GenUUID()
	create.State = model.StateNotStarted
	create.Progress = 0
	now := time.Now().UnixMilli()
	create.CreatedTs = now
	create.UpdatedTs = now
	if create.Collaborators == nil {
		create.Collaborators = []string{}
	}

	collaborators, err := json.Marshal(create.Collaborators)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal collaborators")
	}
	metadata, err := json.Marshal(create.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal metadata")
	}

	stmt := `
		INSERT INTO book (
			id, title, author, state, progress, is_owned, owner_id,
			collaborators, metadata, created_ts, updated_ts
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		create.ID, create.Title, create.Author, create.State.String(),
		create.Progress, create.IsOwned, create.OwnerID,
		string(collaborators), string(metadata), create.CreatedTs, create.UpdatedTs,
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec(stmt, args...); err != nil {
		log.Error("Failed to insert book", zap.Error(err))
		return nil, err
	}

	s.BookCache.Store(create.ID, create)
	s.notifySubscribers(create)
	return create, nil
}

func (s *Store) GetBook(find *model.FindBook) (*model.Book, error) {
	if find.ID != nil {
		if cache, ok := s.BookCache.Load(*find.ID); ok {
			return cache.(*model.Book), nil
		}
	}

	list, err := s.ListBooks(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	book := list[0]
	s.BookCache.Store(book.ID, book)
	return book, nil
}

func (s *Store) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.OwnerID; v != nil {
		where, args = append(where, "owner_id = ?"), append(args, *v)
	}
	if v := find.State; v != nil {
		where, args = append(where, "state = ?"), append(args, v.String())
	}
	if v := find.IsOwned; v != nil {
		where, args = append(where, "is_owned = ?"), append(args, *v)
	}
	if v := find.Author; v != nil {
		where, args = append(where, "author = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			title,
			author,
			state,
			progress,
			is_owned,
			owner_id,
			collaborators,
			metadata,
			created_ts,
			updated_ts,
			started_ts,
			finished_ts
		FROM book
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY updated_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query books", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error("Failed to scan book", zap.Error(err))
			return nil, err
		}
		list = append(list, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*model.Book, error) {
	var book model.Book
	var state string
	var collaborators, metadata string
	// The ordering of scan targets should be consistent with the query columns
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&state,
		&book.Progress,
		&book.IsOwned,
		&book.OwnerID,
		&collaborators,
		&metadata,
		&book.CreatedTs,
		&book.UpdatedTs,
		&book.StartedTs,
		&book.FinishedTs,
	); err != nil {
		return nil, err
	}
	book.State = model.BookState(state)
	if err := json.Unmarshal([]byte(collaborators), &book.Collaborators); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal collaborators")
	}
	if err := json.Unmarshal([]byte(metadata), &book.Metadata); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal metadata")
	}
	return &book, nil
}

// UpdateBook writes descriptive fields. Reading state and progress go
// through UpdateBookWithEvent so that the matching event record is never
// skipped.
func (s *Store) UpdateBook(book *model.Book) (*model.Book, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := execUpdateBook(tx, book); err != nil {
		log.Error("Failed to update book", zap.Error(err))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.BookCache.Store(book.ID, book)
	s.notifySubscribers(book)
	return book, nil
}

// UpdateBookWithEvent applies the book update and appends its event as a
// single transaction. Both are written or neither is, a state change
// without its log record is a correctness violation.
func (s *Store) UpdateBookWithEvent(book *model.Book, event *model.BookEvent) (*model.Book, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := execUpdateBook(tx, book); err != nil {
		log.Error("Failed to update book", zap.Error(err))
		return nil, err
	}
	if err := execInsertEvent(tx, event); err != nil {
		log.Error("Failed to insert book event", zap.Error(err))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.BookCache.Store(book.ID, book)
	s.notifySubscribers(book)
	return book, nil
}

func execUpdateBook(tx execer, book *model.Book) error {
	collaborators, err := json.Marshal(book.Collaborators)
	if err != nil {
		return errors.Wrap(err, "failed to marshal collaborators")
	}
	metadata, err := json.Marshal(book.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to marshal metadata")
	}

	stmt := `
		UPDATE book
		SET
			title = ?,
			author = ?,
			state = ?,
			progress = ?,
			is_owned = ?,
			collaborators = ?,
			metadata = ?,
			updated_ts = ?,
			started_ts = ?,
			finished_ts = ?
		WHERE id = ?
	`
	args := []any{
		book.Title, book.Author, book.State.String(), book.Progress,
		book.IsOwned, string(collaborators), string(metadata),
		book.UpdatedTs, book.StartedTs, book.FinishedTs, book.ID,
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	result, err := tx.Exec(stmt, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Errorf("book %s not found", book.ID)
	}
	return nil
}

// RemoveBook deletes a book row. This is a store-level operation, the
// state machine never hard-deletes.
func (s *Store) RemoveBook(find *model.FindBook) error {
	if find.ID == nil {
		return errors.New("book id is required")
	}
	stmt := `DELETE FROM book WHERE id = ?`
	args := []any{*find.ID}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.BookCache.Delete(*find.ID)
	return nil
}
