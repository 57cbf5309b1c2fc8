package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/util"
)

func (s *Store) CreateShelf(shelf *model.Shelf) (*model.Shelf, error) {
	if shelf.ID == "" {
		shelf.ID = util.GenUUID()
	}
	now := time.Now().UnixMilli()
	shelf.CreatedTs = now
	shelf.UpdatedTs = now
	if shelf.BookIDs == nil {
		shelf.BookIDs = []string{}
	}
	if shelf.SortOrder == "" {
		shelf.SortOrder = model.ShelfSortManual
	}

	bookIDs, err := json.Marshal(shelf.BookIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal book ids")
	}

	stmt := `
		INSERT INTO shelf (
			id, name, description, owner_id, book_ids, is_default,
			sort_order, created_ts, updated_ts
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		shelf.ID, shelf.Name, shelf.Description, shelf.OwnerID,
		string(bookIDs), shelf.IsDefault, shelf.SortOrder,
		shelf.CreatedTs, shelf.UpdatedTs,
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec(stmt, args...); err != nil {
		log.Error("Failed to insert shelf", zap.Error(err))
		return nil, err
	}

	s.ShelfCache.Store(shelf.ID, shelf)
	return shelf, nil
}

// CreateDefaultShelves seeds the three default shelves for a new user.
func (s *Store) CreateDefaultShelves(ownerID string) ([]*model.Shelf, error) {
	shelves := model.DefaultShelves(ownerID)
	for _, shelf := range shelves {
		if _, err := s.CreateShelf(shelf); err != nil {
			return nil, errors.Wrapf(err, "failed to create default shelf %s", shelf.Name)
		}
	}
	return shelves, nil
}

func (s *Store) GetShelf(find *model.FindShelf) (*model.Shelf, error) {
	if find.ID != nil {
		if cache, ok := s.ShelfCache.Load(*find.ID); ok {
			return cache.(*model.Shelf), nil
		}
	}

	list, err := s.ListShelves(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	shelf := list[0]
	s.ShelfCache.Store(shelf.ID, shelf)
	return shelf, nil
}

func (s *Store) ListShelves(find *model.FindShelf) ([]*model.Shelf, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.OwnerID; v != nil {
		where, args = append(where, "owner_id = ?"), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "name = ?"), append(args, *v)
	}
	if v := find.IsDefault; v != nil {
		where, args = append(where, "is_default = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			name,
			description,
			owner_id,
			book_ids,
			is_default,
			sort_order,
			created_ts,
			updated_ts
		FROM shelf
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC`

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query shelves", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Shelf, 0)
	for rows.Next() {
		var shelf model.Shelf
		var bookIDs string
		if err := rows.Scan(
			&shelf.ID,
			&shelf.Name,
			&shelf.Description,
			&shelf.OwnerID,
			&bookIDs,
			&shelf.IsDefault,
			&shelf.SortOrder,
			&shelf.CreatedTs,
			&shelf.UpdatedTs,
		); err != nil {
			log.Error("Failed to scan shelf", zap.Error(err))
			return nil, err
		}
		if err := json.Unmarshal([]byte(bookIDs), &shelf.BookIDs); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal book ids")
		}
		list = append(list, &shelf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) UpdateShelf(shelf *model.Shelf) (*model.Shelf, error) {
	shelf.UpdatedTs = time.Now().UnixMilli()

	bookIDs, err := json.Marshal(shelf.BookIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal book ids")
	}

	stmt := `
		UPDATE shelf
		SET
			name = ?,
			description = ?,
			book_ids = ?,
			sort_order = ?,
			updated_ts = ?
		WHERE id = ?
	`
	args := []any{
		shelf.Name, shelf.Description, string(bookIDs), shelf.SortOrder,
		shelf.UpdatedTs, shelf.ID,
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt, args...); err != nil {
		log.Error("Failed to update shelf", zap.Error(err))
		// The caller's shelf may have diverged from the stored row.
		s.ShelfCache.Delete(shelf.ID)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.ShelfCache.Delete(shelf.ID)
		return nil, err
	}

	s.ShelfCache.Store(shelf.ID, shelf)
	return shelf, nil
}

// AddBookToShelf appends the book to the shelf's list if it is not
// already there. The read-modify-write runs under the store write lock,
// concurrent shelf mutations apply in order and are never lost.
func (s *Store) AddBookToShelf(shelfID, bookID string) (*model.Shelf, error) {
	return s.mutateShelfBooks(shelfID, func(ids []string) []string {
		for _, id := range ids {
			if id == bookID {
				return ids
			}
		}
		return append(ids, bookID)
	})
}

// RemoveBookFromShelf drops the book from the shelf's list.
func (s *Store) RemoveBookFromShelf(shelfID, bookID string) (*model.Shelf, error) {
	return s.mutateShelfBooks(shelfID, func(ids []string) []string {
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != bookID {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

func (s *Store) mutateShelfBooks(shelfID string, mutate func([]string) []string) (*model.Shelf, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT
			id,
			name,
			description,
			owner_id,
			book_ids,
			is_default,
			sort_order,
			created_ts,
			updated_ts
		FROM shelf
		WHERE id = ?
	`
	var shelf model.Shelf
	var rawBookIDs string
	if err := tx.QueryRow(query, shelfID).Scan(
		&shelf.ID,
		&shelf.Name,
		&shelf.Description,
		&shelf.OwnerID,
		&rawBookIDs,
		&shelf.IsDefault,
		&shelf.SortOrder,
		&shelf.CreatedTs,
		&shelf.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Errorf("shelf %s not found", shelfID)
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(rawBookIDs), &shelf.BookIDs); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal book ids")
	}

	shelf.BookIDs = mutate(shelf.BookIDs)
	shelf.UpdatedTs = time.Now().UnixMilli()

	bookIDs, err := json.Marshal(shelf.BookIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal book ids")
	}

	stmt := `UPDATE shelf SET book_ids = ?, updated_ts = ? WHERE id = ?`

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, []any{string(bookIDs), shelf.UpdatedTs, shelf.ID}))

	if _, err := tx.Exec(stmt, string(bookIDs), shelf.UpdatedTs, shelf.ID); err != nil {
		log.Error("Failed to update shelf books", zap.Error(err))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.ShelfCache.Store(shelf.ID, &shelf)
	return &shelf, nil
}
