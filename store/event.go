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

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func execInsertEvent(tx execer, event *model.BookEvent) error {
	if event.ID == "" {
		event.ID = util.GenUUID()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event data")
	}

	stmt := `
		INSERT INTO book_event (
			id, book_id, user_id, type, timestamp, data
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	args := []any{
		event.ID, event.BookID, event.UserID, string(event.Type),
		event.Timestamp, string(data),
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	_, err = tx.Exec(stmt, args...)
	return err
}

// AddBookEvent appends a standalone event. Events are immutable, there is
// no update or delete counterpart.
func (s *Store) AddBookEvent(event *model.BookEvent) (*model.BookEvent, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := execInsertEvent(tx, event); err != nil {
		log.Error("Failed to insert book event", zap.Error(err))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Store) ListBookEvents(find *model.FindBookEvent) ([]*model.BookEvent, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.BookID; v != nil {
		where, args = append(where, "book_id = ?"), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "type = ?"), append(args, string(*v))
	}

	query := `
		SELECT
			id,
			book_id,
			user_id,
			type,
			timestamp,
			data
		FROM book_event
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY timestamp DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query book events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.BookEvent, 0)
	for rows.Next() {
		var event model.BookEvent
		var eventType, data string
		if err := rows.Scan(
			&event.ID,
			&event.BookID,
			&event.UserID,
			&eventType,
			&event.Timestamp,
			&data,
		); err != nil {
			log.Error("Failed to scan book event", zap.Error(err))
			return nil, err
		}
		event.Type = model.BookEventType(eventType)
		if err := json.Unmarshal([]byte(data), &event.Data); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal event data")
		}
		list = append(list, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CountBookEvents returns the number of events for one book, used to
// check the one-event-per-mutation contract.
func (s *Store) CountBookEvents(bookID string) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM book_event WHERE book_id = ?`, bookID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
