package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/util"
)

func (s *Store) CreateUser(user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = util.GenUUID()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := time.Now().UnixMilli()
	user.CreatedTs = now
	user.UpdatedTs = now

	stmt := `
		INSERT INTO user (
			id, username, role, email, nickname, created_ts, updated_ts
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		user.ID, user.Username, user.Role.String(), user.Email,
		user.Nickname, user.CreatedTs, user.UpdatedTs,
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec(stmt, args...); err != nil {
		log.Error("Failed to insert user", zap.Error(err))
		return nil, err
	}

	s.UserCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) GetUser(find *model.FindUser) (*model.User, error) {
	if find.ID != nil {
		if cache, ok := s.UserCache.Load(*find.ID); ok {
			return cache.(*model.User), nil
		}
	}

	list, err := s.ListUsers(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.UserCache.Store(user.ID, user)
	return user, nil
}

func (s *Store) ListUsers(find *model.FindUser) ([]*model.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Username; v != nil {
		where, args = append(where, "username = ?"), append(args, *v)
	}
	if v := find.Role; v != nil {
		where, args = append(where, "role = ?"), append(args, v.String())
	}
	if v := find.Email; v != nil {
		where, args = append(where, "email = ?"), append(args, *v)
	}

	query := `
		SELECT
			id,
			username,
			role,
			email,
			nickname,
			created_ts,
			updated_ts
		FROM user
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.User, 0)
	for rows.Next() {
		var user model.User
		var role string
		// The ordering of query results should be consistent with query var
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&role,
			&user.Email,
			&user.Nickname,
			&user.CreatedTs,
			&user.UpdatedTs,
		); err != nil {
			return nil, err
		}
		user.Role = model.Role(role)
		list = append(list, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
