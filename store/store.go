package store

import (
	"database/sql"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

// json is used for the JSON text columns (event payloads, genre sets,
// collaborator and shelf book-id lists).
var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Store struct {
	db     *sql.DB
	dbLock sync.Mutex // dbLock serializes write transactions

	UserCache  sync.Map // map[string]*model.User
	ShelfCache sync.Map // map[string]*model.Shelf
	BookCache  sync.Map // map[string]*model.Book

	subMu   sync.Mutex
	subs    map[int64]*Subscription
	nextSub int64
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		subs: make(map[int64]*Subscription),
	}
}

func (s *Store) DBStats() sql.DBStats {
	return s.db.Stats()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Close() error {
	s.closeSubscriptions()
	return s.db.Close()
}
