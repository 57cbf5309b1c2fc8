package store

import (
	"context"
	"testing"

	"github.com/bookkeep/bookkeep/config"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/store/db"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

func createTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	path := dir + "/bookkeep_test.db"
	config.Opts.Data = dir
	config.Opts.DSN = path

	database, err := db.NewDB(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return NewStore(database.DB)
}

func createTestUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()

	user, err := s.CreateUser(&model.User{Username: username})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}
