package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/bookkeep/bookkeep/config"
	"github.com/bookkeep/bookkeep/http/request"
	"github.com/bookkeep/bookkeep/library"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/store"
	"github.com/bookkeep/bookkeep/store/db"
	"github.com/bookkeep/bookkeep/worker"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	config.Opts.Data = dir
	config.Opts.DSN = dir + "/bookkeep_test.db"

	database, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	s := store.NewStore(database.DB)
	handler := NewHandler(s, library.NewManager(s), worker.NewShelfSyncPool(s, 1))

	router := mux.NewRouter()
	Server(router, handler)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path, userID string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response body: %v", err)
		}
	}
	return resp
}

func createAPIUser(t *testing.T, server *httptest.Server, username string) *model.User {
	t.Helper()

	var user model.User
	resp := doJSON(t, server, http.MethodPost, "/api/v1/user", "", model.UserCreateRequest{Username: username}, &user)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating user, got %d", resp.StatusCode)
	}
	return &user
}

func TestBookLifecycleOverHTTP(t *testing.T) {
	server := setupTestServer(t)
	user := createAPIUser(t, server, "alice")

	pages := 300
	var book model.Book
	resp := doJSON(t, server, http.MethodPost, "/api/v1/books", user.ID, model.BookCreateRequest{
		Title:    "Rest Novel",
		Author:   "Author",
		Metadata: model.BookMetadata{Pages: &pages},
	}, &book)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating book, got %d", resp.StatusCode)
	}
	if book.State != model.StateNotStarted {
		t.Errorf("Expected new book not_started, got %s", book.State)
	}

	// not_started -> finished is illegal.
	resp = doJSON(t, server, http.MethodPost, "/api/v1/book/"+book.ID+"/state", user.ID,
		map[string]string{"state": "finished"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 on illegal transition, got %d", resp.StatusCode)
	}

	resp = doJSON(t, server, http.MethodPost, "/api/v1/book/"+book.ID+"/state", user.ID,
		map[string]string{"state": "in_progress"}, &book)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on transition, got %d", resp.StatusCode)
	}
	if book.StartedTs == nil {
		t.Errorf("Expected started_ts after starting")
	}

	resp = doJSON(t, server, http.MethodPost, "/api/v1/book/"+book.ID+"/progress", user.ID,
		map[string]int{"progress": 120}, &book)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on progress, got %d", resp.StatusCode)
	}
	if book.Progress != 120 {
		t.Errorf("Expected progress 120, got %d", book.Progress)
	}

	resp = doJSON(t, server, http.MethodPost, "/api/v1/book/"+book.ID+"/progress", user.ID,
		map[string]int{"progress": 400}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 on progress beyond pages, got %d", resp.StatusCode)
	}

	resp = doJSON(t, server, http.MethodPost, "/api/v1/book/"+book.ID+"/comment", user.ID,
		model.CommentData{Text: "nice"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected 201 on comment, got %d", resp.StatusCode)
	}

	var events []*model.BookEvent
	resp = doJSON(t, server, http.MethodGet, "/api/v1/book/"+book.ID+"/events", user.ID, nil, &events)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 listing events, got %d", resp.StatusCode)
	}
	// state change + progress update + comment
	if len(events) != 3 {
		t.Errorf("Expected 3 events, got %d", len(events))
	}
}

func TestCreateBookValidation(t *testing.T) {
	server := setupTestServer(t)
	user := createAPIUser(t, server, "alice")

	rating := 9
	var result model.ValidationResult
	resp := doJSON(t, server, http.MethodPost, "/api/v1/books", user.ID, model.BookCreateRequest{
		Metadata: model.BookMetadata{Rating: &rating},
	}, &result)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}
	if result.Valid {
		t.Errorf("Expected valid=false")
	}
	expected := map[string]bool{
		"Title is required":              false,
		"Author is required":             false,
		"Rating must be between 1 and 5": false,
	}
	for _, msg := range result.Errors {
		if _, ok := expected[msg]; ok {
			expected[msg] = true
		}
	}
	for msg, seen := range expected {
		if !seen {
			t.Errorf("Expected validation error %q in %v", msg, result.Errors)
		}
	}
}

func TestIdentityEnforcement(t *testing.T) {
	server := setupTestServer(t)
	user := createAPIUser(t, server, "alice")

	// Missing header.
	resp := doJSON(t, server, http.MethodGet, "/api/v1/books", "", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without identity header, got %d", resp.StatusCode)
	}

	// Unknown user.
	resp = doJSON(t, server, http.MethodGet, "/api/v1/books", "no-such-user", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for unknown user, got %d", resp.StatusCode)
	}

	// Another user's book is off limits.
	var book model.Book
	resp = doJSON(t, server, http.MethodPost, "/api/v1/books", user.ID, model.BookCreateRequest{
		Title:  "Private",
		Author: "Author",
	}, &book)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating book, got %d", resp.StatusCode)
	}

	other := createAPIUser(t, server, "bob")
	resp = doJSON(t, server, http.MethodGet, "/api/v1/book/"+book.ID, other.ID, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for non collaborator, got %d", resp.StatusCode)
	}
}

func TestDefaultShelvesCreatedWithUser(t *testing.T) {
	server := setupTestServer(t)
	user := createAPIUser(t, server, "alice")

	var shelves []*model.Shelf
	resp := doJSON(t, server, http.MethodGet, "/api/v1/shelves", user.ID, nil, &shelves)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 listing shelves, got %d", resp.StatusCode)
	}
	if len(shelves) != 3 {
		t.Fatalf("Expected 3 default shelves, got %d", len(shelves))
	}
	names := map[string]bool{}
	for _, shelf := range shelves {
		names[shelf.Name] = shelf.IsDefault
	}
	for _, name := range []string{model.ShelfCurrentlyReading, model.ShelfFinished, model.ShelfWishlist} {
		if isDefault, ok := names[name]; !ok || !isDefault {
			t.Errorf("Expected default shelf %q, got %v", name, names)
		}
	}
}

func TestModifyShelfBooksValidatesBeforeMutating(t *testing.T) {
	server := setupTestServer(t)
	user := createAPIUser(t, server, "alice")

	var shelves []*model.Shelf
	resp := doJSON(t, server, http.MethodGet, "/api/v1/shelves", user.ID, nil, &shelves)
	if resp.StatusCode != http.StatusOK || len(shelves) == 0 {
		t.Fatalf("Expected shelves for new user, got %d", resp.StatusCode)
	}
	shelfID := shelves[0].ID

	var book model.Book
	resp = doJSON(t, server, http.MethodPost, "/api/v1/books", user.ID, model.BookCreateRequest{
		Title:  "Shelved",
		Author: "Author",
	}, &book)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating book, got %d", resp.StatusCode)
	}

	// A request mixing a real book with a missing one is rejected whole.
	resp = doJSON(t, server, http.MethodPost, "/api/v1/shelf/"+shelfID+"/books", user.ID,
		map[string][]string{"add": {book.ID, "no-such-book"}}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown book, got %d", resp.StatusCode)
	}

	var shelf model.Shelf
	resp = doJSON(t, server, http.MethodGet, "/api/v1/shelf/"+shelfID, user.ID, nil, &shelf)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 getting shelf, got %d", resp.StatusCode)
	}
	if len(shelf.BookIDs) != 0 {
		t.Errorf("Rejected request must not leave books behind, got %v", shelf.BookIDs)
	}

	resp = doJSON(t, server, http.MethodPost, "/api/v1/shelf/"+shelfID+"/books", user.ID,
		map[string][]string{"add": {book.ID}}, &shelf)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 adding book, got %d", resp.StatusCode)
	}
	if !shelf.Contains(book.ID) {
		t.Errorf("Expected book on shelf after valid add, got %v", shelf.BookIDs)
	}
}

func TestBookFindFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books?state=in_progress&owned=true&author=Someone", nil)
	req = req.WithContext(context.WithValue(req.Context(), request.UserIDContextKey, "user-1"))

	find, err := bookFindFromRequest(req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if find.OwnerID == nil || *find.OwnerID != "user-1" {
		t.Errorf("Expected owner filter user-1, got %v", find.OwnerID)
	}
	if find.State == nil || *find.State != model.StateInProgress {
		t.Errorf("Expected in_progress state filter, got %v", find.State)
	}
	if find.IsOwned == nil || !*find.IsOwned {
		t.Errorf("Expected owned filter true, got %v", find.IsOwned)
	}
	if find.Author == nil || *find.Author != "Someone" {
		t.Errorf("Expected author filter, got %v", find.Author)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/books?state=bogus", nil)
	req = req.WithContext(context.WithValue(req.Context(), request.UserIDContextKey, "user-1"))
	if _, err := bookFindFromRequest(req); err == nil {
		t.Errorf("Expected error for unknown state")
	}
}
