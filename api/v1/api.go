package v1

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookkeep/bookkeep/library"
	"github.com/bookkeep/bookkeep/middleware"
	"github.com/bookkeep/bookkeep/store"
	"github.com/bookkeep/bookkeep/worker"
)

type Handler struct {
	store     *store.Store
	manager   *library.Manager
	shelfPool worker.WorkPool
}

// NewHandler is a constructor for the v1.Handler
func NewHandler(store *store.Store, manager *library.Manager, shelfPool worker.WorkPool) *Handler {
	return &Handler{
		store:     store,
		manager:   manager,
		shelfPool: shelfPool,
	}
}

func Server(router *mux.Router, handler *Handler) {
	m := middleware.NewMiddleware(handler.store)

	// User creation bootstraps the identity, so it stays outside the
	// user interceptor.
	ur := router.PathPrefix("/api/v1").Subrouter()
	ur.Use(m.HandleCORS)
	ur.Use(m.LoggingRequest)
	ur.HandleFunc("/user", handler.createUser).Methods(http.MethodPost)

	sr := router.PathPrefix("/api/v1").Subrouter()
	sr.Use(m.HandleCORS)
	sr.Use(m.LoggingRequest)
	sr.Use(m.UserInterceptor)
	sr.Methods(http.MethodOptions)

	sr.HandleFunc("/users", handler.listUsers).Methods(http.MethodGet)
	sr.HandleFunc("/user/{id}", handler.getUser).Methods(http.MethodGet)

	sr.HandleFunc("/books", handler.listBooks).Methods(http.MethodGet)
	sr.HandleFunc("/books", handler.createBook).Methods(http.MethodPost)
	sr.HandleFunc("/books/watch", handler.watchBooks).Methods(http.MethodGet)
	sr.HandleFunc("/book/{id}", handler.getBook).Methods(http.MethodGet)
	sr.HandleFunc("/book/{id}", handler.updateBook).Methods(http.MethodPut)
	sr.HandleFunc("/book/{id}", handler.deleteBook).Methods(http.MethodDelete)

	sr.HandleFunc("/book/{id}/state", handler.transitionBook).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/progress", handler.updateProgress).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/comment", handler.addComment).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/quote", handler.addQuote).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/review", handler.addReview).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/rating", handler.addRating).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/events", handler.listBookEvents).Methods(http.MethodGet)
	sr.HandleFunc("/events", handler.listUserEvents).Methods(http.MethodGet)

	sr.HandleFunc("/shelves", handler.listShelves).Methods(http.MethodGet)
	sr.HandleFunc("/shelves", handler.createShelf).Methods(http.MethodPost)
	sr.HandleFunc("/shelf/{id}", handler.getShelf).Methods(http.MethodGet)
	sr.HandleFunc("/shelf/{id}", handler.updateShelf).Methods(http.MethodPut)
	sr.HandleFunc("/shelf/{id}/books", handler.modifyShelfBooks).Methods(http.MethodPost)
}
