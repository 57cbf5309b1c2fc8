package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/http/request"
	"github.com/bookkeep/bookkeep/http/response"
	"github.com/bookkeep/bookkeep/library"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
)

// bookFindFromRequest builds the owner-scoped book filter shared by the
// list and watch endpoints.
func bookFindFromRequest(r *http.Request) (*model.FindBook, error) {
	userID := request.GetUserID(r)

	find := &model.FindBook{OwnerID: &userID}
	if v := request.QueryStringParam(r, "id", ""); v != "" {
		find.ID = &v
	}
	if v := request.QueryStringParam(r, "state", ""); v != "" {
		state := model.BookState(v)
		if !state.IsValid() {
			return nil, errors.Errorf("unknown state %q", v)
		}
		find.State = &state
	}
	if v := request.QueryBoolParam(r, "owned"); v != nil {
		find.IsOwned = v
	}
	if v := request.QueryStringParam(r, "author", ""); v != "" {
		find.Author = &v
	}
	return find, nil
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	find, err := bookFindFromRequest(r)
	if err != nil {
		response.BadRequest(w, r, err)
		return
	}

	books, err := h.store.ListBooks(find)
	if err != nil {
		log.Error("Error listing books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	var create model.BookCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	book := &model.Book{
		Title:         create.Title,
		Author:        create.Author,
		State:         model.StateNotStarted,
		IsOwned:       create.IsOwned,
		OwnerID:       request.GetUserID(r),
		Collaborators: create.Collaborators,
		Metadata:      create.Metadata,
	}

	if err := library.ValidateBook(book); err != nil {
		var verr *library.ValidationError
		if errors.As(err, &verr) {
			response.UnprocessableEntity(w, r, verr.Errors)
			return
		}
		response.BadRequest(w, r, err)
		return
	}

	created, err := h.store.CreateBook(book)
	if err != nil {
		log.Error("Error creating book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, created)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}
	response.OK(w, r, book)
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var update model.BookUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	updated := book.Clone()
	if update.Title != nil {
		updated.Title = *update.Title
	}
	if update.Author != nil {
		updated.Author = *update.Author
	}
	if update.IsOwned != nil {
		updated.IsOwned = *update.IsOwned
	}
	if update.Metadata != nil {
		updated.Metadata = *update.Metadata
	}

	if err := library.ValidateBook(updated); err != nil {
		var verr *library.ValidationError
		if errors.As(err, &verr) {
			response.UnprocessableEntity(w, r, verr.Errors)
			return
		}
		response.BadRequest(w, r, err)
		return
	}

	updated.UpdatedTs = time.Now().UnixMilli()
	written, err := h.store.UpdateBook(updated)
	if err != nil {
		log.Error("Error updating book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, written)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveBook(&model.FindBook{ID: &book.ID}); err != nil {
		log.Error("Error deleting book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

type transitionRequest struct {
	State model.BookState `json:"state"`
}

func (h *Handler) transitionBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if !req.State.IsValid() {
		response.BadRequest(w, r, errors.Errorf("unknown state %q", req.State))
		return
	}

	userID := request.GetUserID(r)
	updated, err := h.manager.Transition(book, req.State, userID)
	if err != nil {
		var invalid *library.InvalidTransitionError
		if errors.As(err, &invalid) {
			response.BadRequest(w, r, invalid)
			return
		}
		log.Error("Error transitioning book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	go h.shelfPool.Push(model.Job{
		UserID: book.OwnerID,
		BookID: book.ID,
		From:   book.State,
		To:     req.State,
		Status: model.JobStatusPending,
	})

	response.OK(w, r, updated)
}

type progressRequest struct {
	Progress int `json:"progress"`
}

func (h *Handler) updateProgress(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	userID := request.GetUserID(r)
	updated, err := h.manager.UpdateProgress(book, req.Progress, userID)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrInvalidStateForProgress),
			errors.Is(err, library.ErrNegativeProgress),
			errors.Is(err, library.ErrProgressExceedsPageCount):
			response.BadRequest(w, r, err)
		default:
			log.Error("Error updating progress", zap.Error(err))
			response.ServerError(w, r, err)
		}
		return
	}
	response.OK(w, r, updated)
}

// findBook loads the book addressed by the route and checks the caller
// may touch it: the owner and listed collaborators pass.
func (h *Handler) findBook(w http.ResponseWriter, r *http.Request) (*model.Book, bool) {
	bookID := request.RouteStringParam(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Error getting book", zap.Error(err))
		response.ServerError(w, r, err)
		return nil, false
	}
	if book == nil {
		response.NotFound(w, r)
		return nil, false
	}

	userID := request.GetUserID(r)
	if book.OwnerID != userID && !contains(book.Collaborators, userID) {
		response.Forbidden(w, r)
		return nil, false
	}
	return book, true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
