package v1

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/http/request"
	"github.com/bookkeep/bookkeep/http/response"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/validator"
)

func (h *Handler) listShelves(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	shelves, err := h.store.ListShelves(&model.FindShelf{OwnerID: &userID})
	if err != nil {
		log.Error("Error listing shelves", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, shelves)
}

func (h *Handler) createShelf(w http.ResponseWriter, r *http.Request) {
	var create model.ShelfCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if result := validator.ValidateShelfCreateRequest(&create); !result.Valid {
		response.UnprocessableEntity(w, r, result.Errors)
		return
	}

	shelf := &model.Shelf{
		Name:        create.Name,
		Description: create.Description,
		OwnerID:     request.GetUserID(r),
		SortOrder:   create.SortOrder,
	}
	created, err := h.store.CreateShelf(shelf)
	if err != nil {
		log.Error("Error creating shelf", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, created)
}

func (h *Handler) getShelf(w http.ResponseWriter, r *http.Request) {
	shelf, ok := h.findShelf(w, r)
	if !ok {
		return
	}
	response.OK(w, r, shelf)
}

func (h *Handler) updateShelf(w http.ResponseWriter, r *http.Request) {
	shelf, ok := h.findShelf(w, r)
	if !ok {
		return
	}

	var update model.ShelfCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if result := validator.ValidateShelfCreateRequest(&update); !result.Valid {
		response.UnprocessableEntity(w, r, result.Errors)
		return
	}
	if shelf.IsDefault && update.Name != shelf.Name {
		response.BadRequest(w, r, errors.New("default shelves cannot be renamed"))
		return
	}

	updated := shelf.Clone()
	updated.Name = update.Name
	updated.Description = update.Description
	if update.SortOrder != "" {
		updated.SortOrder = update.SortOrder
	}

	written, err := h.store.UpdateShelf(updated)
	if err != nil {
		log.Error("Error updating shelf", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, written)
}

type shelfBooksRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

func (h *Handler) modifyShelfBooks(w http.ResponseWriter, r *http.Request) {
	shelf, ok := h.findShelf(w, r)
	if !ok {
		return
	}

	var req shelfBooksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	// Reject the whole request before touching the shelf.
	for _, bookID := range req.Add {
		book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
		if err != nil {
			log.Error("Error getting book", zap.Error(err))
			response.ServerError(w, r, err)
			return
		}
		if book == nil {
			response.BadRequest(w, r, errors.Errorf("book %s not found", bookID))
			return
		}
	}

	updated := shelf
	var err error
	for _, bookID := range req.Add {
		if updated, err = h.store.AddBookToShelf(shelf.ID, bookID); err != nil {
			log.Error("Error adding book to shelf", zap.Error(err))
			response.ServerError(w, r, err)
			return
		}
	}
	for _, bookID := range req.Remove {
		if updated, err = h.store.RemoveBookFromShelf(shelf.ID, bookID); err != nil {
			log.Error("Error removing book from shelf", zap.Error(err))
			response.ServerError(w, r, err)
			return
		}
	}

	response.OK(w, r, updated)
}

func (h *Handler) findShelf(w http.ResponseWriter, r *http.Request) (*model.Shelf, bool) {
	shelfID := request.RouteStringParam(r, "id")
	shelf, err := h.store.GetShelf(&model.FindShelf{ID: &shelfID})
	if err != nil {
		log.Error("Error getting shelf", zap.Error(err))
		response.ServerError(w, r, err)
		return nil, false
	}
	if shelf == nil {
		response.NotFound(w, r)
		return nil, false
	}
	if shelf.OwnerID != request.GetUserID(r) {
		response.Forbidden(w, r)
		return nil, false
	}
	return shelf, true
}
