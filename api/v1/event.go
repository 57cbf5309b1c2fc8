package v1

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/http/request"
	"github.com/bookkeep/bookkeep/http/response"
	"github.com/bookkeep/bookkeep/library"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
)

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var data model.CommentData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if data.Text == "" {
		response.BadRequest(w, r, errors.New("comment text is required"))
		return
	}

	updated, err := h.manager.LogComment(book, request.GetUserID(r), data)
	if err != nil {
		log.Error("Error adding comment", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, updated)
}

func (h *Handler) addQuote(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var data model.QuoteData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if data.Text == "" {
		response.BadRequest(w, r, errors.New("quote text is required"))
		return
	}

	updated, err := h.manager.LogQuote(book, request.GetUserID(r), data)
	if err != nil {
		log.Error("Error adding quote", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, updated)
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var data model.ReviewData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	updated, err := h.manager.LogReview(book, request.GetUserID(r), data)
	if err != nil {
		if errors.Is(err, library.ErrInvalidRating) {
			response.BadRequest(w, r, err)
			return
		}
		log.Error("Error adding review", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, updated)
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

func (h *Handler) addRating(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	updated, err := h.manager.LogRating(book, request.GetUserID(r), req.Rating)
	if err != nil {
		if errors.Is(err, library.ErrInvalidRating) {
			response.BadRequest(w, r, err)
			return
		}
		log.Error("Error adding rating", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.Created(w, r, updated)
}

func (h *Handler) listBookEvents(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r)
	if !ok {
		return
	}

	find := &model.FindBookEvent{BookID: &book.ID}
	if v := request.QueryStringParam(r, "type", ""); v != "" {
		eventType := model.BookEventType(v)
		find.Type = &eventType
	}
	if v := request.QueryIntParam(r, "limit", 0); v > 0 {
		find.Limit = &v
	}

	events, err := h.store.ListBookEvents(find)
	if err != nil {
		log.Error("Error listing book events", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, events)
}

func (h *Handler) listUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)

	find := &model.FindBookEvent{UserID: &userID}
	if v := request.QueryStringParam(r, "type", ""); v != "" {
		eventType := model.BookEventType(v)
		find.Type = &eventType
	}
	if v := request.QueryIntParam(r, "limit", 0); v > 0 {
		find.Limit = &v
	}

	events, err := h.store.ListBookEvents(find)
	if err != nil {
		log.Error("Error listing events", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, events)
}
