package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/http/request"
	"github.com/bookkeep/bookkeep/http/response"
	"github.com/bookkeep/bookkeep/log"
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/validator"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var create model.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if err := validator.ValidateUserCreateRequest(h.store, &create); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	user := &model.User{
		Username: create.Username,
		Email:    create.Email,
		Nickname: create.Nickname,
		Role:     model.RoleUser,
	}
	created, err := h.store.CreateUser(user)
	if err != nil {
		log.Error("Error creating user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	if _, err := h.store.CreateDefaultShelves(created.ID); err != nil {
		log.Error("Error creating default shelves", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.Created(w, r, created)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(&model.FindUser{})
	if err != nil {
		log.Error("Error listing users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteStringParam(r, "id")
	user, err := h.store.GetUser(&model.FindUser{ID: &userID})
	if err != nil {
		log.Error("Error getting user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, user)
}
