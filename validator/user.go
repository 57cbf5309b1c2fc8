package validator

import (
	"github.com/pkg/errors"

	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/store"
	"github.com/bookkeep/bookkeep/util"
)

func ValidateUserCreateRequest(s *store.Store, user *model.UserCreateRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if user.Username == "" {
		return errors.New("username is empty")
	}
	if !util.UIDMatcher.MatchString(user.Username) {
		return errors.New("username is invalid")
	}
	if user.Email != "" && !util.ValidateEmail(user.Email) {
		return errors.New("email is invalid")
	}
	if existing, _ := s.GetUser(&model.FindUser{Username: &user.Username}); existing != nil {
		return errors.New("Username already exists")
	}
	return nil
}
