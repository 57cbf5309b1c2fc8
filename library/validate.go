package library

import (
	"github.com/bookkeep/bookkeep/model"
	"github.com/bookkeep/bookkeep/validator"
)

// ValidateBook runs every field rule and reports the complete violation
// list as a ValidationError, for callers that consume validation as an
// error rather than a result.
func ValidateBook(book *model.Book) error {
	if result := validator.ValidateBook(book); !result.Valid {
		return &ValidationError{Errors: result.Errors}
	}
	return nil
}
