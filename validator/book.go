package validator

import (
	"strings"
	"time"

	"github.com/bookkeep/bookkeep/model"
)

// ValidateBook checks every field rule and collects all violations at
// once, so a caller can surface the complete list in one round trip.
// It is a pure function, it never touches the store.
func ValidateBook(book *model.Book) model.ValidationResult {
	errs := []string{}

	if strings.TrimSpace(book.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		errs = append(errs, "Author is required")
	}

	if book.Progress < 0 {
		errs = append(errs, "Progress cannot be negative")
	}
	if pages := book.Metadata.Pages; pages != nil && book.Progress > *pages {
		errs = append(errs, "Progress cannot exceed total pages")
	}

	if rating := book.Metadata.Rating; rating != nil {
		if *rating < 1 || *rating > 5 {
			errs = append(errs, "Rating must be between 1 and 5")
		}
	}

	if pages := book.Metadata.Pages; pages != nil && *pages <= 0 {
		errs = append(errs, "Page count must be positive")
	}

	if year := book.Metadata.PublishedYear; year != nil {
		currentYear := time.Now().Year()
		if *year < 0 || *year > currentYear+1 {
			errs = append(errs, "Published year is invalid")
		}
	}

	return model.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// ValidateProgress checks a requested progress value against an optional
// page count.
func ValidateProgress(progress int, pages *int) model.ValidationResult {
	errs := []string{}

	if progress < 0 {
		errs = append(errs, "Progress cannot be negative")
	}
	if pages != nil && progress > *pages {
		errs = append(errs, "Progress cannot exceed total pages")
	}

	return model.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// ValidateShelfCreateRequest checks the fields of a new shelf.
func ValidateShelfCreateRequest(req *model.ShelfCreateRequest) model.ValidationResult {
	errs := []string{}

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "Name is required")
	}
	switch req.SortOrder {
	case "", model.ShelfSortManual, model.ShelfSortTitle, model.ShelfSortAuthor,
		model.ShelfSortDateAdded, model.ShelfSortDateRead:
	default:
		errs = append(errs, "Sort order is invalid")
	}

	return model.ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
