package model

// Shelf sort orders.
const (
	ShelfSortManual    = "manual"
	ShelfSortTitle     = "title"
	ShelfSortAuthor    = "author"
	ShelfSortDateAdded = "dateAdded"
	ShelfSortDateRead  = "dateRead"
)

// Names of the default shelves created for every user.
const (
	ShelfCurrentlyReading = "Currently Reading"
	ShelfFinished         = "Finished"
	ShelfWishlist         = "Wishlist"
)

type Shelf struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	OwnerID     string   `json:"owner_id"`
	BookIDs     []string `json:"book_ids"`
	IsDefault   bool     `json:"is_default"`
	SortOrder   string   `json:"sort_order"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`
}

// Clone returns a deep copy so that callers can apply changes without
// mutating the cached shelf.
func (s *Shelf) Clone() *Shelf {
	clone := *s
	clone.BookIDs = append([]string(nil), s.BookIDs...)
	return &clone
}

// Contains reports whether bookID is on the shelf.
func (s *Shelf) Contains(bookID string) bool {
	for _, id := range s.BookIDs {
		if id == bookID {
			return true
		}
	}
	return false
}

type FindShelf struct {
	ID        *string `json:"id"`
	OwnerID   *string `json:"owner_id"`
	Name      *string `json:"name"`
	IsDefault *bool   `json:"is_default"`
}

type ShelfCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   string `json:"sort_order"`
}

// DefaultShelves returns the three shelves every user starts with.
func DefaultShelves(ownerID string) []*Shelf {
	return []*Shelf{
		{
			Name:        ShelfCurrentlyReading,
			Description: "Books you are currently reading",
			OwnerID:     ownerID,
			IsDefault:   true,
			SortOrder:   ShelfSortManual,
			BookIDs:     []string{},
		},
		{
			Name:        ShelfFinished,
			Description: "Books you have completed",
			OwnerID:     ownerID,
			IsDefault:   true,
			SortOrder:   ShelfSortDateRead,
			BookIDs:     []string{},
		},
		{
			Name:        ShelfWishlist,
			Description: "Books you want to read",
			OwnerID:     ownerID,
			IsDefault:   true,
			SortOrder:   ShelfSortDateAdded,
			BookIDs:     []string{},
		},
	}
}
