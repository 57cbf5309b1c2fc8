package model

// BookState is the reading state of a book.
type BookState string

const (
	// StateNotStarted is the initial state of every book.
	StateNotStarted BookState = "not_started"
	// StateInProgress marks a book that is currently being read.
	StateInProgress BookState = "in_progress"
	// StateFinished marks a book that has been read to the end.
	StateFinished BookState = "finished"
)

func (s BookState) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known reading states.
func (s BookState) IsValid() bool {
	switch s {
	case StateNotStarted, StateInProgress, StateFinished:
		return true
	}
	return false
}

// BookMetadata holds the descriptive fields of a book. All fields are
// optional.
type BookMetadata struct {
	// Pages is the total page count, must be positive when set.
	Pages *int `json:"pages,omitempty"`
	// Genre is a set of genre labels.
	Genre []string `json:"genre,omitempty"`
	// PublishedYear must be in [0, currentYear+1] when set.
	PublishedYear *int `json:"published_year,omitempty"`
	// Rating must be in [1,5] when set.
	Rating      *int   `json:"rating,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	Description string `json:"description,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
}

type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`

	State BookState `json:"state"`
	// Progress is the number of pages read, meaningful while State is
	// in_progress.
	Progress int `json:"progress"`

	IsOwned       bool     `json:"is_owned"`
	OwnerID       string   `json:"owner_id"`
	Collaborators []string `json:"collaborators"`

	Metadata BookMetadata `json:"metadata"`

	// Timestamps are unix milliseconds.
	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`
	// StartedTs is set on the first entry into in_progress.
	StartedTs *int64 `json:"started_ts,omitempty"`
	// FinishedTs is set while the book is finished, cleared when re-opened.
	FinishedTs *int64 `json:"finished_ts,omitempty"`
}

// Clone returns a deep copy so that callers can apply changes without
// mutating the original.
func (b *Book) Clone() *Book {
	clone := *b
	clone.Collaborators = append([]string(nil), b.Collaborators...)
	clone.Metadata.Genre = append([]string(nil), b.Metadata.Genre...)
	if b.Metadata.Pages != nil {
		pages := *b.Metadata.Pages
		clone.Metadata.Pages = &pages
	}
	if b.Metadata.PublishedYear != nil {
		year := *b.Metadata.PublishedYear
		clone.Metadata.PublishedYear = &year
	}
	if b.Metadata.Rating != nil {
		rating := *b.Metadata.Rating
		clone.Metadata.Rating = &rating
	}
	if b.StartedTs != nil {
		ts := *b.StartedTs
		clone.StartedTs = &ts
	}
	if b.FinishedTs != nil {
		ts := *b.FinishedTs
		clone.FinishedTs = &ts
	}
	return &clone
}

type FindBook struct {
	ID      *string    `json:"id"`
	OwnerID *string    `json:"owner_id"`
	State   *BookState `json:"state"`
	IsOwned *bool      `json:"is_owned"`
	Author  *string    `json:"author"`

	// The maximum number of books to return.
	Limit *int `json:"limit"`
}

// Matches reports whether the book satisfies every filter that is set.
// It mirrors the WHERE clause built in the store so that live
// subscriptions and list queries agree on what a filter means.
func (f *FindBook) Matches(b *Book) bool {
	if f == nil {
		return true
	}
	if v := f.ID; v != nil && b.ID != *v {
		return false
	}
	if v := f.OwnerID; v != nil && b.OwnerID != *v {
		return false
	}
	if v := f.State; v != nil && b.State != *v {
		return false
	}
	if v := f.IsOwned; v != nil && b.IsOwned != *v {
		return false
	}
	if v := f.Author; v != nil && b.Author != *v {
		return false
	}
	return true
}

// BookCreateRequest is the payload for creating a book. The new book
// always starts in not_started with zero progress.
type BookCreateRequest struct {
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	IsOwned       bool         `json:"is_owned"`
	Collaborators []string     `json:"collaborators"`
	Metadata      BookMetadata `json:"metadata"`
}

// BookUpdateRequest carries partial descriptive updates. Reading state and
// progress are changed only through their dedicated operations.
type BookUpdateRequest struct {
	Title    *string       `json:"title"`
	Author   *string       `json:"author"`
	IsOwned  *bool         `json:"is_owned"`
	Metadata *BookMetadata `json:"metadata"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
