package model

// BookEventType discriminates the payload of a BookEvent.
type BookEventType string

const (
	EventStateChange    BookEventType = "state_change"
	EventProgressUpdate BookEventType = "progress_update"
	EventComment        BookEventType = "comment"
	EventQuote          BookEventType = "quote"
	EventReview         BookEventType = "review"
	EventRating         BookEventType = "rating"
)

type StateChangeData struct {
	From BookState `json:"from"`
	To   BookState `json:"to"`
}

type ProgressUpdateData struct {
	From int `json:"from"`
	To   int `json:"to"`
	// PagesRead is To-From, negative when progress is corrected downward.
	PagesRead int `json:"pages_read"`
}

type CommentData struct {
	Text string `json:"text"`
	Page *int   `json:"page,omitempty"`
}

type QuoteData struct {
	Text    string `json:"text"`
	Page    *int   `json:"page,omitempty"`
	Chapter string `json:"chapter,omitempty"`
}

type ReviewData struct {
	Rating      int    `json:"rating"`
	Text        string `json:"text"`
	SpoilerFree bool   `json:"spoiler_free"`
}

type RatingData struct {
	Rating int `json:"rating"`
}

// EventData is a tagged union, exactly one field is non-nil and it must
// agree with the event type. Use the NewXxxEvent constructors so the tag
// and payload can't drift apart.
type EventData struct {
	StateChange    *StateChangeData    `json:"state_change,omitempty"`
	ProgressUpdate *ProgressUpdateData `json:"progress_update,omitempty"`
	Comment        *CommentData        `json:"comment,omitempty"`
	Quote          *QuoteData          `json:"quote,omitempty"`
	Review         *ReviewData         `json:"review,omitempty"`
	Rating         *RatingData         `json:"rating,omitempty"`
}

// BookEvent is one immutable record of a mutation or annotation on a book.
// Events are appended once and never edited or deleted.
type BookEvent struct {
	ID     string        `json:"id"`
	BookID string        `json:"book_id"`
	UserID string        `json:"user_id"`
	Type   BookEventType `json:"type"`
	// Timestamp is unix milliseconds.
	Timestamp int64     `json:"timestamp"`
	Data      EventData `json:"data"`
}

func NewStateChangeEvent(bookID, userID string, from, to BookState) *BookEvent {
	return &BookEvent{
		BookID: bookID,
		UserID: userID,
		Type:   EventStateChange,
		Data:   EventData{StateChange: &StateChangeData{From: from, To: to}},
	}
}

func NewProgressUpdateEvent(bookID, userID string, from, to int) *BookEvent {
	return &BookEvent{
		BookID: bookID,
		UserID: userID,
		Type:   EventProgressUpdate,
		Data: EventData{ProgressUpdate: &ProgressUpdateData{
			From:      from,
			To:        to,
			PagesRead: to - from,
		}},
	}
}

func NewCommentEvent(bookID, userID string, data CommentData) *BookEvent {
	return &BookEvent{
		BookID: bookID,
		UserID: userID,
		Type:   EventComment,
		Data:   EventData{Comment: &data},
	}
}

func NewQuoteEvent(bookID, userID string, data QuoteData) *BookEvent {
	return &BookEvent{
		BookID: bookID,
		UserID: userID,
		Type:   EventQuote,
		Data:   EventData{Quote: &data},
	}
}

func NewReviewEvent(bookID, userID string, data ReviewData) *BookEvent {
	return &BookEvent{
		BookID: bookID,
		UserID: userID,
		Type:   EventReview,
		Data:   EventData{Review: &data},
	}
}

func NewRatingEvent(bookID, userID string, rating int) *BookEvent {
	return &BookEvent{
		BookID: bookID,
		UserID: userID,
		Type:   EventRating,
		Data:   EventData{Rating: &RatingData{Rating: rating}},
	}
}

type FindBookEvent struct {
	BookID *string        `json:"book_id"`
	UserID *string        `json:"user_id"`
	Type   *BookEventType `json:"type"`

	// The maximum number of events to return.
	Limit *int `json:"limit"`
}
