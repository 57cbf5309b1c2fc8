package model

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
)

// Job is one unit of shelf-sync work, pushed after an accepted state
// transition.
type Job struct {
	ID     int
	UserID string
	BookID string
	// From and To are the states of the transition that produced the job.
	From   BookState
	To     BookState
	Status string
}
