package model

import "time"

// EventKind names a marketplace change that may produce notifications.
type EventKind string

const (
	EventJobPosted            EventKind = "job_posted"
	EventApplicationSubmitted EventKind = "application_submitted"
	EventApplicationAccepted  EventKind = "application_accepted"
	EventBidPlaced            EventKind = "bid_placed"
	EventBidAccepted          EventKind = "bid_accepted"
	EventProjectCompleted     EventKind = "project_completed"
)

// Event is handed from the service to the notification workers. Workers
// load the subject (a job, application or bid depending on Kind) themselves.
type Event struct {
	ID        string    // "<kind>:<subject id>", unique per change
	Kind      EventKind
	SubjectID string    // id of the job, application or bid
	ActorID   string    // user who caused the change
	TS        time.Time // when the change happened
}

// NewEvent builds an event with its deterministic id.
func NewEvent(kind EventKind, subjectID, actorID string, ts time.Time) Event {
	return Event{
		ID:        string(kind) + ":" + subjectID,
		Kind:      kind,
		SubjectID: subjectID,
		ActorID:   actorID,
		TS:        ts,
	}
}
