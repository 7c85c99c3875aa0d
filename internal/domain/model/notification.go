package model

import "time"

type NotificationType string

const (
	NotifyNewApplication      NotificationType = "new_application"
	NotifyBidReceived         NotificationType = "bid_received"
	NotifyCompetingBid        NotificationType = "competing_bid"
	NotifyBidAccepted         NotificationType = "bid_accepted"
	NotifyApplicationAccepted NotificationType = "application_accepted"
	NotifyProjectCompleted    NotificationType = "project_completed"
	NotifyJobMatch            NotificationType = "job_match"
)

// Notification is a message for one user about something that happened to
// a job, application or bid (RefID).
type Notification struct {
	ID        string           `json:"_id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	RefID     string           `json:"refId"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
