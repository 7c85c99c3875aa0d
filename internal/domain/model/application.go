package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationBidding   ApplicationStatus = "bidding"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationCompleted ApplicationStatus = "completed"
)

// Open reports whether the application can still be accepted or bid on.
func (s ApplicationStatus) Open() bool {
	return s == ApplicationPending || s == ApplicationBidding
}

// Application is a freelancer's proposal against a job.
type Application struct {
	ID             string            `json:"_id"`
	JobID          string            `json:"jobId"`
	JobTitle       string            `json:"jobTitle"`
	FreelancerID   string            `json:"freelancerId"`
	FreelancerName string            `json:"freelancerName"`
	ProposedPrice  float64           `json:"proposedPrice"`
	Proposal       string            `json:"proposal"`
	Status         ApplicationStatus `json:"status"`
	AppliedAt      time.Time         `json:"appliedAt"`
	AcceptedBidID  string            `json:"acceptedBidId,omitempty"`
	FinalPrice     *float64          `json:"finalPrice,omitempty"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
}

// AgreedPrice is the accepted bid amount when there is one, else the proposal.
func (a *Application) AgreedPrice() float64 {
	if a.FinalPrice != nil {
		return *a.FinalPrice
	}
	return a.ProposedPrice
}

// ApplicationChange describes a conditional status transition.
// The update applies only while the current status is one of From.
type ApplicationChange struct {
	From          []ApplicationStatus
	To            ApplicationStatus
	AcceptedBidID string
	FinalPrice    *float64
	CompletedAt   *time.Time
}

// Allows reports whether the change may be applied to status s.
func (c ApplicationChange) Allows(s ApplicationStatus) bool {
	for _, f := range c.From {
		if f == s {
			return true
		}
	}
	return false
}

// Apply writes the change into a.
func (c ApplicationChange) Apply(a *Application) {
	a.Status = c.To
	if c.AcceptedBidID != "" {
		a.AcceptedBidID = c.AcceptedBidID
	}
	if c.FinalPrice != nil {
		p := *c.FinalPrice
		a.FinalPrice = &p
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		a.CompletedAt = &t
	}
}
