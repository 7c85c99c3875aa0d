package model

import "time"

type BidStatus string

const (
	BidActive   BidStatus = "active"
	BidAccepted BidStatus = "accepted"
	BidOutbid   BidStatus = "outbid"
)

// Bid is an admin's monetary offer on an application.
type Bid struct {
	ID            string    `json:"_id"`
	ApplicationID string    `json:"applicationId"`
	JobID         string    `json:"jobId"`
	FreelancerID  string    `json:"freelancerId"`
	AdminID       string    `json:"adminId"`
	AdminName     string    `json:"adminName"`
	Amount        float64   `json:"amount"`
	Status        BidStatus `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
