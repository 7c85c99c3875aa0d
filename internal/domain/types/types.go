// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank              int      `json:"rank"`
	FreelancerID      string   `json:"freelancerId"`
	Name              string   `json:"name"`
	CompletedProjects int      `json:"completedProjects"`
	Skills            []string `json:"skills"`
}
