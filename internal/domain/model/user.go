// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Role separates freelancers from the admins who hire them.
type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleFreelancer || r == RoleAdmin
}

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              Role      `json:"role"`
	Bio               string    `json:"bio"`
	Skills            []string  `json:"skills"`
	CompletedProjects int       `json:"completedProjects"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ProfileUpdate holds the optional fields of a profile edit; nil means unchanged.
type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Skills []string
}

// Earnings summarises what a freelancer has been paid or promised.
type Earnings struct {
	FreelancerID string  `json:"freelancerId"`
	Total        float64 `json:"total"`
	Completed    float64 `json:"completed"`
	Pending      float64 `json:"pending"`
	Accepted     int     `json:"acceptedProjects"`
	Finished     int     `json:"completedProjects"`
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeSkills trims entries and drops blanks and case-insensitive repeats.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SplitSkills parses a comma separated skill list.
func SplitSkills(s string) []string {
	return NormalizeSkills(strings.Split(s, ","))
}

// SharesSkill reports whether a and b have a skill in common, ignoring case.
func SharesSkill(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}
