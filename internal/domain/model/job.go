package model

import (
	"strings"
	"time"
)

type JobStatus string

const (
	JobActive  JobStatus = "active"
	JobDeleted JobStatus = "deleted"
)

// Defaults applied when a job is posted without them.
const (
	DefaultExperienceLevel = "intermediate"
	DefaultProjectType     = "fixed"
)

// Job is a posting by an admin.
type Job struct {
	ID                string     `json:"_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	ExperienceLevel   string     `json:"experienceLevel"`
	ProjectType       string     `json:"projectType"`
	Budget            string     `json:"budget"`
	Duration          string     `json:"duration"`
	Skills            []string   `json:"skills"`
	Deadline          *time.Time `json:"deadline"`
	AdminID           string     `json:"adminId"`
	AdminName         string     `json:"adminName"`
	Status            JobStatus  `json:"status"`
	ApplicationsCount int        `json:"applicationsCount"`
	CreatedAt         time.Time  `json:"createdAt"`
	DeletedAt         *time.Time `json:"deletedAt,omitempty"`
}

// Closed reports whether the application deadline has passed at now.
func (j *Job) Closed(now time.Time) bool {
	return j.Deadline != nil && now.After(*j.Deadline)
}

// JobFilter narrows ListJobs. Empty fields match everything.
type JobFilter struct {
	Category string
	AdminID  string
	Query    string
}

// Matches applies the filter in memory; deleted jobs never match.
func (f JobFilter) Matches(j *Job) bool {
	if j.Status == JobDeleted {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.AdminID != "" && j.AdminID != f.AdminID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(j.Title), q) || strings.Contains(strings.ToLower(j.Description), q) {
			return true
		}
		for _, s := range j.Skills {
			if strings.Contains(strings.ToLower(s), q) {
				return true
			}
		}
		return false
	}
	return true
}
