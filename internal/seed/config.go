// Package seed fills a running bidhub instance with demo data through its
// HTTP API and checks the resulting leaderboard.
package seed

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the seeder settings.
type Config struct {
	BaseURL string `validate:"required,url"`

	Admins      int `validate:"gte=1"`
	Freelancers int `validate:"gte=1"`
	Jobs        int `validate:"gte=1"`

	// ApplicationsPerJob is capped at Freelancers.
	ApplicationsPerJob int `validate:"gte=1"`
	// BidsPerApplication is capped at Admins.
	BidsPerApplication int `validate:"gte=0"`
	// CompleteRatio is the share of accepted work that gets completed.
	CompleteRatio float64 `validate:"gte=0,lte=1"`

	Workers int           `validate:"gte=1"`
	Timeout time.Duration `validate:"gt=0"`
	// RandSeed makes prices and skill picks reproducible.
	RandSeed uint64
	Verbose  bool
}

// DefaultConfig returns settings for a small local run.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "http://localhost:4000",
		Admins:             5,
		Freelancers:        20,
		Jobs:               30,
		ApplicationsPerJob: 3,
		BidsPerApplication: 2,
		CompleteRatio:      0.6,
		Workers:            8,
		Timeout:            10 * time.Second,
		RandSeed:           1,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid seed config: %w", err)
	}
	return nil
}

// Stats counts what a run created.
type Stats struct {
	Users         int
	Jobs          int
	Applications  int
	Bids          int
	Accepted      int
	Completed     int
	Failed        int
	RankedChecked int
	StartTime     time.Time
	Duration      time.Duration
}
