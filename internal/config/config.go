// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Storage backends accepted by the "store" key.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":4000".
	Addr string `koanf:"addr" validate:"required"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// Store selects the persistence backend.
	Store string `koanf:"store" validate:"oneof=mongo memory"`

	MongoURI       string `koanf:"mongo_uri" validate:"required_if=Store mongo"`
	MongoDatabase  string `koanf:"mongo_database" validate:"required_if=Store mongo"`
	MongoTimeoutMS int    `koanf:"mongo_timeout_ms" validate:"gte=100"`

	// BcryptCost is the work factor for password hashes.
	BcryptCost int `koanf:"bcrypt_cost" validate:"gte=4,lte=31"`

	// EventQueueSize bounds the in-memory notification event queue.
	EventQueueSize int `koanf:"queue_size" validate:"gte=1"`

	// WorkerCount sets the number of notification workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// DedupeSize sets the size of the event deduplication cache.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=1"`

	// LeaderboardDefaultLimit is used when GET /leaderboard has no limit.
	LeaderboardDefaultLimit int `koanf:"leaderboard_default_limit" validate:"gte=1,ltefield=MaxLeaderboardLimit"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gte=1"`

	// RankingRefreshSec is the period of full leaderboard rebuilds; 0 disables them.
	RankingRefreshSec int `koanf:"ranking_refresh_sec" validate:"gte=0"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":4000",
		CORSOrigins:             []string{"http://localhost:5173"},
		Store:                   StoreMongo,
		MongoURI:                "mongodb://localhost:27017",
		MongoDatabase:           "freelance_marketplace",
		MongoTimeoutMS:          5000,
		BcryptCost:              10,
		EventQueueSize:          10_000,
		WorkerCount:             runtime.NumCPU() * 2,
		DedupeSize:              100_000,
		LeaderboardDefaultLimit: 10,
		MaxLeaderboardLimit:     100,
		RankingRefreshSec:       60,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
