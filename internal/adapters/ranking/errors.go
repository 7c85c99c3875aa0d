package ranking

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("freelancer not ranked")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
