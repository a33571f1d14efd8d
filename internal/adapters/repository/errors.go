package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound indicates no snapshot exists for the requested player/date.
	ErrNotFound = errors.New("snapshot not found")

	// ErrDuplicateDate indicates a second snapshot for the same
	// (player, date) pair, a hard data-integrity violation.
	ErrDuplicateDate = errors.New("duplicate snapshot date for player")

	// ErrUnorderedHistory indicates a snapshot sequence whose career match
	// numbers are not strictly increasing without gaps.
	ErrUnorderedHistory = errors.New("career match numbers not strictly increasing")

	// ErrInvalidLimit indicates a non-positive leaderboard limit.
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
