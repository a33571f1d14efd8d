package engine

import "errors"

// Sentinel kinds for replay errors.
var (
	// ErrOutOfOrder indicates the match stream regressed on the
	// (date, match id) ordering key. Elo and Glicko-2 are Markov chains
	// over that order; continuing would silently corrupt every
	// subsequent rating, so the batch fails instead.
	ErrOutOfOrder = errors.New("match stream out of chronological order")

	// ErrSelfMatch indicates a match whose two player ids are equal,
	// which upstream identity canonicalization should have prevented.
	ErrSelfMatch = errors.New("match references the same player twice")

	// ErrUnknownWinner indicates a winner id naming neither player.
	ErrUnknownWinner = errors.New("winner is not one of the match players")
)
