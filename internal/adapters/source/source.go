// Package source provides the match stream consumed by the replay engine:
// a deduplicated, identity-canonicalized match log with the deterministic
// sort key (date, match id).
package source

import (
	"context"
	"sort"

	"github.com/razaool/baseline/internal/domain/model"
)

// MatchSource iterates one ordered match stream. Next returns the next
// match and true, or a zero match and false once the stream is exhausted.
type MatchSource interface {
	Next(ctx context.Context) (model.Match, bool, error)
}

// SliceSource serves matches from an in-memory slice, sorting them by the
// stream key on construction. Used by tests and ad-hoc replays.
type SliceSource struct {
	matches []model.Match
	next    int
}

// NewSliceSource copies and sorts the given matches by (date, match id).
func NewSliceSource(matches []model.Match) *SliceSource {
	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return &SliceSource{matches: sorted}
}

// Next returns the next match in stream order.
func (s *SliceSource) Next(ctx context.Context) (model.Match, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Match{}, false, err
	}
	if s.next >= len(s.matches) {
		return model.Match{}, false, nil
	}
	m := s.matches[s.next]
	s.next++
	return m, true, nil
}
