package talentsearch

import (
	"iter"

	searchuc "github.com/kailas-cloud/talentsearch/internal/usecase/search"
)

// Stream delivers the stages of one search in order.
type Stream struct {
	inner *searchuc.Stream
}

// Next blocks until the next stage arrives. ok is false once the final stage
// was delivered or the search was cancelled.
func (s *Stream) Next() (StageResult, bool) {
	res, ok := <-s.inner.Results()
	if !ok {
		return StageResult{}, false
	}
	return fromStage(&res), true
}

// All ranges over the remaining stages. Breaking out of the loop cancels the
// search.
func (s *Stream) All() iter.Seq[StageResult] {
	return func(yield func(StageResult) bool) {
		defer s.Close()
		for {
			res, ok := s.Next()
			if !ok || !yield(res) {
				return
			}
		}
	}
}

// Close cancels the search if it is still running. Safe to call more than once.
func (s *Stream) Close() { s.inner.Close() }
