package search

import (
	"context"

	"github.com/kailas-cloud/talentsearch/internal/domain/search/request"
	"github.com/kailas-cloud/talentsearch/internal/domain/search/stage"
)

// Stream delivers stage results over an unbuffered channel fed by one
// producer goroutine.
type Stream struct {
	results <-chan stage.Result
	cancel  context.CancelFunc
	done    chan struct{}
}

// Stream starts the search in the background. The consumer must read
// Results until it is closed or call Close to abandon the search.
func (s *Service) Stream(ctx context.Context, req *request.Request) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan stage.Result)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(ch)
		for res := range s.Search(ctx, req) {
			select {
			case ch <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Stream{results: ch, cancel: cancel, done: done}
}

// Results yields stages in order; it is closed after the final stage or on
// cancellation.
func (st *Stream) Results() <-chan stage.Result { return st.results }

// Close cancels the search and waits for the producer to exit. Safe to call
// more than once.
func (st *Stream) Close() {
	st.cancel()
	<-st.done
}
