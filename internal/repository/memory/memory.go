package memory

import (
	"context"
	"sync"

	"github.com/gapa64/async-web-monitoring/internal/domain/result"
)

var _ result.Sink = (*Sink)(nil)

// Sink keeps results in memory. Used by tests and by dry runs where nothing
// should touch the database.
type Sink struct {
	mu        sync.Mutex
	successes []result.Result
	errors    []result.Result
}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) RecordSuccess(_ context.Context, r *result.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, *r)
	return nil
}

func (s *Sink) RecordError(_ context.Context, r *result.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, *r)
	return nil
}

func (s *Sink) Successes() []result.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]result.Result, len(s.successes))
	copy(out, s.successes)
	return out
}

func (s *Sink) Errors() []result.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]result.Result, len(s.errors))
	copy(out, s.errors)
	return out
}
