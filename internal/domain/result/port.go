package result

import "context"

// Sink is the persistence boundary for results. Successes and errors go to
// separate destinations. A failed write is reported to the caller and must
// not affect other in-flight writes.
type Sink interface {
	RecordSuccess(ctx context.Context, r *Result) error
	RecordError(ctx context.Context, r *Result) error
}
