package result

import "time"

type Kind string

const (
	KindSuccess         Kind = "success"
	KindPatternMismatch Kind = "pattern_mismatch"
	KindNetworkError    Kind = "network_error"
	KindTimeout         Kind = "timeout"
)

// Result is the classified outcome of checking one target in one run.
type Result struct {
	URL        string        `json:"url"`
	Timestamp  time.Time     `json:"timestamp"`
	Elapsed    time.Duration `json:"elapsed"`
	StatusCode int           `json:"status_code"`
	Kind       Kind          `json:"kind"`
	// Detail carries the matched excerpt on success and a short error
	// classification otherwise.
	Detail string `json:"detail"`
}

func (r *Result) OK() bool { return r.Kind == KindSuccess }

func (r *Result) ElapsedMS() int64 { return r.Elapsed.Milliseconds() }
