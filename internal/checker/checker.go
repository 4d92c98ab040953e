package checker

import (
	"fmt"
	"time"

	"github.com/gapa64/async-web-monitoring/internal/domain/result"
	"github.com/gapa64/async-web-monitoring/internal/domain/target"
	"github.com/gapa64/async-web-monitoring/internal/fetch"
)

// Classify turns a raw fetch outcome into a result. The HTTP status code is
// recorded but never decides success: a 404 whose body matches the pattern
// still classifies as success, a 200 without a match is a mismatch.
func Classify(t target.Target, o fetch.Outcome) result.Result {
	ts := o.Start
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	r := result.Result{
		URL:        t.URL,
		Timestamp:  ts,
		Elapsed:    o.Elapsed,
		StatusCode: o.StatusCode,
	}

	switch {
	case o.TimedOut:
		r.Kind = result.KindTimeout
		r.Detail = fmt.Sprintf("no response within %s", t.Timeout)
	case o.Err != nil:
		r.Kind = result.KindNetworkError
		r.Detail = o.Reason
	case t.Pattern == nil:
		r.Kind = result.KindSuccess
	default:
		if m := t.Pattern.Find(o.Body); m != nil {
			r.Kind = result.KindSuccess
			r.Detail = string(m)
		} else {
			r.Kind = result.KindPatternMismatch
			r.Detail = "pattern not found"
		}
	}
	return r
}
