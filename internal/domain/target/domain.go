package target

import (
	"regexp"
	"time"
)

// Target is one page to check: where to fetch, how long to wait, and what
// the body is expected to contain. Immutable once loaded; duplicates are
// allowed and checked independently.
type Target struct {
	URL     string
	Timeout time.Duration
	// Pattern is nil when no content check was configured; any well-formed
	// response then counts as a match.
	Pattern *regexp.Regexp
}
