package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gapa64/async-web-monitoring/internal/domain/result"
)

func TestSinkPartitionsWrites(t *testing.T) {
	s := NewSink()
	ctx := context.Background()

	ok := result.Result{URL: "http://a.test", Kind: result.KindSuccess, Detail: "hello"}
	bad := result.Result{URL: "http://b.test", Kind: result.KindTimeout}

	if err := s.RecordSuccess(ctx, &ok); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := s.RecordError(ctx, &bad); err != nil {
		t.Fatalf("record error: %v", err)
	}

	if got := s.Successes(); len(got) != 1 || got[0].URL != "http://a.test" {
		t.Fatalf("successes: %+v", got)
	}
	if got := s.Errors(); len(got) != 1 || got[0].Kind != result.KindTimeout {
		t.Fatalf("errors: %+v", got)
	}
}

func TestSinkConcurrentWrites(t *testing.T) {
	s := NewSink()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := result.Result{URL: fmt.Sprintf("http://t%d.test", i), Kind: result.KindSuccess}
			_ = s.RecordSuccess(ctx, &r)
		}(i)
	}
	wg.Wait()

	if got := len(s.Successes()); got != 50 {
		t.Fatalf("want 50 writes, got %d", got)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := NewSink()
	r := result.Result{URL: "http://a.test", Kind: result.KindSuccess}
	_ = s.RecordSuccess(context.Background(), &r)

	snap := s.Successes()
	snap[0].URL = "mutated"

	if got := s.Successes()[0].URL; got != "http://a.test" {
		t.Fatalf("snapshot mutation leaked into the sink: %q", got)
	}
}
