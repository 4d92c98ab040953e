package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gapa64/async-web-monitoring/internal/checker"
	"github.com/gapa64/async-web-monitoring/internal/domain/result"
	"github.com/gapa64/async-web-monitoring/internal/domain/target"
	"github.com/gapa64/async-web-monitoring/internal/fetch"
	"github.com/gapa64/async-web-monitoring/internal/obs"
)

var (
	mChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webmon_checks_total", Help: "Checks completed, by outcome kind.",
	}, []string{"kind"})
	mSinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webmon_sink_errors_total", Help: "Result writes that failed.",
	})
	mFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "webmon_fetch_latency_seconds", Help: "Per-target fetch latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// Fetcher is what the runner needs from the fetch layer.
type Fetcher interface {
	Fetch(ctx context.Context, t target.Target) fetch.Outcome
}

// Summary aggregates one run for logging and the process exit code.
type Summary struct {
	Total        int
	Success      int
	Mismatch     int
	NetworkError int
	Timeout      int
	SinkFailures int
	Duration     time.Duration
}

// Runner drives one batch: one concurrent check per target, every check
// isolated, all results persisted before Run returns.
type Runner struct {
	log           *zap.Logger
	fetcher       Fetcher
	sink          result.Sink
	maxConcurrent int
}

func NewRunner(log *zap.Logger, f Fetcher, sink result.Sink, maxConcurrent int) *Runner {
	return &Runner{log: log, fetcher: f, sink: sink, maxConcurrent: maxConcurrent}
}

// Run checks every target concurrently and returns exactly one result per
// target, in input order. It returns only after every result has been
// produced and its write attempted; targets never block each other.
func (r *Runner) Run(ctx context.Context, targets []target.Target) ([]result.Result, Summary) {
	tr := otel.Tracer("monitor.runner")
	ctx, span := tr.Start(ctx, "monitor.run",
		trace.WithAttributes(attribute.Int("run.targets", len(targets))),
	)
	defer span.End()

	start := time.Now()
	results := make([]result.Result, len(targets))

	limit := r.maxConcurrent
	if limit <= 0 || limit > len(targets) {
		limit = len(targets)
	}
	sem := make(chan struct{}, max(limit, 1))

	var sinkFailures atomic.Int64
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t target.Target) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.check(ctx, t, &sinkFailures)
		}(i, t)
	}
	wg.Wait()

	sum := Summary{
		Total:        len(targets),
		SinkFailures: int(sinkFailures.Load()),
		Duration:     time.Since(start),
	}
	for i := range results {
		switch results[i].Kind {
		case result.KindSuccess:
			sum.Success++
		case result.KindPatternMismatch:
			sum.Mismatch++
		case result.KindNetworkError:
			sum.NetworkError++
		case result.KindTimeout:
			sum.Timeout++
		}
	}

	span.SetAttributes(
		attribute.Int("run.success", sum.Success),
		attribute.Int("run.mismatch", sum.Mismatch),
		attribute.Int("run.network_errors", sum.NetworkError),
		attribute.Int("run.timeouts", sum.Timeout),
		attribute.Int("run.sink_failures", sum.SinkFailures),
	)
	return results, sum
}

// check fetches, classifies and records one target. Anything that escapes
// the fetch/classify path, panics included, becomes a network-error result
// so one broken target cannot take the run down.
func (r *Runner) check(ctx context.Context, t target.Target, sinkFailures *atomic.Int64) (res result.Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("check panicked",
				zap.String("url", t.URL), zap.Any("panic", p))
			res = result.Result{
				URL:       t.URL,
				Timestamp: time.Now().UTC(),
				Kind:      result.KindNetworkError,
				Detail:    fmt.Sprintf("internal-error: %v", p),
			}
			mChecks.WithLabelValues(string(res.Kind)).Inc()
			r.record(ctx, &res, sinkFailures)
		}
	}()

	tr := otel.Tracer("monitor.runner")
	ctx, span := tr.Start(ctx, "monitor.check",
		trace.WithAttributes(attribute.String("target.url", t.URL)),
	)
	defer span.End()

	out := r.fetcher.Fetch(ctx, t)
	mFetchLatency.Observe(out.Elapsed.Seconds())

	res = checker.Classify(t, out)
	mChecks.WithLabelValues(string(res.Kind)).Inc()
	span.SetAttributes(attribute.String("check.kind", string(res.Kind)))

	if out.Err != nil {
		obs.WithTrace(ctx, r.log).Warn("fetch failed",
			zap.String("url", t.URL),
			zap.String("reason", out.Reason),
			zap.Error(out.Err))
	}

	r.record(ctx, &res, sinkFailures)
	return res
}

func (r *Runner) record(ctx context.Context, res *result.Result, sinkFailures *atomic.Int64) {
	var err error
	if res.OK() {
		err = r.sink.RecordSuccess(ctx, res)
	} else {
		err = r.sink.RecordError(ctx, res)
	}
	if err != nil {
		sinkFailures.Add(1)
		mSinkErrors.Inc()
		obs.WithTrace(ctx, r.log).Warn("record result",
			zap.String("url", res.URL),
			zap.String("kind", string(res.Kind)),
			zap.Error(err))
	}
}
