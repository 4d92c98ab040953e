package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gapa64/async-web-monitoring/internal/config"
	"github.com/gapa64/async-web-monitoring/internal/domain/target"
)

const defaultMaxBodyBytes = 1 << 20

// Outcome is the raw result of a single fetch attempt, before pattern
// classification. Exactly one of the three shapes holds: a well-formed
// response (Err nil, TimedOut false), a timeout (TimedOut), or a transport
// failure (Err set, Reason classified).
type Outcome struct {
	StatusCode int
	Body       []byte
	Start      time.Time
	Elapsed    time.Duration
	TimedOut   bool
	Err        error
	Reason     string
}

type Fetcher struct {
	client         *http.Client
	userAgent      string
	defaultTimeout time.Duration
	maxBody        int64
}

func New(cfg config.HTTP) *Fetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}

	// No client-level timeout: the budget varies per target and is applied
	// through the request context in Fetch.
	client := &http.Client{Transport: otelhttp.NewTransport(transport)}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Fetcher{
		client:         client,
		userAgent:      cfg.UserAgent,
		defaultTimeout: cfg.DefaultTimeout,
		maxBody:        maxBody,
	}
}

// Fetch issues one GET to the target and waits at most the target's timeout,
// covering connect, headers and body read. Single attempt, no retries. Any
// HTTP status is a well-formed outcome; only the checker decides success.
func (f *Fetcher) Fetch(ctx context.Context, t target.Target) Outcome {
	budget := t.Timeout
	if budget <= 0 {
		budget = f.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()
	out := Outcome{Start: start.UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		out.Elapsed = time.Since(start)
		out.Err = err
		out.Reason = "bad-request"
		return out
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		out.Elapsed = time.Since(start)
		if deadlineHit(ctx, err) {
			out.TimedOut = true
			return out
		}
		out.Err = err
		out.Reason = Reason(err)
		return out
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	out.Elapsed = time.Since(start)
	if err != nil {
		if deadlineHit(ctx, err) {
			out.TimedOut = true
			return out
		}
		out.Err = err
		out.Reason = "body-read-failure"
		return out
	}

	out.StatusCode = resp.StatusCode
	out.Body = body
	return out
}

func deadlineHit(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded)
}
