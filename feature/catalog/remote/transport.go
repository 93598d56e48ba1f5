package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// minRate is the floor the limiter backs off to after throttling responses.
const minRate = rate.Limit(0.1)

// StatusError is a non-200 response from a remote source.
type StatusError struct {
	Dataset string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Dataset, e.Code, e.Body)
}

// Transport performs paced remote requests shared by every client. Raw payloads
// are archived to, or replayed from, the snapshot store when configured.
type Transport struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *zap.Logger

	snapshots *Snapshots
	archive   bool
	replay    bool

	mu      sync.Mutex
	current rate.Limit
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the default timeout-bound client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.http = c }
}

// WithLogger sets the transport logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// WithSnapshots enables archiving raw payloads and/or replaying the newest one.
func WithSnapshots(s *Snapshots, archive, replay bool) Option {
	return func(t *Transport) {
		t.snapshots = s
		t.archive = archive
		t.replay = replay
	}
}

// NewTransport creates a transport from cfg.
func NewTransport(cfg Config, opts ...Option) *Transport {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 120
	}
	rps := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		rps = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	t := &Transport{
		http:      &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter:   rate.NewLimiter(rps, burst),
		userAgent: cfg.UserAgent,
		logger:    zap.NewNop(),
		current:   rps,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.snapshots == nil {
		t.archive, t.replay = false, false
	}
	return t
}

// Fetch returns the raw payload of dataset. build creates the request; it is not
// called when replaying.
func (t *Transport) Fetch(ctx context.Context, dataset string, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if t.replay {
		raw, key, err := t.snapshots.Latest(ctx, dataset)
		if err != nil {
			return nil, err
		}
		t.logger.Info("Replaying snapshot", zap.String("dataset", dataset), zap.String("object", key))
		return raw, nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limiter: %w", dataset, err)
	}

	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", dataset, err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusTooManyRequests {
			t.throttle()
		}
		return nil, &StatusError{Dataset: dataset, Code: resp.StatusCode, Body: string(body)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", dataset, err)
	}

	t.logger.Info("Remote dataset fetched",
		zap.String("dataset", dataset),
		zap.Int("bytes", len(raw)),
		zap.Duration("duration", time.Since(start)))

	if t.archive {
		if key, err := t.snapshots.Archive(ctx, dataset, raw); err != nil {
			// Archiving is best effort; the sync itself must not fail on it.
			t.logger.Warn("Snapshot archive failed", zap.String("dataset", dataset), zap.Error(err))
		} else {
			t.logger.Debug("Snapshot archived", zap.String("object", key))
		}
	}
	return raw, nil
}

// throttle halves the request rate after a 429.
func (t *Transport) throttle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == rate.Inf {
		return
	}
	next := t.current / 2
	if next < minRate {
		next = minRate
	}
	if next != t.current {
		t.current = next
		t.limiter.SetLimit(next)
		t.logger.Warn("Remote throttled, slowing down", zap.Float64("rps", float64(next)))
	}
}

// Limit returns the current request rate.
func (t *Transport) Limit() rate.Limit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
