// Package probe implements the bounded readiness probe that runs between
// service launch and the one-shot setup task.
package probe

import (
	"context"
	"net/http"
	"time"
)

// Config holds the probe loop parameters. It is an immutable value: the
// worst-case wall time is MaxAttempts × (Interval + AttemptTimeout), so the
// loop never blocks indefinitely.
type Config struct {
	// URL is the readiness endpoint to poll.
	URL string

	// AttemptTimeout bounds each individual request.
	AttemptTimeout time.Duration

	// Interval is the fixed delay between attempts.
	Interval time.Duration

	// MaxAttempts caps the number of attempts. Must be at least 1.
	MaxAttempts int
}

// DefaultConfig returns probe parameters matching the usual container
// startup budget: 60 attempts at 5 second intervals, ~300s worst case.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		AttemptTimeout: 2 * time.Second,
		Interval:       5 * time.Second,
		MaxAttempts:    60,
	}
}

// Outcome is the result of a probe loop.
type Outcome struct {
	// Ready reports whether a successful connection was observed.
	Ready bool

	// Attempt is the 1-based attempt index at which the endpoint became
	// reachable. Equal to MaxAttempts when exhausted.
	Attempt int
}

// Exhausted reports whether the loop used every attempt without success.
func (o Outcome) Exhausted() bool {
	return !o.Ready
}

// Prober performs a single readiness attempt. Implementations report nil
// when the endpoint is reachable.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// HTTPProber probes by issuing an HTTP GET.
//
// Any completed response counts as reachable, regardless of status code.
// This is intentionally lenient: a 500 from the service still proves the
// listener is up, which is all the startup sequence needs. Tightening this
// to 2xx would be a behavior change, not a fix.
type HTTPProber struct {
	Client *http.Client
}

// NewHTTPProber creates a prober with a client bounded by the per-attempt
// timeout from cfg.
func NewHTTPProber(cfg Config) *HTTPProber {
	return &HTTPProber{
		Client: &http.Client{
			Timeout: cfg.AttemptTimeout,
		},
	}
}

// Probe issues one GET against url. Transport-level failures (refused
// connection, DNS, timeout) are errors; any received response is success.
func (p *HTTPProber) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}
