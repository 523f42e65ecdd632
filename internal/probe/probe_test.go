package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var errUnreachable = errors.New("connection refused")

// fakeProber succeeds starting at a given attempt (0 = never).
type fakeProber struct {
	succeedAt int
	calls     int
}

func (f *fakeProber) Probe(ctx context.Context, url string) error {
	f.calls++
	if f.succeedAt > 0 && f.calls >= f.succeedAt {
		return nil
	}
	return errUnreachable
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastConfig(maxAttempts int) Config {
	return Config{
		URL:            "http://127.0.0.1:1/",
		AttemptTimeout: 100 * time.Millisecond,
		Interval:       5 * time.Millisecond,
		MaxAttempts:    maxAttempts,
	}
}

func TestDecide(t *testing.T) {
	cfg := Config{MaxAttempts: 5}

	testCases := []struct {
		name     string
		attempt  int
		err      error
		expected Decision
	}{
		{"success_first", 1, nil, DecisionReady},
		{"success_last", 5, nil, DecisionReady},
		{"failure_mid", 3, errUnreachable, DecisionRetry},
		{"failure_last", 5, errUnreachable, DecisionExhausted},
		{"failure_past_budget", 6, errUnreachable, DecisionExhausted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.attempt, tc.err, cfg); got != tc.expected {
				t.Errorf("Decide(%d, %v) = %v, want %v", tc.attempt, tc.err, got, tc.expected)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	if DecisionReady.String() != "ready" || DecisionExhausted.String() != "exhausted" {
		t.Error("unexpected Decision string values")
	}
}

func TestPoller_ReadyAtAttemptK(t *testing.T) {
	for _, k := range []int{1, 3, 5} {
		prober := &fakeProber{succeedAt: k}
		poller := NewPoller(fastConfig(5), prober, testLogger())

		outcome := poller.Run(context.Background())

		if !outcome.Ready {
			t.Fatalf("k=%d: expected ready outcome", k)
		}
		if outcome.Attempt != k {
			t.Errorf("k=%d: Attempt = %d", k, outcome.Attempt)
		}
		if prober.calls != k {
			t.Errorf("k=%d: made %d attempts, want exactly %d", k, prober.calls, k)
		}
	}
}

func TestPoller_Exhausted(t *testing.T) {
	prober := &fakeProber{} // never succeeds
	poller := NewPoller(fastConfig(5), prober, testLogger())

	outcome := poller.Run(context.Background())

	if outcome.Ready {
		t.Fatal("expected exhausted outcome")
	}
	if !outcome.Exhausted() {
		t.Error("Exhausted() should report true")
	}
	if prober.calls != 5 {
		t.Errorf("made %d attempts, want exactly 5", prober.calls)
	}
	if outcome.Attempt != 5 {
		t.Errorf("Attempt = %d, want 5", outcome.Attempt)
	}
}

func TestPoller_BoundedElapsedTime(t *testing.T) {
	cfg := fastConfig(5)
	poller := NewPoller(cfg, &fakeProber{}, testLogger())

	start := time.Now()
	poller.Run(context.Background())
	elapsed := time.Since(start)

	// Worst case: maxAttempts × (interval + attemptTimeout), plus slack
	bound := time.Duration(cfg.MaxAttempts)*(cfg.Interval+cfg.AttemptTimeout) + 200*time.Millisecond
	if elapsed > bound {
		t.Errorf("probe loop took %v, bound is %v", elapsed, bound)
	}
}

func TestPoller_OnAttemptCallback(t *testing.T) {
	var attempts []int
	var results []error

	poller := NewPoller(fastConfig(5), &fakeProber{succeedAt: 2}, testLogger())
	poller.OnAttempt = func(attempt int, latency time.Duration, err error) {
		attempts = append(attempts, attempt)
		results = append(results, err)
	}

	poller.Run(context.Background())

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempt indices = %v", attempts)
	}
	if results[0] == nil || results[1] != nil {
		t.Errorf("attempt errors = %v", results)
	}
}

func TestPoller_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastConfig(1000)
	cfg.Interval = 10 * time.Millisecond
	poller := NewPoller(cfg, &fakeProber{}, testLogger())

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	done := make(chan Outcome, 1)
	go func() { done <- poller.Run(ctx) }()

	select {
	case outcome := <-done:
		if outcome.Ready {
			t.Error("cancelled run should not report ready")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}

func TestHTTPProber_AnyStatusIsReachable(t *testing.T) {
	for _, status := range []int{200, 404, 500, 503} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		prober := NewHTTPProber(DefaultConfig(srv.URL))
		err := prober.Probe(context.Background(), srv.URL)
		srv.Close()

		if err != nil {
			t.Errorf("status %d: Probe returned error %v, want nil", status, err)
		}
	}
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	// Reserve a port, then close it so nothing is listening
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	prober := NewHTTPProber(DefaultConfig(url))
	if err := prober.Probe(context.Background(), url); err == nil {
		t.Error("expected transport error against closed listener")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("http://localhost:7001/")

	if cfg.MaxAttempts != 60 {
		t.Errorf("MaxAttempts = %d, want 60", cfg.MaxAttempts)
	}
	if cfg.Interval != 5*time.Second {
		t.Errorf("Interval = %v, want 5s", cfg.Interval)
	}
	if cfg.URL != "http://localhost:7001/" {
		t.Errorf("URL = %q", cfg.URL)
	}
}
