package probe

import (
	"context"
	"log/slog"
	"time"

	"github.com/influxdata/tdigest"
)

// Poller runs the effectful probe loop around the pure Decide function.
type Poller struct {
	cfg    Config
	prober Prober
	logger *slog.Logger

	// Per-attempt latency distribution for the end-of-loop summary
	latency *tdigest.TDigest

	// OnAttempt, if set, is called after each attempt with the 1-based
	// attempt index, the attempt latency, and the attempt error (nil on
	// success).
	OnAttempt func(attempt int, latency time.Duration, err error)
}

// NewPoller creates a poller. A nil prober defaults to an HTTPProber built
// from cfg.
func NewPoller(cfg Config, prober Prober, logger *slog.Logger) *Poller {
	if prober == nil {
		prober = NewHTTPProber(cfg)
	}
	return &Poller{
		cfg:     cfg,
		prober:  prober,
		logger:  logger,
		latency: tdigest.NewWithCompression(100),
	}
}

// Run executes up to MaxAttempts probe attempts separated by the configured
// interval, stopping early on the first success. It never returns an error:
// exhaustion is an Outcome, not a failure. Context cancellation also ends
// the loop, reported as exhaustion at the current attempt.
func (p *Poller) Run(ctx context.Context) Outcome {
	p.logger.Info("probe_starting",
		"url", p.cfg.URL,
		"max_attempts", p.cfg.MaxAttempts,
		"interval", p.cfg.Interval.String(),
		"attempt_timeout", p.cfg.AttemptTimeout.String(),
	)

	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		start := time.Now()
		err := p.prober.Probe(attemptCtx, p.cfg.URL)
		elapsed := time.Since(start)
		cancel()

		p.latency.Add(elapsed.Seconds(), 1)

		if p.OnAttempt != nil {
			p.OnAttempt(attempt, elapsed, err)
		}

		switch Decide(attempt, err, p.cfg) {
		case DecisionReady:
			p.logger.Info("probe_ready",
				"attempt", attempt,
				"latency", elapsed.String(),
			)
			p.logSummary()
			return Outcome{Ready: true, Attempt: attempt}

		case DecisionExhausted:
			p.logger.Warn("probe_exhausted",
				"attempts", attempt,
				"last_error", err.Error(),
			)
			p.logSummary()
			return Outcome{Ready: false, Attempt: attempt}
		}

		p.logger.Debug("probe_attempt_failed",
			"attempt", attempt,
			"max_attempts", p.cfg.MaxAttempts,
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			p.logger.Warn("probe_cancelled", "attempts", attempt)
			return Outcome{Ready: false, Attempt: attempt}
		case <-time.After(p.cfg.Interval):
		}
	}
}

// logSummary logs the attempt latency distribution.
func (p *Poller) logSummary() {
	p.logger.Debug("probe_latency_summary",
		"p50", time.Duration(p.latency.Quantile(0.50)*float64(time.Second)).String(),
		"p95", time.Duration(p.latency.Quantile(0.95)*float64(time.Second)).String(),
		"max", time.Duration(p.latency.Quantile(1.0)*float64(time.Second)).String(),
	)
}
