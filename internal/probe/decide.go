package probe

// Decision tells the poller what to do after an attempt completes.
type Decision int

const (
	// DecisionReady stops the loop: the endpoint answered.
	DecisionReady Decision = iota

	// DecisionRetry sleeps for the interval and tries again.
	DecisionRetry

	// DecisionExhausted stops the loop: the attempt budget is spent.
	DecisionExhausted
)

// String returns a human-readable name for the decision.
func (d Decision) String() string {
	switch d {
	case DecisionReady:
		return "ready"
	case DecisionRetry:
		return "retry"
	case DecisionExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Decide maps the result of attempt number `attempt` (1-based) onto the next
// loop action. It is pure so the bounded-retry logic can be tested without
// network calls; Poller wraps it with the actual I/O and sleeping.
func Decide(attempt int, attemptErr error, cfg Config) Decision {
	if attemptErr == nil {
		return DecisionReady
	}
	if attempt >= cfg.MaxAttempts {
		return DecisionExhausted
	}
	return DecisionRetry
}
