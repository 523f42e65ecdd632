package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/waitstrap/waitstrap/internal/metrics"
	"github.com/waitstrap/waitstrap/internal/probe"
	"github.com/waitstrap/waitstrap/internal/process"
	"github.com/waitstrap/waitstrap/internal/setup"
)

// ExitLaunchFailure is the program exit code when the service process cannot
// be created at all. Distinguished from service and setup exit codes.
const ExitLaunchFailure = 125

// Callbacks contains optional callback functions for lifecycle events.
type Callbacks struct {
	// OnStateChange is called when the lifecycle state changes.
	OnStateChange func(oldState, newState State)

	// OnServiceStart is called when the service process starts.
	OnServiceStart func(pid int)

	// OnServiceExit is called when the service process exits.
	OnServiceExit func(exitCode int, uptime time.Duration)
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	// Runner builds the service command.
	Runner process.Runner

	// ProbeConfig bounds the readiness loop.
	ProbeConfig probe.Config

	// Prober performs individual readiness attempts. Nil selects the HTTP
	// prober; tests inject fakes here.
	Prober probe.Prober

	// SetupInvocation is the one-shot configuration task.
	SetupInvocation setup.Invocation

	Logger    *slog.Logger
	Verbose   bool
	Callbacks Callbacks

	// Collector receives metric updates. Optional.
	Collector *metrics.Collector

	// SampleInterval is the child resource sampling cadence (requires
	// Collector).
	SampleInterval time.Duration
}

// Supervisor drives one run of the startup sequence. The service process
// handle is created by the launch step and owned here until the final wait
// consumes it; it is never stored in any ambient or global state.
type Supervisor struct {
	cfg    Config
	logger *slog.Logger

	state   State
	stateMu sync.RWMutex
}

// New creates a Supervisor.
func New(cfg Config) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		logger: cfg.Logger,
		state:  StateStarting,
	}
}

// Run executes the whole sequence and returns the program exit code:
//
//	launch failure         -> ExitLaunchFailure
//	setup task failure     -> the task's own (non-zero) exit code
//	service exit           -> the service's exit code
//
// Each step's failure short-circuits the rest explicitly; in particular a
// setup failure returns without ever waiting on the service handle, so the
// still-running service is torn down with this process (PID1 semantics in a
// container). The probe phase is bounded; the final wait is not.
func (s *Supervisor) Run(ctx context.Context) int {
	runStart := time.Now()

	// Launch
	s.setState(StateStarting)
	handle, err := s.launch()
	if err != nil {
		s.logger.Error("launch_failed", "error", err)
		s.setState(StateFatal)
		return ExitLaunchFailure
	}

	if s.cfg.Callbacks.OnServiceStart != nil {
		s.cfg.Callbacks.OnServiceStart(handle.PID())
	}
	if s.cfg.Collector != nil {
		s.cfg.Collector.ServiceStarted()
	}

	// Probe, concurrently with the now-running service
	s.setState(StateProbing)
	probeStart := time.Now()
	outcome := s.poll(ctx)
	probeDuration := time.Since(probeStart)
	if outcome.Exhausted() {
		// Deliberate: an unconfirmed service is a warning, not a reason to
		// stop. The setup task gets its chance either way.
		s.logger.Warn("proceeding_without_confirmed_readiness",
			"attempts", outcome.Attempt,
			"url", s.cfg.ProbeConfig.URL,
		)
	}
	if s.cfg.Collector != nil {
		s.cfg.Collector.ProbeFinished(outcome.Ready, outcome.Attempt)
	}

	// Setup, exactly once, regardless of the probe outcome
	s.setState(StateSetup)
	result := setup.NewRunner(s.logger, s.cfg.Verbose).Run(ctx, s.cfg.SetupInvocation)
	if s.cfg.Collector != nil {
		s.cfg.Collector.SetupFinished(result.Code, result.Duration)
	}
	if !result.OK() {
		s.logger.Error("aborting_after_setup_failure",
			"exit_code", result.Code,
			"service_pid", handle.PID(),
		)
		s.setState(StateFatal)
		return result.Code
	}

	// Supervise until the service exits, however long that takes
	s.setState(StateRunning)
	status := s.await(handle)
	s.setState(StateTerminated)

	if s.cfg.Callbacks.OnServiceExit != nil {
		s.cfg.Callbacks.OnServiceExit(status.Code, status.Uptime)
	}
	if s.cfg.Collector != nil {
		s.cfg.Collector.ServiceExited(status.Code, status.Uptime)
	}

	s.logger.Info("supervisor_exit",
		"exit_code", status.Code,
		"signaled", status.Signaled,
		"probe_attempts", outcome.Attempt,
		"probe_ready", outcome.Ready,
		"probe_duration", probeDuration.String(),
		"setup_duration", result.Duration.String(),
		"service_uptime", status.Uptime.String(),
		"total_runtime", time.Since(runStart).String(),
	)

	return status.Code
}

// launch starts the service and returns its handle.
func (s *Supervisor) launch() (*process.Handle, error) {
	launcher := process.NewLauncher(s.cfg.Runner, s.logger, s.cfg.Verbose)
	return launcher.Start()
}

// poll runs the bounded readiness loop.
func (s *Supervisor) poll(ctx context.Context) probe.Outcome {
	poller := probe.NewPoller(s.cfg.ProbeConfig, s.cfg.Prober, s.logger)
	if s.cfg.Collector != nil {
		collector := s.cfg.Collector
		poller.OnAttempt = func(attempt int, latency time.Duration, err error) {
			collector.ProbeAttempt(latency, err)
		}
	}
	return poller.Run(ctx)
}

// await blocks until the service exits, sampling its resource usage while it
// runs.
func (s *Supervisor) await(handle *process.Handle) process.Status {
	var watcher *metrics.ProcWatcher
	if s.cfg.Collector != nil {
		watcher = metrics.NewProcWatcher(
			handle.PID(), handle.StartTime(), s.cfg.SampleInterval,
			s.cfg.Collector, s.logger,
		)
		go watcher.Run()
	}

	status := handle.Wait()

	if watcher != nil {
		watcher.Stop()
	}

	s.logger.Info("service_exited",
		"pid", handle.PID(),
		"exit_code", status.Code,
		"signaled", status.Signaled,
		"uptime", status.Uptime.String(),
	)

	return status
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// setState updates the state and fires the callback and phase gauge.
func (s *Supervisor) setState(newState State) {
	s.stateMu.Lock()
	oldState := s.state
	s.state = newState
	s.stateMu.Unlock()

	if s.cfg.Collector != nil {
		s.cfg.Collector.SetPhase(newState.String(), PhaseNames())
	}
	if s.cfg.Callbacks.OnStateChange != nil && oldState != newState {
		s.cfg.Callbacks.OnStateChange(oldState, newState)
	}

	s.logger.Debug("state_changed",
		"from", oldState.String(),
		"to", newState.String(),
	)
}
