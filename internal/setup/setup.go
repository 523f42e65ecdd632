// Package setup runs the one-shot external configuration task that provisions
// the service after the readiness probe finishes.
package setup

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/waitstrap/waitstrap/internal/logging"
	"github.com/waitstrap/waitstrap/internal/process"
)

// DiagnosticLines is how many trailing output lines a failed task keeps.
const DiagnosticLines = 20

// Invocation describes the one-shot task: a command plus arguments, with the
// service's readiness URL appended as the final argument. The task sees only
// the ambient process environment.
type Invocation struct {
	Command string
	Args    []string
	URL     string
}

// Argv returns the full argument vector for the task.
func (inv Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+2)
	argv = append(argv, inv.Command)
	argv = append(argv, inv.Args...)
	if inv.URL != "" {
		argv = append(argv, inv.URL)
	}
	return argv
}

// String returns the command line that would be executed.
func (inv Invocation) String() string {
	return strings.Join(inv.Argv(), " ")
}

// Result is the pass/fail outcome of the task.
type Result struct {
	// Code is the task's exit code; 0 means success.
	Code int

	// Diagnostic holds the tail of the task's output when it failed.
	Diagnostic string

	// Duration is how long the task ran.
	Duration time.Duration
}

// OK reports whether the task succeeded.
func (r Result) OK() bool {
	return r.Code == 0
}

// Runner executes the configuration task synchronously and exactly once.
// A failed task is fatal for the whole program: the supervision phase is
// never entered and the task's exit code becomes the program's.
type Runner struct {
	logger  *slog.Logger
	verbose bool
}

// NewRunner creates a setup task runner.
func NewRunner(logger *slog.Logger, verbose bool) *Runner {
	return &Runner{logger: logger, verbose: verbose}
}

// Run executes the invocation and blocks until it exits. A task that cannot
// be started at all is reported as a failure with code 127, matching the
// shell's command-not-found convention.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	argv := inv.Argv()
	r.logger.Info("setup_starting", "command", inv.String())

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	// The task's output goes through the same line handlers as the service,
	// and the stderr tail doubles as the failure diagnostic.
	outHandler := logging.NewOutputHandler("setup", "stdout", r.logger, r.verbose)
	errHandler := logging.NewOutputHandler("setup", "stderr", r.logger, r.verbose)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{Code: 127, Diagnostic: err.Error()}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{Code: 127, Diagnostic: err.Error()}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		r.logger.Error("setup_start_failed", "command", argv[0], "error", err)
		return Result{Code: 127, Diagnostic: err.Error()}
	}

	done := make(chan struct{}, 2)
	go func() { outHandler.HandleReader(stdout); done <- struct{}{} }()
	go func() { errHandler.HandleReader(stderr); done <- struct{}{} }()
	<-done
	<-done

	waitErr := cmd.Wait()
	duration := time.Since(start)
	code, _ := process.ExitCode(waitErr)

	result := Result{
		Code:     code,
		Duration: duration,
	}

	if code != 0 {
		result.Diagnostic = strings.Join(errHandler.RecentLines(DiagnosticLines), "\n")
		r.logger.Error("setup_failed",
			"exit_code", code,
			"duration", duration.String(),
			"diagnostic", result.Diagnostic,
		)
		return result
	}

	r.logger.Info("setup_completed", "duration", duration.String())
	return result
}
