package process

import (
	"errors"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Status describes how the service process terminated.
type Status struct {
	// Code is the exit code to propagate. Signal deaths map to 128+signum.
	Code int

	// Signaled reports whether the process died from a signal.
	Signaled bool

	// Uptime is the wall time between start and exit.
	Uptime time.Duration
}

// Handle owns one started service process. It is created by the Launcher and
// handed to the supervisor, which must call Wait exactly once; there is no
// other way to observe the exit status, and no ambient global carries the
// process identity.
type Handle struct {
	cmd       *exec.Cmd
	pid       int
	startTime time.Time

	// readers drain the stdout/stderr logging goroutines before Wait
	readers sync.WaitGroup

	waitOnce sync.Once
	status   Status
}

// PID returns the OS process ID of the child.
func (h *Handle) PID() int {
	return h.pid
}

// StartTime returns when the child was started.
func (h *Handle) StartTime() time.Time {
	return h.startTime
}

// Wait blocks until the service process exits, by any cause, and returns its
// terminal status. The wait is intentionally unbounded: the service is meant
// to run for the container's entire lifetime. Calling Wait more than once
// returns the status captured by the first call.
func (h *Handle) Wait() Status {
	h.waitOnce.Do(func() {
		// Output pipes must be drained before Wait per os/exec contract
		h.readers.Wait()

		err := h.cmd.Wait()
		code, signaled := ExitCode(err)
		h.status = Status{
			Code:     code,
			Signaled: signaled,
			Uptime:   time.Since(h.startTime),
		}
	})
	return h.status
}

// ExitCode extracts the propagatable exit code from a Wait() error.
// Signal deaths follow the shell convention of 128+signum.
func ExitCode(err error) (code int, signaled bool) {
	if err == nil {
		return 0, false
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal()), true
			}
			return status.ExitStatus(), false
		}
	}

	// Unknown error, assume exit code 1
	return 1, false
}
