package process

import (
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/waitstrap/waitstrap/internal/logging"
)

// StartError reports that the service process could not be created. This is
// fatal for the whole program: there is nothing to probe, set up, or
// supervise without a service instance.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// Launcher starts the service as a detached child process.
type Launcher struct {
	runner  Runner
	logger  *slog.Logger
	verbose bool
}

// NewLauncher creates a launcher for the given runner.
func NewLauncher(runner Runner, logger *slog.Logger, verbose bool) *Launcher {
	return &Launcher{
		runner:  runner,
		logger:  logger,
		verbose: verbose,
	}
}

// Start launches the service and returns immediately with a Handle for it.
// The child keeps running independently of the caller's control flow; its
// stdout and stderr are streamed line-by-line into the log. A StartError is
// returned when the executable cannot be found or the OS refuses to create
// the process.
func (l *Launcher) Start() (*Handle, error) {
	cmd, err := l.runner.BuildCommand()
	if err != nil {
		return nil, &StartError{Command: l.runner.Name(), Err: err}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &StartError{Command: l.runner.Name(), Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &StartError{Command: l.runner.Name(), Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	// Own process group so the service does not receive the terminal's
	// signals directly
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	if err := cmd.Start(); err != nil {
		return nil, &StartError{Command: l.runner.Name(), Err: err}
	}

	handle := &Handle{
		cmd:       cmd,
		pid:       cmd.Process.Pid,
		startTime: time.Now(),
	}

	outHandler := logging.NewOutputHandler(l.runner.Name(), "stdout", l.logger, l.verbose)
	errHandler := logging.NewOutputHandler(l.runner.Name(), "stderr", l.logger, l.verbose)

	handle.readers.Add(2)
	go func() {
		defer handle.readers.Done()
		outHandler.HandleReader(stdout)
	}()
	go func() {
		defer handle.readers.Done()
		errHandler.HandleReader(stderr)
	}()

	l.logger.Info("service_started",
		"command", l.runner.Name(),
		"pid", handle.pid,
	)

	return handle, nil
}
