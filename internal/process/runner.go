// Package process provides launching and handle ownership for the supervised
// service process.
package process

import (
	"fmt"
	"os/exec"
	"strings"
)

// Runner builds the command for the supervised service.
// This interface keeps the launcher decoupled from what the service is.
type Runner interface {
	// BuildCommand returns a ready-to-start command. The command must NOT
	// be started yet, and must not be bound to a context: the service is
	// expected to outlive the launch call by the container's whole lifetime.
	BuildCommand() (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}

// ServiceRunner builds the service command from an argv slice. The child
// inherits the ambient environment unmodified; waitstrap does not parse or
// validate any of it.
type ServiceRunner struct {
	argv []string
}

// NewServiceRunner creates a runner for the given command and arguments.
func NewServiceRunner(argv []string) *ServiceRunner {
	return &ServiceRunner{argv: argv}
}

// Name returns the service executable name.
func (r *ServiceRunner) Name() string {
	if len(r.argv) == 0 {
		return "service"
	}
	return r.argv[0]
}

// BuildCommand creates the exec.Cmd for the service.
func (r *ServiceRunner) BuildCommand() (*exec.Cmd, error) {
	if len(r.argv) == 0 {
		return nil, fmt.Errorf("service command is empty")
	}
	return exec.Command(r.argv[0], r.argv[1:]...), nil
}

// CommandString returns the command line that would be executed (for the
// -print-cmd diagnostic mode).
func (r *ServiceRunner) CommandString() string {
	return strings.Join(r.argv, " ")
}
