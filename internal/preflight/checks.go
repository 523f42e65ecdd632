// Package preflight provides startup validation checks.
package preflight

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// String renders all checks, one per line.
func (r *Result) String() string {
	lines := make([]string, 0, len(r.Checks))
	for _, c := range r.Checks {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}

// RunAll executes all preflight checks. serviceArgv is the service command,
// setupCommand the one-shot task binary, readinessURL the probe target.
func RunAll(serviceArgv []string, setupCommand, readinessURL string) *Result {
	result := &Result{
		Checks: make([]Check, 0, 3),
		Passed: true,
	}

	for _, check := range []Check{
		checkExecutable("service_binary", firstArg(serviceArgv)),
		checkExecutable("setup_command", setupCommand),
		checkReadinessURL(readinessURL),
	} {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
		}
	}

	return result
}

func firstArg(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return argv[0]
}

// checkExecutable verifies the named binary can be resolved for execution.
func checkExecutable(name, binary string) Check {
	if binary == "" {
		return Check{
			Name:    name,
			Passed:  false,
			Message: "no command given",
		}
	}

	// LookPath handles both bare names (PATH resolution) and explicit paths
	path, err := exec.LookPath(binary)
	if err != nil {
		return Check{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("%s: %v", binary, err),
		}
	}

	return Check{
		Name:    name,
		Passed:  true,
		Message: path,
	}
}

// checkReadinessURL verifies the probe target is a well-formed http(s) URL.
func checkReadinessURL(raw string) Check {
	if err := ValidateURL(raw); err != nil {
		return Check{
			Name:    "readiness_url",
			Passed:  false,
			Message: fmt.Sprintf("%s: %v", raw, err),
		}
	}
	return Check{
		Name:    "readiness_url",
		Passed:  true,
		Message: raw,
	}
}

// ValidateURL checks that raw parses as an http or https URL with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https (got %q)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must have a host")
	}
	return nil
}
