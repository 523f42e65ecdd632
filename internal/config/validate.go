package config

import (
	"errors"
	"fmt"

	"github.com/waitstrap/waitstrap/internal/preflight"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// Service command is required (unless -print-cmd just echoes config)
	if len(cfg.ServiceArgv) == 0 && !cfg.PrintCmd {
		errs = append(errs, ValidationError{
			Field:   "service_command",
			Message: "service command is required (pass it after the flags, e.g. -- odoo --workers 4)",
		})
	}

	// Readiness URL is required and must be http(s)
	if cfg.ReadinessURL == "" {
		errs = append(errs, ValidationError{
			Field:   "url",
			Message: "readiness URL is required",
		})
	} else if err := preflight.ValidateURL(cfg.ReadinessURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "url",
			Message: err.Error(),
		})
	}

	// Setup command is required: the one-shot task runs exactly once per run
	if cfg.SetupCommand == "" && !cfg.PrintCmd {
		errs = append(errs, ValidationError{
			Field:   "setup",
			Message: "setup command is required",
		})
	}

	// Probe bounds: the loop must terminate
	if cfg.ProbeMaxAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "probe_attempts",
			Message: "must be at least 1",
		})
	}
	if cfg.ProbeInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "probe_interval",
			Message: "must be positive",
		})
	}
	if cfg.ProbeTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "probe_timeout",
			Message: "must be positive",
		})
	}

	if cfg.SampleInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "sample_interval",
			Message: "must be positive",
		})
	}

	// Log format must be valid
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
