// Package config provides configuration management for waitstrap.
package config

import (
	"time"

	"github.com/waitstrap/waitstrap/internal/probe"
)

// Config holds all configuration options for the supervisor.
//
// Environment variables are deliberately absent here: whatever the deployment
// layer sets (service credentials, hosts, feature flags) is inherited by the
// child processes unmodified and never parsed by waitstrap.
type Config struct {
	// Service
	ServiceArgv []string `json:"service_argv"` // positional: command and args

	// Readiness probe
	ReadinessURL     string        `json:"readiness_url"`
	ProbeInterval    time.Duration `json:"probe_interval"`
	ProbeTimeout     time.Duration `json:"probe_timeout"`
	ProbeMaxAttempts int           `json:"probe_max_attempts"`

	// Setup task
	SetupCommand string   `json:"setup_command"`
	SetupArgs    []string `json:"setup_args"`

	// Observability
	MetricsAddr    string        `json:"metrics_addr"` // empty = disabled
	SampleInterval time.Duration `json:"sample_interval"`
	Verbose        bool          `json:"verbose"`
	LogFormat      string        `json:"log_format"` // json, text

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`
}

// DefaultConfig returns a Config with sensible defaults. The probe bounds
// come from the probe package so the flag defaults and the loop share one
// definition.
func DefaultConfig() *Config {
	pc := probe.DefaultConfig("")
	return &Config{
		ProbeInterval:    pc.Interval,
		ProbeTimeout:     pc.AttemptTimeout,
		ProbeMaxAttempts: pc.MaxAttempts,

		// Observability
		MetricsAddr:    "0.0.0.0:9091",
		SampleInterval: 10 * time.Second,
		Verbose:        false,
		LogFormat:      "json",
	}
}
