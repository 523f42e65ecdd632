package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ServiceArgv = []string{"odoo", "--workers", "4"}
	cfg.ReadinessURL = "http://localhost:8069/"
	cfg.SetupCommand = "python3"
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing service command", func(c *Config) { c.ServiceArgv = nil }, "service_command"},
		{"missing url", func(c *Config) { c.ReadinessURL = "" }, "url"},
		{"bad url scheme", func(c *Config) { c.ReadinessURL = "ftp://x/" }, "url"},
		{"missing setup", func(c *Config) { c.SetupCommand = "" }, "setup"},
		{"zero attempts", func(c *Config) { c.ProbeMaxAttempts = 0 }, "probe_attempts"},
		{"negative interval", func(c *Config) { c.ProbeInterval = -time.Second }, "probe_interval"},
		{"zero timeout", func(c *Config) { c.ProbeTimeout = 0 }, "probe_timeout"},
		{"zero sample interval", func(c *Config) { c.SampleInterval = 0 }, "sample_interval"},
		{"bad log format", func(c *Config) { c.LogFormat = "yaml" }, "log_format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error %q does not mention field %q", err, tc.field)
			}
		})
	}
}

func TestValidate_PrintCmdRelaxesRequirements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PrintCmd = true
	cfg.ReadinessURL = "http://localhost:7001/"

	if err := Validate(cfg); err != nil {
		t.Errorf("print-cmd mode should not require service/setup commands: %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "url", Message: "readiness URL is required"}
	if e.Error() != "url: readiness URL is required" {
		t.Errorf("Error() = %q", e.Error())
	}
}
