package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// argList is a custom flag type for repeatable -setup-arg flags.
type argList []string

func (a *argList) String() string {
	return strings.Join(*a, ", ")
}

func (a *argList) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// ParseFlags parses command-line flags and returns a Config.
// The service command is everything after the flags (use -- to separate it
// when the service takes flags of its own).
func ParseFlags() (*Config, error) {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

// parseFlags parses args against fs. Split out for testing.
func parseFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()
	var setupArgs argList

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `waitstrap - container entrypoint supervisor

Starts a service, waits for it to answer HTTP, runs a one-shot setup task
against it, then supervises the service and exits with its exit code.

Usage:
  waitstrap [flags] -- <SERVICE_COMMAND> [SERVICE_ARGS...]

Readiness Probe:
`)
		printFlagCategory(fs, []string{"url", "probe-interval", "probe-timeout", "probe-attempts"})

		fmt.Fprintf(os.Stderr, "\nSetup Task:\n")
		printFlagCategory(fs, []string{"setup", "setup-arg"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory(fs, []string{"metrics", "sample-interval", "v", "log-format"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory(fs, []string{"print-cmd", "skip-preflight"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Bring up Odoo, provision it once it answers, then babysit it
  waitstrap -url http://localhost:8069/ -setup python3 -setup-arg setup_odoo.py \
      -- odoo --workers 4

  # Disable the metrics listener
  waitstrap -url http://localhost:7001/ -setup ./provision.sh -metrics "" \
      -- uvicorn main:app

`)
	}

	// Readiness probe
	fs.StringVar(&cfg.ReadinessURL, "url", cfg.ReadinessURL, "Readiness endpoint to poll (required)")
	fs.DurationVar(&cfg.ProbeInterval, "probe-interval", cfg.ProbeInterval, "Delay between probe attempts")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "Per-attempt request timeout")
	fs.IntVar(&cfg.ProbeMaxAttempts, "probe-attempts", cfg.ProbeMaxAttempts, "Maximum probe attempts before giving up")

	// Setup task
	fs.StringVar(&cfg.SetupCommand, "setup", cfg.SetupCommand, "One-shot setup command, run once after the probe loop (required)")
	fs.Var(&setupArgs, "setup-arg", "Argument for the setup command (can repeat; readiness URL is appended last)")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty to disable)")
	fs.DurationVar(&cfg.SampleInterval, "sample-interval", cfg.SampleInterval, "Child resource sampling interval")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging (includes child output)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	// Diagnostics
	fs.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the service command and setup invocation, then exit")
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.SetupArgs = setupArgs

	// Positional arguments: the service command
	cfg.ServiceArgv = fs.Args()

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, names []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s\n    \t%s", f.Name, f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}
