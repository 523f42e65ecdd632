// Package main provides the waitstrap CLI entry point.
//
// waitstrap is a container entrypoint supervisor: it starts a long-running
// service, polls its HTTP readiness endpoint, runs a one-shot setup task
// against it, then blocks on the service and exits with the service's own
// exit code.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/waitstrap/waitstrap/internal/config"
	"github.com/waitstrap/waitstrap/internal/logging"
	"github.com/waitstrap/waitstrap/internal/metrics"
	"github.com/waitstrap/waitstrap/internal/preflight"
	"github.com/waitstrap/waitstrap/internal/probe"
	"github.com/waitstrap/waitstrap/internal/process"
	"github.com/waitstrap/waitstrap/internal/setup"
	"github.com/waitstrap/waitstrap/internal/supervisor"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/waitstrap
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("waitstrap %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return supervisor.ExitLaunchFailure
	}

	logger := logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return supervisor.ExitLaunchFailure
	}

	runner := process.NewServiceRunner(cfg.ServiceArgv)
	invocation := setup.Invocation{
		Command: cfg.SetupCommand,
		Args:    cfg.SetupArgs,
		URL:     cfg.ReadinessURL,
	}

	// Handle -print-cmd mode
	if cfg.PrintCmd {
		fmt.Println("# service command:")
		fmt.Println(runner.CommandString())
		fmt.Println("# setup invocation:")
		fmt.Println(invocation.String())
		return 0
	}

	printBanner(cfg, runner.CommandString())

	if !cfg.SkipPreflight {
		result := preflight.RunAll(cfg.ServiceArgv, cfg.SetupCommand, cfg.ReadinessURL)
		if !result.Passed {
			fmt.Fprintf(os.Stderr, "Preflight checks failed:\n%s\n", result)
			return supervisor.ExitLaunchFailure
		}
		logger.Debug("preflight_passed")
	}

	logger.Info("starting",
		"version", version,
		"service", runner.Name(),
		"readiness_url", cfg.ReadinessURL,
		"probe_attempts", cfg.ProbeMaxAttempts,
		"probe_interval", cfg.ProbeInterval.String(),
		"setup", cfg.SetupCommand,
		"metrics_addr", cfg.MetricsAddr,
	)

	// Metrics are optional; an empty address disables the listener entirely
	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(metrics.CollectorConfig{
			Version:      version,
			ServiceName:  runner.Name(),
			ReadinessURL: cfg.ReadinessURL,
		})

		server := metrics.NewServer(cfg.MetricsAddr, logger)
		server.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	sup := supervisor.New(supervisor.Config{
		Runner: runner,
		ProbeConfig: probe.Config{
			URL:            cfg.ReadinessURL,
			AttemptTimeout: cfg.ProbeTimeout,
			Interval:       cfg.ProbeInterval,
			MaxAttempts:    cfg.ProbeMaxAttempts,
		},
		SetupInvocation: invocation,
		Logger:          logger,
		Verbose:         cfg.Verbose,
		Collector:       collector,
		SampleInterval:  cfg.SampleInterval,
		Callbacks: supervisor.Callbacks{
			OnStateChange: func(oldState, newState supervisor.State) {
				logger.Info("phase_changed", "from", oldState.String(), "to", newState.String())
			},
		},
	})

	return sup.Run(context.Background())
}

func printBanner(cfg *config.Config, serviceCmd string) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                           waitstrap                               ║")
	fmt.Println("║         Container Entrypoint Supervisor                           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Service:     %s\n", serviceCmd)
	fmt.Printf("  Readiness:   %s (%d attempts, %s apart)\n",
		cfg.ReadinessURL, cfg.ProbeMaxAttempts, cfg.ProbeInterval)
	fmt.Printf("  Setup:       %s\n", cfg.SetupCommand)
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
}
