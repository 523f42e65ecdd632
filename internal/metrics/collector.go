// Package metrics provides Prometheus metrics for waitstrap.
//
// The metric surface is small and fixed-cardinality: one supervised service,
// one probe loop, one setup task per run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// --- Startup overview ---
var (
	waitstrapInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waitstrap_info",
			Help: "Information about this supervisor run (value always 1)",
		},
		[]string{"version", "service", "readiness_url"},
	)

	waitstrapPhase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waitstrap_phase",
			Help: "Current lifecycle phase (1 for the active phase, 0 otherwise)",
		},
		[]string{"phase"},
	)
)

// --- Readiness probe ---
var (
	probeAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "waitstrap_probe_attempts_total",
			Help: "Total readiness probe attempts",
		},
	)

	probeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "waitstrap_probe_failures_total",
			Help: "Readiness probe attempts that failed at the transport level",
		},
	)

	probeReadyAttempt = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_probe_ready_attempt",
			Help: "Attempt index at which the service became reachable (0 = exhausted)",
		},
	)

	probeLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waitstrap_probe_latency_seconds",
			Help:    "Latency of individual probe attempts",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		},
	)
)

// --- Setup task ---
var (
	setupDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_setup_duration_seconds",
			Help: "Wall time of the one-shot setup task",
		},
	)

	setupExitCode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_setup_exit_code",
			Help: "Exit code of the setup task (-1 = not yet run)",
		},
	)
)

// --- Supervised service ---
var (
	serviceUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_service_up",
			Help: "1 while the supervised service process is running",
		},
	)

	serviceUptimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_service_uptime_seconds",
			Help: "Uptime of the supervised service process",
		},
	)

	serviceExitCode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_service_exit_code",
			Help: "Exit code of the supervised service (-1 = still running)",
		},
	)

	serviceCPUPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_service_cpu_percent",
			Help: "CPU usage of the supervised service process",
		},
	)

	serviceMemoryRSSBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitstrap_service_memory_rss_bytes",
			Help: "Resident set size of the supervised service process",
		},
	)
)

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version      string
	ServiceName  string
	ReadinessURL string
}

// Collector owns metric updates for a supervisor run.
type Collector struct{}

// NewCollector creates a collector using the default Prometheus registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{}

	registry.MustRegister(
		waitstrapInfo,
		waitstrapPhase,

		probeAttemptsTotal,
		probeFailuresTotal,
		probeReadyAttempt,
		probeLatencySeconds,

		setupDurationSeconds,
		setupExitCode,

		serviceUp,
		serviceUptimeSeconds,
		serviceExitCode,
		serviceCPUPercent,
		serviceMemoryRSSBytes,
	)

	waitstrapInfo.WithLabelValues(cfg.Version, cfg.ServiceName, cfg.ReadinessURL).Set(1)
	setupExitCode.Set(-1)
	serviceExitCode.Set(-1)

	return c
}

// SetPhase marks the given phase active and all others inactive.
func (c *Collector) SetPhase(active string, all []string) {
	for _, phase := range all {
		v := 0.0
		if phase == active {
			v = 1
		}
		waitstrapPhase.WithLabelValues(phase).Set(v)
	}
}

// ProbeAttempt records one probe attempt and its transport result.
func (c *Collector) ProbeAttempt(latency time.Duration, err error) {
	probeAttemptsTotal.Inc()
	probeLatencySeconds.Observe(latency.Seconds())
	if err != nil {
		probeFailuresTotal.Inc()
	}
}

// ProbeFinished records the loop outcome. attempt is 0 when exhausted.
func (c *Collector) ProbeFinished(ready bool, attempt int) {
	if ready {
		probeReadyAttempt.Set(float64(attempt))
	} else {
		probeReadyAttempt.Set(0)
	}
}

// SetupFinished records the setup task result.
func (c *Collector) SetupFinished(code int, duration time.Duration) {
	setupExitCode.Set(float64(code))
	setupDurationSeconds.Set(duration.Seconds())
}

// ServiceStarted marks the service as running.
func (c *Collector) ServiceStarted() {
	serviceUp.Set(1)
}

// ServiceExited records the terminal service status.
func (c *Collector) ServiceExited(code int, uptime time.Duration) {
	serviceUp.Set(0)
	serviceExitCode.Set(float64(code))
	serviceUptimeSeconds.Set(uptime.Seconds())
}

// ServiceResources records a resource usage sample for the child process.
func (c *Collector) ServiceResources(cpuPercent float64, rssBytes uint64, uptime time.Duration) {
	serviceCPUPercent.Set(cpuPercent)
	serviceMemoryRSSBytes.Set(float64(rssBytes))
	serviceUptimeSeconds.Set(uptime.Seconds())
}
