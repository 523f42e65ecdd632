package metrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// DefaultSampleInterval is how often the child's resource usage is sampled.
const DefaultSampleInterval = 10 * time.Second

// ProcWatcher periodically samples CPU and memory usage of the supervised
// service process and feeds the gauges in the Collector. It runs only during
// the Running phase; once the process disappears the watcher stops on its own.
type ProcWatcher struct {
	pid       int32
	startTime time.Time
	interval  time.Duration
	collector *Collector
	logger    *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewProcWatcher creates a watcher for the given child pid.
func NewProcWatcher(pid int, startTime time.Time, interval time.Duration, collector *Collector, logger *slog.Logger) *ProcWatcher {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &ProcWatcher{
		pid:       int32(pid),
		startTime: startTime,
		interval:  interval,
		collector: collector,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Run samples until Stop is called or the process is gone.
// This should be run in a goroutine.
func (w *ProcWatcher) Run() {
	proc, err := process.NewProcess(w.pid)
	if err != nil {
		w.logger.Debug("procwatch_unavailable", "pid", w.pid, "error", err)
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if !w.sample(proc) {
				return
			}
		}
	}
}

// sample takes one reading. Returns false when the process no longer exists.
func (w *ProcWatcher) sample(proc *process.Process) bool {
	running, err := proc.IsRunning()
	if err != nil || !running {
		w.logger.Debug("procwatch_process_gone", "pid", w.pid)
		return false
	}

	cpu, err := proc.CPUPercent()
	if err != nil {
		w.logger.Debug("procwatch_cpu_error", "pid", w.pid, "error", err)
		return true
	}

	var rss uint64
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		rss = mem.RSS
	}

	w.collector.ServiceResources(cpu, rss, time.Since(w.startTime))
	return true
}

// Stop ends the sampling loop. Safe to call multiple times.
func (w *ProcWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}
