package logging

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	// MaxLineLength is the maximum length of a single log line before truncation.
	MaxLineLength = 4096

	// MaxBufferedLines is the maximum number of lines retained per stream.
	MaxBufferedLines = 100
)

// OutputHandler re-logs output from a child process (the service or the setup
// task). It keeps a bounded ring of recent lines for the exit summary.
type OutputHandler struct {
	source  string // "service" or "setup"
	stream  string // "stdout" or "stderr"
	logger  *slog.Logger
	verbose bool

	// Circular buffer for recent lines
	buffer []string
	bufIdx int
	mu     sync.Mutex
}

// NewOutputHandler creates a handler for one output stream of a child process.
func NewOutputHandler(source, stream string, logger *slog.Logger, verbose bool) *OutputHandler {
	return &OutputHandler{
		source:  source,
		stream:  stream,
		logger:  logger,
		verbose: verbose,
		buffer:  make([]string, MaxBufferedLines),
	}
}

// HandleReader reads from an io.Reader and processes each line. It must drain
// the reader to EOF no matter what the child writes: if it stops early the
// pipe fills and the child blocks on its next write. Oversized lines are
// truncated and the remainder discarded.
// This should be run in a goroutine; it returns when the reader is exhausted.
func (h *OutputHandler) HandleReader(r io.Reader) {
	br := bufio.NewReader(r)

	// Keep one byte past the cap so HandleLine can tell the line overflowed.
	line := make([]byte, 0, MaxLineLength+1)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if len(chunk) > 0 {
			if room := MaxLineLength + 1 - len(line); room > 0 {
				if len(chunk) > room {
					chunk = chunk[:room]
				}
				line = append(line, chunk...)
			}
		}
		if isPrefix && err == nil {
			continue
		}
		if len(line) > 0 || err == nil {
			h.HandleLine(string(line))
		}
		line = line[:0]
		if err != nil {
			return
		}
	}
}

// HandleLine processes a single line of child output.
func (h *OutputHandler) HandleLine(line string) {
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength] + "...(truncated)"
	}

	h.mu.Lock()
	h.buffer[h.bufIdx] = line
	h.bufIdx = (h.bufIdx + 1) % MaxBufferedLines
	h.mu.Unlock()

	h.logLine(line)
}

// logLine logs the line at a level inferred from its content.
func (h *OutputHandler) logLine(line string) {
	level := classifyLine(line)

	// In non-verbose mode, only surface warnings and errors
	if !h.verbose && level == slog.LevelDebug {
		return
	}

	h.logger.Log(nil, level, "child_output",
		"source", h.source,
		"stream", h.stream,
		"line", line,
	)
}

// classifyLine determines the log level for a line based on content.
func classifyLine(line string) slog.Level {
	lower := strings.ToLower(line)

	if strings.Contains(lower, "error") ||
		strings.Contains(lower, "fatal") ||
		strings.Contains(lower, "traceback") ||
		strings.Contains(lower, "connection refused") {
		return slog.LevelWarn
	}

	if strings.Contains(lower, "warn") || strings.Contains(lower, "deprecat") {
		return slog.LevelWarn
	}

	return slog.LevelDebug
}

// RecentLines returns up to n of the most recent buffered lines, oldest first.
func (h *OutputHandler) RecentLines(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > MaxBufferedLines {
		n = MaxBufferedLines
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (h.bufIdx - n + i + MaxBufferedLines) % MaxBufferedLines
		if h.buffer[idx] != "" {
			lines = append(lines, h.buffer[idx])
		}
	}

	return lines
}
