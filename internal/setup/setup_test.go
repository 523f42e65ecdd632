package setup

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInvocation_Argv(t *testing.T) {
	inv := Invocation{
		Command: "python3",
		Args:    []string{"setup.py", "--create-db"},
		URL:     "http://localhost:7001/",
	}

	argv := inv.Argv()
	want := []string{"python3", "setup.py", "--create-db", "http://localhost:7001/"}
	if len(argv) != len(want) {
		t.Fatalf("Argv() = %v", argv)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("Argv()[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestInvocation_ArgvWithoutURL(t *testing.T) {
	inv := Invocation{Command: "true"}
	if argv := inv.Argv(); len(argv) != 1 || argv[0] != "true" {
		t.Errorf("Argv() = %v", argv)
	}
}

func TestRun_Success(t *testing.T) {
	r := NewRunner(testLogger(), false)

	result := r.Run(context.Background(), Invocation{Command: "true"})

	if !result.OK() {
		t.Errorf("expected success, got code %d", result.Code)
	}
	if result.Diagnostic != "" {
		t.Errorf("success should carry no diagnostic, got %q", result.Diagnostic)
	}
}

func TestRun_FailurePropagatesCode(t *testing.T) {
	r := NewRunner(testLogger(), false)

	result := r.Run(context.Background(), Invocation{
		Command: "sh",
		Args:    []string{"-c", "echo provisioning failed >&2; exit 3"},
	})

	if result.OK() {
		t.Fatal("expected failure")
	}
	if result.Code != 3 {
		t.Errorf("Code = %d, want 3", result.Code)
	}
	if !strings.Contains(result.Diagnostic, "provisioning failed") {
		t.Errorf("Diagnostic = %q, want stderr tail", result.Diagnostic)
	}
}

func TestRun_CommandNotFound(t *testing.T) {
	r := NewRunner(testLogger(), false)

	result := r.Run(context.Background(), Invocation{Command: "/nonexistent/setup-task"})

	if result.OK() {
		t.Fatal("expected failure")
	}
	if result.Code != 127 {
		t.Errorf("Code = %d, want 127", result.Code)
	}
}

func TestRun_URLIsPassedToTask(t *testing.T) {
	r := NewRunner(testLogger(), false)

	// The task fails unless its last argument is the URL
	result := r.Run(context.Background(), Invocation{
		Command: "sh",
		Args:    []string{"-c", `[ "$1" = "http://svc:7001/" ]`, "check"},
		URL:     "http://svc:7001/",
	})

	if !result.OK() {
		t.Errorf("task did not receive URL argument, code %d", result.Code)
	}
}

func TestRun_IsSynchronous(t *testing.T) {
	r := NewRunner(testLogger(), false)

	start := time.Now()
	result := r.Run(context.Background(), Invocation{
		Command: "sh",
		Args:    []string{"-c", "sleep 0.2"},
	})

	if time.Since(start) < 200*time.Millisecond {
		t.Error("Run returned before the task finished")
	}
	if !result.OK() {
		t.Errorf("unexpected failure: %d", result.Code)
	}
	if result.Duration < 200*time.Millisecond {
		t.Errorf("Duration = %v, want >= 200ms", result.Duration)
	}
}
