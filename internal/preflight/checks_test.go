package preflight

import (
	"strings"
	"testing"
)

func TestRunAll_AllPass(t *testing.T) {
	result := RunAll([]string{"sh", "-c", "true"}, "true", "http://localhost:7001/")

	if !result.Passed {
		t.Fatalf("expected pass, got:\n%s", result)
	}
	if len(result.Checks) != 3 {
		t.Errorf("expected 3 checks, got %d", len(result.Checks))
	}
}

func TestRunAll_MissingServiceBinary(t *testing.T) {
	result := RunAll([]string{"/nonexistent/odoo-bin"}, "true", "http://localhost:7001/")

	if result.Passed {
		t.Fatal("expected failure for missing service binary")
	}
	if result.Checks[0].Passed {
		t.Error("service_binary check should have failed")
	}
}

func TestRunAll_MissingSetupCommand(t *testing.T) {
	result := RunAll([]string{"sh"}, "/nonexistent/setup-task", "http://localhost:7001/")

	if result.Passed {
		t.Fatal("expected failure for missing setup command")
	}
}

func TestRunAll_EmptyServiceCommand(t *testing.T) {
	result := RunAll(nil, "true", "http://localhost:7001/")

	if result.Passed {
		t.Fatal("expected failure for empty service command")
	}
	if !strings.Contains(result.Checks[0].Message, "no command") {
		t.Errorf("message = %q", result.Checks[0].Message)
	}
}

func TestValidateURL(t *testing.T) {
	testCases := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:7001/", false},
		{"https://odoo.internal:8069/web", false},
		{"ftp://example.com/", true},
		{"localhost:7001", true},
		{"http://", true},
		{"", true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			err := ValidateURL(tc.url)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
		})
	}
}

func TestCheckString(t *testing.T) {
	pass := Check{Name: "service_binary", Passed: true, Message: "/bin/sh"}
	if !strings.Contains(pass.String(), "✓") {
		t.Errorf("pass rendering = %q", pass.String())
	}

	fail := Check{Name: "setup_command", Passed: false, Message: "not found"}
	if !strings.Contains(fail.String(), "✗") {
		t.Errorf("fail rendering = %q", fail.String())
	}
}
