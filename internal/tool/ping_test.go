package tool

import (
	"context"
	"strings"
	"testing"
)

func TestValidateHost(t *testing.T) {
	tests := []struct {
		host string
		ok   bool
	}{
		{"example.com", true},
		{"build-server01.internal", true},
		{"10.0.0.5", true},
		{"fe80::1", true},
		{"", false},
		{"-c", false},
		{"host; rm -rf /", false},
		{"host name", false},
		{"host`whoami`", false},
	}
	for _, tt := range tests {
		err := validateHost(tt.host)
		if tt.ok && err != nil {
			t.Errorf("validateHost(%q) = %v, want nil", tt.host, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("validateHost(%q) = nil, want error", tt.host)
		}
	}
}

func TestPingToolArgv(t *testing.T) {
	fake := &fakeExec{resp: completedResp(0, "1 packets transmitted")}
	tool := NewPingTool(fake, "linux", 5000)

	if _, err := tool.Execute(context.Background(), map[string]any{"host": "example.com"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []string{"-c", "4", "example.com"}
	if strings.Join(fake.lastReq.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args: got %v, want %v", fake.lastReq.Args, want)
	}
}

func TestPingToolWindowsCountFlag(t *testing.T) {
	fake := &fakeExec{resp: completedResp(0, "")}
	tool := NewPingTool(fake, "windows", 5000)

	if _, err := tool.Execute(context.Background(), map[string]any{"host": "example.com", "count": 2.0}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := []string{"-n", "2", "example.com"}
	if strings.Join(fake.lastReq.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args: got %v, want %v", fake.lastReq.Args, want)
	}
}

func TestPingToolRejectsBadHost(t *testing.T) {
	fake := &fakeExec{resp: completedResp(0, "")}
	tool := NewPingTool(fake, "linux", 5000)

	_, err := tool.Execute(context.Background(), map[string]any{"host": "-f"})
	if err == nil || !strings.Contains(err.Error(), "invalid host") {
		t.Errorf("expected host rejection, got: %v", err)
	}
	if fake.called != 0 {
		t.Error("executor must not run for a rejected host")
	}
}

func TestPingToolCountBounds(t *testing.T) {
	fake := &fakeExec{resp: completedResp(0, "")}
	tool := NewPingTool(fake, "linux", 5000)

	_, err := tool.Execute(context.Background(), map[string]any{"host": "example.com", "count": 1000.0})
	if err == nil || !strings.Contains(err.Error(), "between 1 and 100") {
		t.Errorf("expected count bound error, got: %v", err)
	}
}
