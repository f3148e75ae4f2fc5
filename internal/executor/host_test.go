//go:build !windows

package executor

import (
	"context"
	"os"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// TestHostExecutorInterface verifies HostExecutor implements Executor.
func TestHostExecutorInterface(_ *testing.T) {
	var _ Executor = &HostExecutor{}
	var _ Executor = NewHostExecutor(0)
}

func TestHostExecutorEchoHello(t *testing.T) {
	e := NewHostExecutor(0)
	resp := e.Execute(context.Background(), Request{
		Command: "echo",
		Args:    []string{"hello"},
	})

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if resp.ExitCode != 0 {
		t.Errorf("ExitCode: got %d, want 0", resp.ExitCode)
	}
	if !strings.Contains(resp.Stdout, "hello") {
		t.Errorf("Stdout should contain 'hello', got: %q", resp.Stdout)
	}
	if resp.Truncated {
		t.Error("Truncated should be false for small output")
	}
}

func TestHostExecutorNonexistentCommand(t *testing.T) {
	e := NewHostExecutor(0)
	resp := e.Execute(context.Background(), Request{
		Command: "this-command-definitely-does-not-exist-anywhere",
	})

	if resp.Status != StatusError {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusError)
	}
	if !strings.Contains(resp.Error, "executable not found") {
		t.Errorf("Error should contain 'executable not found', got: %q", resp.Error)
	}
}

func TestHostExecutorNonZeroExitIsCompleted(t *testing.T) {
	e := NewHostExecutor(0)
	resp := e.Execute(context.Background(), Request{
		Command: "sh",
		Args:    []string{"-c", "echo oops >&2; exit 3"},
	})

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if resp.ExitCode != 3 {
		t.Errorf("ExitCode: got %d, want 3", resp.ExitCode)
	}
	if !strings.Contains(resp.Stderr, "oops") {
		t.Errorf("Stderr should contain 'oops', got: %q", resp.Stderr)
	}
}

func TestHostExecutorTimeout(t *testing.T) {
	e := NewHostExecutor(0)
	start := time.Now()
	resp := e.Execute(context.Background(), Request{
		Command:   "sleep",
		Args:      []string{"5"},
		TimeoutMs: 200,
	})
	elapsed := time.Since(start)

	if resp.Status != StatusTimeout {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}
	if resp.ExitCode != -1 {
		t.Errorf("ExitCode: got %d, want -1", resp.ExitCode)
	}
	if !strings.Contains(resp.Error, "timed out") {
		t.Errorf("Error should contain 'timed out', got: %q", resp.Error)
	}
	if elapsed > 3*time.Second {
		t.Errorf("timeout took %v, should return promptly after the budget", elapsed)
	}
}

// A timed-out shell's children must be killed along with it.
func TestHostExecutorTimeoutKillsProcessGroup(t *testing.T) {
	e := NewHostExecutor(0)
	resp := e.Execute(context.Background(), Request{
		Command:   "sh",
		Args:      []string{"-c", "sleep 30 & echo started $!; wait"},
		TimeoutMs: 200,
	})

	if resp.Status != StatusTimeout {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}

	fields := strings.Fields(resp.Stdout)
	if len(fields) < 2 {
		t.Fatalf("expected 'started <pid>' in stdout, got %q", resp.Stdout)
	}
	pid, err := strconv.Atoi(fields[1])
	if err != nil {
		t.Fatalf("parse child pid from %q: %v", resp.Stdout, err)
	}

	// The grandchild may linger as an unreaped zombie when nothing
	// adopts it, so "dead" means gone or zombie, not just ESRCH.
	deadline := time.Now().Add(2 * time.Second)
	for !processDead(pid) {
		if time.Now().After(deadline) {
			t.Fatalf("grandchild pid %d still running after timeout", pid)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// processDead reports whether pid no longer exists or is a zombie.
func processDead(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return err == syscall.ESRCH
	}
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return false
	}
	// The state field follows the parenthesized command name.
	s := string(stat)
	if i := strings.LastIndexByte(s, ')'); i >= 0 && i+2 < len(s) {
		return s[i+2] == 'Z'
	}
	return false
}

func TestHostExecutorWorkdir(t *testing.T) {
	dir := t.TempDir()
	e := NewHostExecutor(0)
	resp := e.Execute(context.Background(), Request{
		Command: "pwd",
		Workdir: dir,
	})

	if resp.Status != StatusCompleted {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if !strings.Contains(resp.Stdout, dir) {
		t.Errorf("Stdout should contain %q, got: %q", dir, resp.Stdout)
	}
}

func TestHostExecutorEnv(t *testing.T) {
	e := NewHostExecutor(0)
	resp := e.Execute(context.Background(), Request{
		Command: "sh",
		Args:    []string{"-c", "echo $BUILDGATE_TEST_VAR"},
		Env:     map[string]string{"BUILDGATE_TEST_VAR": "wired"},
	})

	if !strings.Contains(resp.Stdout, "wired") {
		t.Errorf("Stdout should contain env value, got: %q", resp.Stdout)
	}
}

func TestHostExecutorOutputTruncation(t *testing.T) {
	e := NewHostExecutor(64)
	resp := e.Execute(context.Background(), Request{
		Command: "sh",
		Args:    []string{"-c", "i=0; while [ $i -lt 100 ]; do echo 0123456789; i=$((i+1)); done"},
	})

	if resp.Status != StatusCompleted {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if !resp.Truncated {
		t.Error("Truncated should be true when output exceeds the cap")
	}
	if len(resp.Stdout) > 64 {
		t.Errorf("Stdout length = %d, want <= 64", len(resp.Stdout))
	}
}

func TestHostExecutorCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	e := NewHostExecutor(0)
	resp := e.Execute(ctx, Request{
		Command: "sleep",
		Args:    []string{"5"},
	})

	if resp.Status != StatusCanceled {
		t.Errorf("Status: got %q, want %q on caller cancellation", resp.Status, StatusCanceled)
	}
	if !strings.Contains(resp.Error, "canceled") {
		t.Errorf("Error should say canceled, got: %q", resp.Error)
	}
	if resp.ExitCode != -1 {
		t.Errorf("ExitCode: got %d, want -1", resp.ExitCode)
	}
}

func TestHostExecutorStartDetached(t *testing.T) {
	e := NewHostExecutor(0)
	pid, err := e.Start(Request{Command: "sleep", Args: []string{"0.1"}})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if pid <= 0 {
		t.Errorf("pid = %d, want > 0", pid)
	}
}

func TestHostExecutorStartNonexistent(t *testing.T) {
	e := NewHostExecutor(0)
	if _, err := e.Start(Request{Command: "no-such-binary-here"}); err == nil {
		t.Error("Start of nonexistent binary should fail")
	}
}

func TestCappedBuffer(t *testing.T) {
	b := newCappedBuffer(5)
	n, err := b.Write([]byte("abcdefgh"))
	if err != nil || n != 8 {
		t.Fatalf("Write = (%d, %v), want (8, nil)", n, err)
	}
	if b.String() != "abcde" {
		t.Errorf("String = %q, want %q", b.String(), "abcde")
	}
	if !b.Truncated() {
		t.Error("Truncated should be true")
	}

	unlimited := newCappedBuffer(0)
	if _, err := unlimited.Write([]byte("anything goes")); err != nil {
		t.Fatal(err)
	}
	if unlimited.Truncated() {
		t.Error("unlimited buffer should never truncate")
	}
}
