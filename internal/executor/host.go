package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"
)

// killGracePeriod is how long Wait may block after the context is
// cancelled before remaining pipe readers are abandoned.
const killGracePeriod = 5 * time.Second

// HostExecutor executes commands on the local host using os/exec.
// Each invocation owns its own child process and buffers; instances are
// safe for concurrent use.
type HostExecutor struct {
	// MaxOutputBytes caps captured stdout and stderr (each). Output past
	// the cap is dropped and the response is marked truncated.
	// Zero means no cap.
	MaxOutputBytes int
}

// NewHostExecutor creates a HostExecutor with the given output cap.
func NewHostExecutor(maxOutputBytes int) *HostExecutor {
	return &HostExecutor{MaxOutputBytes: maxOutputBytes}
}

// Execute runs a command and returns the result. On timeout the whole
// process group is killed (where the platform allows) so no children
// are orphaned.
func (e *HostExecutor) Execute(ctx context.Context, req Request) Response {
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Command, req.Args...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessTree(cmd) }
	cmd.WaitDelay = killGracePeriod

	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}

	if len(req.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range req.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdout := newCappedBuffer(e.MaxOutputBytes)
	stderr := newCappedBuffer(e.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	truncated := stdout.Truncated() || stderr.Truncated()

	if err != nil {
		// Timeout: the process tree was killed on budget expiry.
		if ctx.Err() == context.DeadlineExceeded {
			return Response{
				Status:     StatusTimeout,
				ExitCode:   -1,
				Stdout:     stdout.String(),
				Stderr:     stderr.String(),
				Truncated:  truncated,
				DurationMs: elapsed,
				Error:      "command timed out",
			}
		}

		// Caller cancellation (client disconnect, shutdown): killed the
		// same way, but not a timeout.
		if ctx.Err() == context.Canceled {
			return Response{
				Status:     StatusCanceled,
				ExitCode:   -1,
				Stdout:     stdout.String(),
				Stderr:     stderr.String(),
				Truncated:  truncated,
				DurationMs: elapsed,
				Error:      "command canceled",
			}
		}

		// Executable not found or not runnable: spawn-level failure.
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return Response{
				Status:     StatusError,
				DurationMs: elapsed,
				Error:      "executable not found: " + req.Command,
			}
		}

		// Command ran but returned non-zero: a normal completed result.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Response{
				Status:     StatusCompleted,
				ExitCode:   exitErr.ExitCode(),
				Stdout:     stdout.String(),
				Stderr:     stderr.String(),
				Truncated:  truncated,
				DurationMs: elapsed,
			}
		}

		// Other host-level failures (permission denied, bad workdir, ...).
		return Response{
			Status:     StatusError,
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			Truncated:  truncated,
			DurationMs: elapsed,
			Error:      err.Error(),
		}
	}

	return Response{
		Status:     StatusCompleted,
		ExitCode:   0,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Truncated:  truncated,
		DurationMs: elapsed,
	}
}

// Start spawns a command detached from the gateway: the process is
// placed in its own group and not waited on. Used by process_manager's
// start action. Returns the pid.
func (e *HostExecutor) Start(req Request) (int, error) {
	cmd := exec.Command(req.Command, req.Args...)
	setProcessGroup(cmd)
	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	// Reap the child when it exits so it doesn't linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// cappedBuffer is an io.Writer that keeps at most cap bytes and records
// whether anything was dropped. A zero cap disables the limit.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	cap       int
	truncated bool
}

func newCappedBuffer(capBytes int) *cappedBuffer {
	return &cappedBuffer{cap: capBytes}
}

// Write appends p to the buffer, dropping bytes past the cap.
// It always reports the full length so the writing process is not
// interrupted by a short-write error.
func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cap <= 0 {
		b.buf = append(b.buf, p...)
		return len(p), nil
	}

	room := b.cap - len(b.buf)
	switch {
	case room >= len(p):
		b.buf = append(b.buf, p...)
	case room > 0:
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
	default:
		b.truncated = true
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
