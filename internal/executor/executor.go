// Package executor provides the interface and types for host command execution.
package executor

import "context"

// Executor executes commands on the host system.
type Executor interface {
	Execute(ctx context.Context, req Request) Response
}

// Request contains the command execution parameters. Command and Args
// are passed to the OS directly as an argument vector; no shell parsing
// happens here. Tools that want shell semantics must supply the shell
// binary and its -c argument themselves.
type Request struct {
	Command   string            `json:"command"`
	Args      []string          `json:"args"`
	Workdir   string            `json:"workdir,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	TimeoutMs int               `json:"timeout_ms,omitempty"`
}

// Response contains the result of command execution. A non-zero exit
// code is a completed response, not an error; Status is StatusError only
// when the process could not be spawned or was lost to a host-level
// failure.
type Response struct {
	Status     string `json:"status"` // "completed", "timeout", "canceled", "error"
	ExitCode   int    `json:"exitCode"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	Truncated  bool   `json:"truncated,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// Status constants for Response.Status.
const (
	StatusCompleted = "completed"
	StatusTimeout   = "timeout"
	StatusCanceled  = "canceled"
	StatusError     = "error"
)

// TimedOut reports whether the response represents a timeout.
func (r Response) TimedOut() bool {
	return r.Status == StatusTimeout
}
