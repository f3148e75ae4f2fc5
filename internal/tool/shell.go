package tool

import (
	"context"

	"github.com/buildgate/buildgate/internal/executor"
)

// ShellTool implements run_shell: a direct command string handed to the
// configured POSIX shell. This tool intentionally accepts a raw command
// string; it is not path-gated, and the bearer token is the only gate.
type ShellTool struct {
	exec             executor.Executor
	shell            string
	defaultTimeoutMs int
}

// NewShellTool creates the run_shell handler using the given shell
// binary (e.g. "/bin/sh") and default timeout.
func NewShellTool(exec executor.Executor, shell string, defaultTimeoutMs int) *ShellTool {
	return &ShellTool{exec: exec, shell: shell, defaultTimeoutMs: defaultTimeoutMs}
}

func (t *ShellTool) Definition() Definition {
	return Definition{
		Name:        "run_shell",
		Description: "Run a shell command on the gateway host and return its output.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"command":          {Type: "string", Description: "Command line to run via the shell"},
				"workingDirectory": {Type: "string", Description: "Directory to run in"},
				"timeoutMs":        {Type: "integer", Description: "Timeout in milliseconds"},
			},
			Required: []string{"command"},
		},
	}
}

func (t *ShellTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	resp := t.exec.Execute(ctx, executor.Request{
		Command:   t.shell,
		Args:      []string{"-c", stringArg(args, "command")},
		Workdir:   stringArg(args, "workingDirectory"),
		TimeoutMs: intArg(args, "timeoutMs", t.defaultTimeoutMs),
	})
	return execResult(resp)
}

// PowerShellTool implements run_powershell: a direct command string
// handed to the configured PowerShell binary. Like run_shell, this is
// not path-gated.
type PowerShellTool struct {
	exec             executor.Executor
	powershell       string
	defaultTimeoutMs int
}

// NewPowerShellTool creates the run_powershell handler using the given
// PowerShell binary (e.g. "pwsh" or "powershell").
func NewPowerShellTool(exec executor.Executor, powershell string, defaultTimeoutMs int) *PowerShellTool {
	return &PowerShellTool{exec: exec, powershell: powershell, defaultTimeoutMs: defaultTimeoutMs}
}

func (t *PowerShellTool) Definition() Definition {
	return Definition{
		Name:        "run_powershell",
		Description: "Run a PowerShell command on the gateway host and return its output.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"command":          {Type: "string", Description: "Command to run via PowerShell"},
				"workingDirectory": {Type: "string", Description: "Directory to run in"},
				"timeoutMs":        {Type: "integer", Description: "Timeout in milliseconds"},
			},
			Required: []string{"command"},
		},
	}
}

func (t *PowerShellTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	resp := t.exec.Execute(ctx, executor.Request{
		Command:   t.powershell,
		Args:      []string{"-NoProfile", "-NonInteractive", "-Command", stringArg(args, "command")},
		Workdir:   stringArg(args, "workingDirectory"),
		TimeoutMs: intArg(args, "timeoutMs", t.defaultTimeoutMs),
	})
	return execResult(resp)
}
