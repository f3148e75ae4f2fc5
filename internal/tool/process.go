package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/buildgate/buildgate/internal/executor"
	"github.com/buildgate/buildgate/internal/sandbox"
)

// ProcessStarter spawns a command detached from the gateway and
// returns its pid. Satisfied by executor.HostExecutor.
type ProcessStarter interface {
	Start(req executor.Request) (int, error)
}

// ProcessTool implements process_manager: listing and stopping
// processes by name, and starting path-gated executables detached.
type ProcessTool struct {
	exec             executor.Executor
	starter          ProcessStarter
	box              *sandbox.Sandbox
	defaultTimeoutMs int
}

// NewProcessTool creates the process_manager handler.
func NewProcessTool(exec executor.Executor, starter ProcessStarter, box *sandbox.Sandbox, defaultTimeoutMs int) *ProcessTool {
	return &ProcessTool{exec: exec, starter: starter, box: box, defaultTimeoutMs: defaultTimeoutMs}
}

func (t *ProcessTool) Definition() Definition {
	return Definition{
		Name:        "process_manager",
		Description: "List, start, or stop processes on the gateway host.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"action":         {Type: "string", Description: "One of: list, start, stop"},
				"name":           {Type: "string", Description: "Process name; filters list, selects stop target"},
				"executablePath": {Type: "string", Description: "Path to start; must be in an allowed directory"},
				"arguments":      {Type: "array", Description: "Arguments for the started process"},
			},
			Required: []string{"action"},
		},
	}
}

func (t *ProcessTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	switch action := stringArg(args, "action"); action {
	case "list":
		cmd, argv := listProcessArgs(stringArg(args, "name"), runtime.GOOS)
		return execResult(t.exec.Execute(ctx, executor.Request{
			Command:   cmd,
			Args:      argv,
			TimeoutMs: t.defaultTimeoutMs,
		}))

	case "stop":
		name := stringArg(args, "name")
		if name == "" {
			return Result{}, &ArgError{Field: "name", Kind: MissingField}
		}
		cmd, argv := stopProcessArgs(name, runtime.GOOS)
		return execResult(t.exec.Execute(ctx, executor.Request{
			Command:   cmd,
			Args:      argv,
			TimeoutMs: t.defaultTimeoutMs,
		}))

	case "start":
		path := stringArg(args, "executablePath")
		if path == "" {
			return Result{}, &ArgError{Field: "executablePath", Kind: MissingField}
		}
		validated, err := t.box.ValidatePath(path)
		if err != nil {
			return Result{}, err
		}
		pid, err := t.starter.Start(executor.Request{
			Command: validated.Path,
			Args:    stringSliceArg(args, "arguments"),
			Workdir: validated.Dir,
		})
		if err != nil {
			return Result{}, fmt.Errorf("start process: %w", err)
		}
		text, err := json.Marshal(map[string]any{"status": "started", "pid": pid})
		if err != nil {
			return Result{}, err
		}
		return Result{Text: string(text)}, nil

	default:
		return Result{}, fmt.Errorf("unknown action %q: must be list, start, or stop", action)
	}
}

// listProcessArgs builds the platform argument vector for listing
// processes, optionally filtered by name.
func listProcessArgs(name, goos string) (string, []string) {
	if goos == "windows" {
		if name != "" {
			return "tasklist", []string{"/FI", "IMAGENAME eq " + name}
		}
		return "tasklist", nil
	}
	if name != "" {
		return "pgrep", []string{"-l", name}
	}
	return "ps", []string{"-eo", "pid,comm"}
}

// stopProcessArgs builds the platform argument vector for stopping
// processes by exact name.
func stopProcessArgs(name, goos string) (string, []string) {
	if goos == "windows" {
		return "taskkill", []string{"/IM", name, "/F"}
	}
	return "pkill", []string{"-x", name}
}
