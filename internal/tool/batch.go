package tool

import (
	"context"
	"runtime"

	"github.com/buildgate/buildgate/internal/executor"
	"github.com/buildgate/buildgate/internal/sandbox"
)

// BatchTool implements run_batch: launching a batch script whose path
// must pass the sandbox before anything is spawned. The validated path
// is passed to the interpreter as a discrete argv entry.
type BatchTool struct {
	exec             executor.Executor
	box              *sandbox.Sandbox
	shell            string
	defaultTimeoutMs int
}

// NewBatchTool creates the run_batch handler. On windows scripts run
// under "cmd /c"; elsewhere they run under the configured shell, which
// covers test environments and unix hosts carrying .cmd-named scripts.
func NewBatchTool(exec executor.Executor, box *sandbox.Sandbox, shell string, defaultTimeoutMs int) *BatchTool {
	return &BatchTool{exec: exec, box: box, shell: shell, defaultTimeoutMs: defaultTimeoutMs}
}

func (t *BatchTool) Definition() Definition {
	return Definition{
		Name:        "run_batch",
		Description: "Run a batch script from an allowed directory.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"batchFile":        {Type: "string", Description: "Path to the .bat or .cmd script"},
				"arguments":        {Type: "array", Description: "Arguments passed to the script"},
				"workingDirectory": {Type: "string", Description: "Directory to run in; must also be allowed"},
				"timeoutMs":        {Type: "integer", Description: "Timeout in milliseconds"},
			},
			Required: []string{"batchFile"},
		},
	}
}

func (t *BatchTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	script, err := t.box.ValidateScript(stringArg(args, "batchFile"))
	if err != nil {
		return Result{}, err
	}

	workdir := script.Dir
	if wd := stringArg(args, "workingDirectory"); wd != "" {
		validated, err := t.box.ValidatePath(wd)
		if err != nil {
			return Result{}, err
		}
		workdir = validated.Path
	}

	req := executor.Request{
		Workdir:   workdir,
		TimeoutMs: intArg(args, "timeoutMs", t.defaultTimeoutMs),
	}
	extra := stringSliceArg(args, "arguments")
	if runtime.GOOS == "windows" {
		req.Command = "cmd"
		req.Args = append([]string{"/c", script.Path}, extra...)
	} else {
		req.Command = t.shell
		req.Args = append([]string{script.Path}, extra...)
	}

	return execResult(t.exec.Execute(ctx, req))
}

// stringSliceArg returns args[field] as a string slice, skipping
// non-string elements.
func stringSliceArg(args map[string]any, field string) []string {
	raw, ok := args[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
