package tool

import (
	"context"

	"github.com/buildgate/buildgate/internal/executor"
)

// DotnetTool implements build_dotnet: a dotnet build invocation with a
// fixed argument template, so the project path and configuration are
// passed as discrete argv entries rather than interpolated into a shell
// string.
type DotnetTool struct {
	exec             executor.Executor
	defaultTimeoutMs int
}

// NewDotnetTool creates the build_dotnet handler.
func NewDotnetTool(exec executor.Executor, defaultTimeoutMs int) *DotnetTool {
	return &DotnetTool{exec: exec, defaultTimeoutMs: defaultTimeoutMs}
}

func (t *DotnetTool) Definition() Definition {
	return Definition{
		Name:        "build_dotnet",
		Description: "Build a .NET project or solution with dotnet build.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"projectPath":      {Type: "string", Description: "Path to the project or solution file"},
				"configuration":    {Type: "string", Description: "Build configuration (default Release)"},
				"workingDirectory": {Type: "string", Description: "Directory to run in"},
				"timeoutMs":        {Type: "integer", Description: "Timeout in milliseconds"},
			},
			Required: []string{"projectPath"},
		},
	}
}

func (t *DotnetTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	configuration := stringArg(args, "configuration")
	if configuration == "" {
		configuration = "Release"
	}
	resp := t.exec.Execute(ctx, executor.Request{
		Command:   "dotnet",
		Args:      buildDotnetArgs(stringArg(args, "projectPath"), configuration),
		Workdir:   stringArg(args, "workingDirectory"),
		TimeoutMs: intArg(args, "timeoutMs", t.defaultTimeoutMs),
	})
	return execResult(resp)
}

// buildDotnetArgs is the fixed argument template for dotnet build.
func buildDotnetArgs(projectPath, configuration string) []string {
	return []string{"build", projectPath, "-c", configuration, "--nologo"}
}
