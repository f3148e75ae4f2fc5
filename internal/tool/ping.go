package tool

import (
	"context"
	"fmt"
	"strconv"

	"github.com/buildgate/buildgate/internal/executor"
)

const defaultPingCount = 4

// PingTool implements ping_host: reachability checks via the system
// ping binary. The host argument is validated against a conservative
// character set so it can never smuggle options or shell syntax into
// the argument vector.
type PingTool struct {
	exec             executor.Executor
	goos             string
	defaultTimeoutMs int
}

// NewPingTool creates the ping_host handler for the given GOOS.
func NewPingTool(exec executor.Executor, goos string, defaultTimeoutMs int) *PingTool {
	return &PingTool{exec: exec, goos: goos, defaultTimeoutMs: defaultTimeoutMs}
}

func (t *PingTool) Definition() Definition {
	return Definition{
		Name:        "ping_host",
		Description: "Ping a host and return the reachability report.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"host":  {Type: "string", Description: "Hostname or IP address"},
				"count": {Type: "integer", Description: "Number of echo requests (default 4)"},
			},
			Required: []string{"host"},
		},
	}
}

func (t *PingTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	host := stringArg(args, "host")
	if err := validateHost(host); err != nil {
		return Result{}, err
	}

	count := intArg(args, "count", defaultPingCount)
	if count < 1 || count > 100 {
		return Result{}, fmt.Errorf("count must be between 1 and 100")
	}

	countFlag := "-c"
	if t.goos == "windows" {
		countFlag = "-n"
	}
	resp := t.exec.Execute(ctx, executor.Request{
		Command:   "ping",
		Args:      []string{countFlag, strconv.Itoa(count), host},
		TimeoutMs: t.defaultTimeoutMs,
	})
	return execResult(resp)
}

// validateHost accepts hostnames and IP literals only: letters, digits,
// dots, hyphens, and colons (IPv6). A leading hyphen is rejected so the
// value can never be read as a flag.
func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if host[0] == '-' {
		return fmt.Errorf("invalid host %q", host)
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == ':':
		default:
			return fmt.Errorf("invalid host %q", host)
		}
	}
	return nil
}
