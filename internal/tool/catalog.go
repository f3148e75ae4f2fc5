package tool

import (
	"runtime"
	"time"

	"github.com/buildgate/buildgate/internal/executor"
	"github.com/buildgate/buildgate/internal/sandbox"
)

const fallbackTimeout = 2 * time.Minute

// CatalogConfig carries the execution settings the catalog needs.
type CatalogConfig struct {
	Shell          string
	PowerShell     string
	DefaultTimeout time.Duration
}

// NewCatalog builds the full tool registry: the direct command tools,
// the path-gated tools bound to the sandbox, and the host utilities.
func NewCatalog(cfg CatalogConfig, box *sandbox.Sandbox, host *executor.HostExecutor) *Registry {
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = fallbackTimeout
	}
	timeoutMs := int(timeout.Milliseconds())

	r := NewRegistry()
	r.Register(NewShellTool(host, cfg.Shell, timeoutMs))
	r.Register(NewPowerShellTool(host, cfg.PowerShell, timeoutMs))
	r.Register(NewDotnetTool(host, timeoutMs))
	r.Register(NewBatchTool(host, box, cfg.Shell, timeoutMs))
	r.Register(NewProcessTool(host, host, box, timeoutMs))
	r.Register(NewFileSyncTool(box))
	r.Register(NewPingTool(host, runtime.GOOS, timeoutMs))
	return r
}
