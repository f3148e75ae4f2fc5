// Package tool defines the gateway's tool catalog: the dispatch
// registry, the per-tool argument schemas, and the handlers that turn a
// validated call into host activity.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/buildgate/buildgate/internal/executor"
)

// Property describes one argument in a tool's input schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Schema is the JSON-schema-shaped argument declaration for a tool.
// Only the subset the dispatcher enforces is modeled: top-level object
// with typed properties and a required list.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Definition is the discoverable description of a tool, returned by
// tools/list.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// Result is the outcome of a successful (or timed-out) tool call.
// Text is the JSON payload placed in the response envelope.
type Result struct {
	Text     string
	ExitCode int
	TimedOut bool
}

// Tool is a dispatchable handler with its declared schema.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]any) (Result, error)
}

// Registry maps tool names to handlers and validates arguments before
// dispatch. Built once at startup; read-only afterwards, so safe for
// concurrent use.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry. Panics on a duplicate name,
// which is always a programming error in catalog construction.
func (r *Registry) Register(t Tool) {
	name := t.Definition().Name
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", name))
	}
	r.tools[name] = t
}

// Get returns the tool with the given name, or false if unknown.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the catalog sorted by name for stable tools/list
// output.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch validates args against the named tool's schema and invokes
// it. Unknown names and schema violations are reported without the
// handler ever running.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(t.Definition().InputSchema, args); err != nil {
		return Result{}, err
	}
	return t.Execute(ctx, args)
}

// validateArgs enforces required fields and primitive types declared in
// the schema. Undeclared extra fields are ignored.
func validateArgs(s Schema, args map[string]any) error {
	for _, field := range s.Required {
		if _, ok := args[field]; !ok {
			return &ArgError{Field: field, Kind: MissingField}
		}
	}
	for field, prop := range s.Properties {
		v, ok := args[field]
		if !ok || v == nil {
			continue
		}
		if !typeMatches(prop.Type, v) {
			return &ArgError{Field: field, Kind: BadType, Want: prop.Type}
		}
	}
	return nil
}

// typeMatches checks a decoded JSON value against a schema type name.
// encoding/json decodes numbers as float64, so integer acceptance
// requires a whole-number check.
func typeMatches(schemaType string, v any) bool {
	switch schemaType {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer":
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	case "number":
		_, ok := v.(float64)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	}
	return false
}

// stringArg returns args[field] as a string, or "" if absent. Type
// correctness is guaranteed by schema validation before dispatch.
func stringArg(args map[string]any, field string) string {
	s, _ := args[field].(string)
	return s
}

// intArg returns args[field] as an int, or def if absent.
func intArg(args map[string]any, field string, def int) int {
	f, ok := args[field].(float64)
	if !ok {
		return def
	}
	return int(f)
}

// boolArg returns args[field] as a bool, or def if absent.
func boolArg(args map[string]any, field string, def bool) bool {
	b, ok := args[field].(bool)
	if !ok {
		return def
	}
	return b
}

// execResult renders an executor response as a tool Result. Spawn-level
// executor failures surface as tool errors; everything else, including
// timeouts and non-zero exits, is data in the result payload.
func execResult(resp executor.Response) (Result, error) {
	if resp.Status == executor.StatusError {
		return Result{}, fmt.Errorf("%s", resp.Error)
	}
	text, err := json.Marshal(resp)
	if err != nil {
		return Result{}, fmt.Errorf("marshal execution result: %w", err)
	}
	return Result{
		Text:     string(text),
		ExitCode: resp.ExitCode,
		TimedOut: resp.TimedOut(),
	}, nil
}

// Detail returns a short human-readable summary of a call's arguments
// for audit logging, based on the argument each tool treats as primary.
func Detail(name string, args map[string]any) string {
	for _, field := range []string{"command", "projectPath", "batchFile", "executablePath", "source", "host", "action"} {
		if s, ok := args[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
