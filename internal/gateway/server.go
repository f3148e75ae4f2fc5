// Package gateway implements the HTTP surface of buildgate: bearer-token
// authentication, per-client rate limiting, and tool dispatch over the
// POST /mcp endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/buildgate/buildgate/internal/audit"
	"github.com/buildgate/buildgate/internal/clog"
	"github.com/buildgate/buildgate/internal/sandbox"
	"github.com/buildgate/buildgate/internal/tool"
	"github.com/buildgate/buildgate/internal/version"
)

// serverName identifies this service in /health responses.
const serverName = "buildgate"

// Server is the buildgate HTTP gateway. It owns the listener lifecycle;
// all request state is per-goroutine except the rate limiter.
type Server struct {
	// Addr is the address to listen on (e.g. ":8085").
	Addr string

	// Registry dispatches tools/call requests.
	Registry *tool.Registry

	// Auth validates bearer tokens on /mcp.
	Auth *Authenticator

	// Limiter applies per-client rate limiting to all endpoints.
	// If nil, no rate limiting is performed.
	Limiter *RateLimiter

	// AuditLogger records tool call events. If nil, no audit logging
	// is performed.
	AuditLogger *audit.Logger

	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
	running  bool
}

// NewServer creates a gateway server. Registry and auth are required;
// limiter and auditLogger may be nil.
func NewServer(addr string, registry *tool.Registry, auth *Authenticator, limiter *RateLimiter, auditLogger *audit.Logger) *Server {
	return &Server{
		Addr:        addr,
		Registry:    registry,
		Auth:        auth,
		Limiter:     limiter,
		AuditLogger: auditLogger,
	}
}

// Start begins accepting connections. Returns an error if the server is
// already running or the listener cannot be created.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("gateway already running")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
	}
	s.running = true

	go func() {
		_ = s.server.Serve(listener)
	}()

	clog.Info("gateway listening on %s", listener.Addr())
	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	clog.Info("gateway shutting down")
	return s.server.Shutdown(ctx)
}

// ListenAddr returns the bound address, useful when Addr was ":0".
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler builds the route tree: rate limiting outermost, then bearer
// auth on /mcp. /health stays unauthenticated but rate-limited.
// Exposed so tests can drive the handler without a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if s.Limiter != nil {
		r.Use(s.Limiter.Middleware)
	}
	r.Get("/health", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.Auth.Middleware)
		r.Post("/mcp", s.handleMCP)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Server:  serverName,
		Version: version.Version,
	})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	switch req.Method {
	case "tools/list":
		s.handleToolsList(w)
	case "tools/call":
		s.handleToolsCall(w, r, req.Params)
	default:
		writeToolError(w, fmt.Sprintf("unknown method %q", req.Method))
	}
}

func (s *Server) handleToolsList(w http.ResponseWriter) {
	text, err := json.Marshal(s.Registry.Definitions())
	if err != nil {
		writeToolError(w, "failed to render tool catalog")
		return
	}
	writeText(w, string(text))
}

func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request, params CallParams) {
	id := uuid.NewString()
	client := clientIP(r)
	detail := tool.Detail(params.Name, params.Arguments)

	_ = s.AuditLogger.LogRequest(id, client, params.Name, detail)
	clog.Debug("tool call %s: %s from %s", id, params.Name, client)

	start := time.Now()
	res, err := s.Registry.Dispatch(r.Context(), params.Name, params.Arguments)
	elapsed := time.Since(start)

	if err != nil {
		if isDenial(err) {
			_ = s.AuditLogger.LogDeny(id, client, params.Name, detail, err.Error())
		} else {
			_ = s.AuditLogger.LogError(id, client, params.Name, detail, err.Error())
		}
		clog.Info("tool call %s failed: %v", id, err)
		writeToolError(w, err.Error())
		return
	}

	if res.TimedOut {
		_ = s.AuditLogger.LogTimeout(id, client, params.Name, detail, elapsed)
	} else {
		_ = s.AuditLogger.LogComplete(id, client, params.Name, detail, res.ExitCode, elapsed)
	}
	writeText(w, res.Text)
}

// isDenial reports whether a dispatch error is a policy or validation
// rejection rather than an execution failure.
func isDenial(err error) bool {
	var validationErr *sandbox.ValidationError
	var argErr *tool.ArgError
	return errors.As(err, &validationErr) ||
		errors.As(err, &argErr) ||
		errors.Is(err, tool.ErrUnknownTool)
}
