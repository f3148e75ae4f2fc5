package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildgate/buildgate/internal/config"
)

func TestBuildServerWiring(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.Auth.Token = "wiring-token"

	s := buildServer(cfg, nil)
	h := s.Handler()

	// /health is open.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health: got %d, want 200", w.Code)
	}

	// /mcp requires the configured token.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("/mcp without token: got %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"method":"tools/list"}`))
	req.Header.Set("Authorization", "Bearer wiring-token")
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("/mcp with token: got %d, want 200", w.Code)
	}
}

func TestOpenAuditLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "state", "buildgate.log")

	f, err := openAuditLog(logPath)
	if err != nil {
		t.Fatalf("openAuditLog failed: %v", err)
	}
	defer f.Close()

	want := filepath.Join(dir, "state", "audit.log")
	if f.Name() != want {
		t.Errorf("audit log at %q, want %q", f.Name(), want)
	}
	info, err := os.Stat(want)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("audit log mode = %o, want 600", info.Mode().Perm())
	}
}
