package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestSandbox creates a sandbox allowing scripts under a temp dir.
// It returns the sandbox and the allowed directory.
func newTestSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	dir := t.TempDir()
	return New([]string{dir}, []string{".bat", ".cmd"}), dir
}

// writeScript creates a file and returns its path.
func writeScript(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("echo ok\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr.Kind
}

func TestValidateScript_AllowedPath(t *testing.T) {
	s, dir := newTestSandbox(t)
	script := writeScript(t, filepath.Join(dir, "release", "start.bat"))

	v, err := s.ValidateScript(script)
	if err != nil {
		t.Fatalf("ValidateScript failed: %v", err)
	}
	if v.Path == "" || !strings.HasSuffix(v.Path, "start.bat") {
		t.Errorf("canonical path = %q", v.Path)
	}
	if want := filepath.Dir(v.Path); v.Dir != want {
		t.Errorf("working dir = %q, want %q", v.Dir, want)
	}
}

func TestValidateScript_ExtensionCaseInsensitive(t *testing.T) {
	s, dir := newTestSandbox(t)
	script := writeScript(t, filepath.Join(dir, "START.BAT"))

	if _, err := s.ValidateScript(script); err != nil {
		t.Errorf("uppercase extension should be accepted: %v", err)
	}
}

func TestValidateScript_InvalidExtension(t *testing.T) {
	s, dir := newTestSandbox(t)
	script := writeScript(t, filepath.Join(dir, "deploy.ps1"))

	_, err := s.ValidateScript(script)
	if kindOf(t, err) != InvalidExtension {
		t.Errorf("kind = %v, want InvalidExtension", kindOf(t, err))
	}
	if !strings.Contains(err.Error(), "Only .bat and .cmd files are allowed") {
		t.Errorf("error message = %q", err.Error())
	}
}

// The extension check runs before containment, so a bad extension wins
// even for a path that is also outside the allow-list.
func TestValidateScript_ExtensionCheckedFirst(t *testing.T) {
	s, _ := newTestSandbox(t)

	_, err := s.ValidateScript("/definitely/not/allowed/x.ps1")
	if kindOf(t, err) != InvalidExtension {
		t.Errorf("kind = %v, want InvalidExtension", kindOf(t, err))
	}
}

func TestValidateScript_UnauthorizedDirectory(t *testing.T) {
	s, _ := newTestSandbox(t)
	outside := writeScript(t, filepath.Join(t.TempDir(), "malware.bat"))

	_, err := s.ValidateScript(outside)
	if kindOf(t, err) != UnauthorizedDirectory {
		t.Errorf("kind = %v, want UnauthorizedDirectory", kindOf(t, err))
	}
	if !strings.Contains(err.Error(), "must be in one of the allowed directories") {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestValidateScript_DirectoryTraversal(t *testing.T) {
	s, dir := newTestSandbox(t)
	outside := writeScript(t, filepath.Join(t.TempDir(), "escape.bat"))

	// A path that starts inside the allowed root but climbs out.
	rel, err := filepath.Rel(dir, outside)
	if err != nil {
		t.Fatalf("rel: %v", err)
	}
	sneaky := dir + string(filepath.Separator) + rel

	_, err = s.ValidateScript(sneaky)
	if kindOf(t, err) != DirectoryTraversal {
		t.Errorf("kind = %v, want DirectoryTraversal", kindOf(t, err))
	}
	if !strings.Contains(err.Error(), "Directory traversal detected") {
		t.Errorf("error message = %q", err.Error())
	}
}

// A traversal sequence that still resolves inside the allowed root is fine.
func TestValidateScript_InternalDotDotAllowed(t *testing.T) {
	s, dir := newTestSandbox(t)
	writeScript(t, filepath.Join(dir, "start.bat"))
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "sub", "..", "start.bat")
	if _, err := s.ValidateScript(path); err != nil {
		t.Errorf("internal .. resolving inside the root should pass: %v", err)
	}
}

func TestValidateScript_SymlinkEscape(t *testing.T) {
	s, dir := newTestSandbox(t)
	outsideDir := t.TempDir()
	writeScript(t, filepath.Join(outsideDir, "escape.bat"))

	link := filepath.Join(dir, "link")
	if err := os.Symlink(outsideDir, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := s.ValidateScript(filepath.Join(link, "escape.bat"))
	if kindOf(t, err) != DirectoryTraversal {
		t.Errorf("kind = %v, want DirectoryTraversal for symlink escape", kindOf(t, err))
	}
}

// A symlink leaf inside an allowed directory must be resolved to its
// target before containment is checked.
func TestValidateScript_LeafSymlinkEscape(t *testing.T) {
	s, dir := newTestSandbox(t)
	outside := filepath.Join(t.TempDir(), "real.bat")
	writeScript(t, outside)

	link := filepath.Join(dir, "evil.bat")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := s.ValidateScript(link)
	if kindOf(t, err) != DirectoryTraversal {
		t.Errorf("kind = %v, want DirectoryTraversal for leaf symlink escape", kindOf(t, err))
	}
}

// A symlink leaf whose target stays inside an allowed directory is
// fine; the validated path is the resolved target.
func TestValidateScript_LeafSymlinkWithinAllowed(t *testing.T) {
	s, dir := newTestSandbox(t)
	target := filepath.Join(dir, "real.bat")
	writeScript(t, target)

	link := filepath.Join(dir, "alias.bat")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := s.ValidateScript(link)
	if err != nil {
		t.Fatalf("in-sandbox symlink rejected: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}
	if v.Path != resolved {
		t.Errorf("Path = %q, want resolved target %q", v.Path, resolved)
	}
}

// An allowed root that is not a raw string prefix boundary must not
// leak: /x/builds2 is not under /x/builds.
func TestValidatePath_SegmentPrefixOnly(t *testing.T) {
	base := t.TempDir()
	allowed := filepath.Join(base, "builds")
	sibling := filepath.Join(base, "builds2")
	for _, d := range []string{allowed, sibling} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	s := New([]string{allowed}, nil)

	if _, err := s.ValidatePath(filepath.Join(allowed, "x.txt")); err != nil {
		t.Errorf("path under allowed root rejected: %v", err)
	}

	_, err := s.ValidatePath(filepath.Join(sibling, "x.txt"))
	if err == nil {
		t.Fatal("sibling directory with shared string prefix should be rejected")
	}
	if kindOf(t, err) != UnauthorizedDirectory {
		t.Errorf("kind = %v, want UnauthorizedDirectory", kindOf(t, err))
	}
}

func TestValidatePath_NonexistentLeafAllowed(t *testing.T) {
	s, dir := newTestSandbox(t)

	// file_sync destinations may not exist yet.
	v, err := s.ValidatePath(filepath.Join(dir, "new-file.txt"))
	if err != nil {
		t.Fatalf("nonexistent leaf under allowed root should pass: %v", err)
	}
	if v.Path == "" {
		t.Error("canonical path should be set")
	}
}

func TestZeroSandboxRejectsEverything(t *testing.T) {
	var s Sandbox
	if _, err := s.ValidatePath("/anything"); err == nil {
		t.Error("zero-value sandbox should reject all paths")
	}
}

func TestExtensionMessage(t *testing.T) {
	tests := []struct {
		exts []string
		want string
	}{
		{[]string{".bat", ".cmd"}, "Only .bat and .cmd files are allowed"},
		{[]string{".sh"}, "Only .sh files are allowed"},
		{[]string{".a", ".b", ".c"}, "Only .a, .b and .c files are allowed"},
		{nil, "No script extensions are allowed"},
	}
	for _, tt := range tests {
		if got := extensionMessage(tt.exts); got != tt.want {
			t.Errorf("extensionMessage(%v) = %q, want %q", tt.exts, got, tt.want)
		}
	}
}
