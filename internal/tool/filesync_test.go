package tool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildgate/buildgate/internal/sandbox"
)

func newSyncFixture(t *testing.T) (*FileSyncTool, string) {
	t.Helper()
	dir := t.TempDir()
	box := sandbox.New([]string{dir}, []string{".bat", ".cmd"})
	return NewFileSyncTool(box), dir
}

func TestFileSyncCopiesFile(t *testing.T) {
	tool, dir := newSyncFixture(t)
	src := filepath.Join(dir, "release", "app.dll")
	dst := filepath.Join(dir, "deploy", "app.dll")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("binary contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := tool.Execute(context.Background(), map[string]any{
		"source":      src,
		"destination": dst,
		"verify":      true,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("destination not written: %v", err)
	}
	if string(got) != "binary contents" {
		t.Errorf("destination content: got %q", got)
	}
	for _, sub := range []string{`"filesCopied":1`, `"verified":true`, `"exitCode":0`} {
		if !strings.Contains(res.Text, sub) {
			t.Errorf("result missing %q: %s", sub, res.Text)
		}
	}
}

func TestFileSyncCopiesTree(t *testing.T) {
	tool, dir := newSyncFixture(t)
	src := filepath.Join(dir, "build")
	for _, rel := range []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"} {
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dst := filepath.Join(dir, "mirror")
	res, err := tool.Execute(context.Background(), map[string]any{
		"source":      src,
		"destination": dst,
		"recursive":   true,
		"verify":      true,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(res.Text, `"filesCopied":3`) {
		t.Errorf("expected 3 files copied, got: %s", res.Text)
	}

	got, err := os.ReadFile(filepath.Join(dst, "sub", "deep", "c.txt"))
	if err != nil {
		t.Fatalf("nested file not copied: %v", err)
	}
	if string(got) != "sub/deep/c.txt" {
		t.Errorf("nested content: got %q", got)
	}
}

func TestFileSyncDirectoryNeedsRecursive(t *testing.T) {
	tool, dir := newSyncFixture(t)
	src := filepath.Join(dir, "build")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := tool.Execute(context.Background(), map[string]any{
		"source":      src,
		"destination": filepath.Join(dir, "mirror"),
	})
	if err == nil || !strings.Contains(err.Error(), "set recursive") {
		t.Errorf("expected recursive hint, got: %v", err)
	}
}

func TestFileSyncRejectsOutsideSource(t *testing.T) {
	tool, dir := newSyncFixture(t)
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := tool.Execute(context.Background(), map[string]any{
		"source":      outside,
		"destination": filepath.Join(dir, "copy.txt"),
	})
	if err == nil || !strings.Contains(err.Error(), "must be in one of the allowed directories") {
		t.Errorf("expected source denial, got: %v", err)
	}
}

func TestFileSyncRejectsOutsideDestination(t *testing.T) {
	tool, dir := newSyncFixture(t)
	src := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := tool.Execute(context.Background(), map[string]any{
		"source":      src,
		"destination": filepath.Join(t.TempDir(), "out.txt"),
	})
	if err == nil || !strings.Contains(err.Error(), "must be in one of the allowed directories") {
		t.Errorf("expected destination denial, got: %v", err)
	}
}

func TestFileSyncMissingSource(t *testing.T) {
	tool, dir := newSyncFixture(t)

	_, err := tool.Execute(context.Background(), map[string]any{
		"source":      filepath.Join(dir, "absent.txt"),
		"destination": filepath.Join(dir, "out.txt"),
	})
	if err == nil || !strings.Contains(err.Error(), "source") {
		t.Errorf("expected source stat error, got: %v", err)
	}
}
