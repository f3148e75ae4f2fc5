package tool

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/buildgate/buildgate/internal/sandbox"
)

// FileSyncTool implements file_sync: copying files or directory trees
// between allowed directories, with optional content verification.
// Both endpoints must pass the sandbox; the copy itself is native Go,
// so no external process is involved.
type FileSyncTool struct {
	box *sandbox.Sandbox
}

// NewFileSyncTool creates the file_sync handler.
func NewFileSyncTool(box *sandbox.Sandbox) *FileSyncTool {
	return &FileSyncTool{box: box}
}

func (t *FileSyncTool) Definition() Definition {
	return Definition{
		Name:        "file_sync",
		Description: "Copy a file or directory tree between allowed directories.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"source":      {Type: "string", Description: "Source file or directory"},
				"destination": {Type: "string", Description: "Destination path"},
				"recursive":   {Type: "boolean", Description: "Copy directories recursively"},
				"verify":      {Type: "boolean", Description: "Verify copies by content hash"},
			},
			Required: []string{"source", "destination"},
		},
	}
}

type syncResult struct {
	FilesCopied int    `json:"filesCopied"`
	BytesCopied int64  `json:"bytesCopied"`
	Verified    bool   `json:"verified,omitempty"`
	ExitCode    int    `json:"exitCode"`
	Status      string `json:"status"`
}

func (t *FileSyncTool) Execute(_ context.Context, args map[string]any) (Result, error) {
	src, err := t.box.ValidatePath(stringArg(args, "source"))
	if err != nil {
		return Result{}, err
	}
	dst, err := t.box.ValidatePath(stringArg(args, "destination"))
	if err != nil {
		return Result{}, err
	}

	recursive := boolArg(args, "recursive", false)
	verify := boolArg(args, "verify", false)

	info, err := os.Stat(src.Path)
	if err != nil {
		return Result{}, fmt.Errorf("source: %w", err)
	}

	var res syncResult
	if info.IsDir() {
		if !recursive {
			return Result{}, fmt.Errorf("source %q is a directory; set recursive to copy it", src.Path)
		}
		res, err = copyTree(src.Path, dst.Path, verify)
	} else {
		res, err = copyOne(src.Path, dst.Path, verify)
	}
	if err != nil {
		return Result{}, err
	}

	res.Status = "completed"
	res.Verified = verify
	text, err := json.Marshal(res)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: string(text)}, nil
}

// copyOne copies a single file, creating parent directories as needed.
func copyOne(src, dst string, verify bool) (syncResult, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return syncResult{}, fmt.Errorf("create destination directory: %w", err)
	}
	n, err := copyFile(src, dst)
	if err != nil {
		return syncResult{}, err
	}
	if verify {
		if err := verifyCopy(src, dst); err != nil {
			return syncResult{}, err
		}
	}
	return syncResult{FilesCopied: 1, BytesCopied: n}, nil
}

// copyTree copies a directory tree rooted at src into dst.
func copyTree(src, dst string, verify bool) (syncResult, error) {
	var res syncResult
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		n, err := copyFile(path, target)
		if err != nil {
			return err
		}
		if verify {
			if err := verifyCopy(path, target); err != nil {
				return err
			}
		}
		res.FilesCopied++
		res.BytesCopied += n
		return nil
	})
	if err != nil {
		return syncResult{}, err
	}
	return res, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open destination: %w", err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close destination: %w", err)
	}
	return n, nil
}

// verifyCopy compares source and destination content hashes.
func verifyCopy(src, dst string) error {
	srcSum, err := fileSum(src)
	if err != nil {
		return err
	}
	dstSum, err := fileSum(dst)
	if err != nil {
		return err
	}
	if srcSum != dstSum {
		return fmt.Errorf("verification failed: %s and %s differ", src, dst)
	}
	return nil
}

func fileSum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for verification: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
