// Package sandbox decides whether caller-supplied filesystem paths may
// be used by path-gated tools. It enforces an extension allow-list and
// containment in a configured set of allowed directories, with full
// canonicalization before any prefix comparison so that traversal
// sequences and symlinks cannot disguise an escape.
package sandbox

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind classifies a validation rejection.
type Kind int

const (
	// InvalidExtension means the path's extension is not in the allow-list.
	InvalidExtension Kind = iota
	// UnauthorizedDirectory means the canonical path lies outside every
	// allowed directory.
	UnauthorizedDirectory
	// DirectoryTraversal means the path used relative segments or symlink
	// indirection that resolves outside every allowed directory.
	DirectoryTraversal
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case InvalidExtension:
		return "invalid_extension"
	case UnauthorizedDirectory:
		return "unauthorized_directory"
	case DirectoryTraversal:
		return "directory_traversal"
	default:
		return "unknown"
	}
}

// ValidationError is returned when a path fails sandbox validation.
// The message carries a stable fragment per kind so callers can
// distinguish rejection reasons without inspecting internals.
type ValidationError struct {
	Kind Kind
	Path string
	msg  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.msg
}

// Validated is a path that passed sandbox validation.
type Validated struct {
	// Path is the canonical absolute path.
	Path string
	// Dir is the working directory to use when launching the path,
	// which defaults to the path's own directory.
	Dir string
}

// Sandbox validates paths against an immutable allow-list built once at
// startup. The zero value rejects everything; use New.
type Sandbox struct {
	allowedDirs []string // canonical absolute directories
	allowedExts []string // lowercase extensions including the dot
	extMessage  string
}

// New builds a Sandbox from the configured allowed directories and
// script extensions. Directories are canonicalized up front; entries
// that cannot be resolved are kept in cleaned form so that allow-list
// configuration for not-yet-created directories still works.
func New(allowedDirs, allowedExts []string) *Sandbox {
	s := &Sandbox{
		allowedExts: make([]string, 0, len(allowedExts)),
		extMessage:  extensionMessage(allowedExts),
	}
	for _, ext := range allowedExts {
		s.allowedExts = append(s.allowedExts, strings.ToLower(ext))
	}
	for _, dir := range allowedDirs {
		clean := filepath.Clean(dir)
		if resolved, err := filepath.EvalSymlinks(clean); err == nil {
			clean = resolved
		}
		s.allowedDirs = append(s.allowedDirs, clean)
	}
	return s
}

// AllowedDirs returns a copy of the canonical allowed directory set.
func (s *Sandbox) AllowedDirs() []string {
	return append([]string(nil), s.allowedDirs...)
}

// ValidateScript validates a script path for launch: the extension must
// be in the allow-list and the canonical path must lie under an allowed
// directory. The checks run in that order so an extension mismatch is
// reported even for paths that would also fail containment.
func (s *Sandbox) ValidateScript(path string) (Validated, error) {
	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, e := range s.allowedExts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return Validated{}, &ValidationError{
			Kind: InvalidExtension,
			Path: path,
			msg:  fmt.Sprintf("%s: %s", path, s.extMessage),
		}
	}

	return s.ValidatePath(path)
}

// ValidatePath validates a path for any filesystem use (no extension
// check): it canonicalizes the path and requires containment in an
// allowed directory. Used for file_sync endpoints and explicit working
// directories.
func (s *Sandbox) ValidatePath(path string) (Validated, error) {
	canonical, symlinked, err := canonicalize(path)
	if err != nil {
		return Validated{}, err
	}

	for _, dir := range s.allowedDirs {
		if hasPathPrefix(canonical, dir) {
			return Validated{Path: canonical, Dir: filepath.Dir(canonical)}, nil
		}
	}

	// Outside every allowed root. A path that needed traversal segments
	// or symlink resolution to get there is an escape attempt; a plain
	// absolute path is merely unauthorized.
	if hasDotDotSegment(path) || symlinked {
		return Validated{}, &ValidationError{
			Kind: DirectoryTraversal,
			Path: path,
			msg:  fmt.Sprintf("%s: Directory traversal detected", path),
		}
	}
	return Validated{}, &ValidationError{
		Kind: UnauthorizedDirectory,
		Path: path,
		msg:  fmt.Sprintf("%s: must be in one of the allowed directories", path),
	}
}

// canonicalize resolves path to an absolute, cleaned form with all
// symlinks resolved, the leaf included, so a symlink inside an allowed
// directory cannot smuggle in a target outside it. A leaf that does
// not exist yet (file_sync destinations) falls back to resolving the
// parent directory only. Returns the canonical path and whether
// symlink resolution changed it.
func canonicalize(path string) (canonical string, symlinked bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve path %q: %w", path, err)
	}
	abs = filepath.Clean(abs)

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		if !pathsEqual(resolved, abs) {
			return resolved, true, nil
		}
		return abs, false, nil
	}

	dir := filepath.Dir(abs)
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// Parent does not exist or is unreadable; fall back to the
		// lexically cleaned form. Containment is still enforced on it.
		return abs, false, nil
	}
	if !pathsEqual(resolved, dir) {
		return filepath.Join(resolved, filepath.Base(abs)), true, nil
	}
	return abs, false, nil
}

// hasDotDotSegment reports whether the raw path contains a ".." path
// segment, checking both native and Windows-style separators so that
// adversarial input is caught regardless of platform notation.
func hasDotDotSegment(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether path lies under root, comparing whole
// path segments rather than raw string prefixes, so "/opt/builds2" is
// not treated as under "/opt/builds". Comparison is case-insensitive
// on Windows.
func hasPathPrefix(path, root string) bool {
	if len(path) < len(root) {
		return false
	}
	if !pathsEqual(path[:len(root)], root) {
		return false
	}
	rest := path[len(root):]
	return rest == "" || rest[0] == filepath.Separator ||
		strings.HasSuffix(root, string(filepath.Separator))
}

// pathsEqual compares two path strings, folding case on Windows where
// the filesystem is case-insensitive.
func pathsEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// extensionMessage builds the stable rejection message for the
// configured extension list, e.g. "Only .bat and .cmd files are allowed".
func extensionMessage(exts []string) string {
	switch len(exts) {
	case 0:
		return "No script extensions are allowed"
	case 1:
		return fmt.Sprintf("Only %s files are allowed", exts[0])
	default:
		head := strings.Join(exts[:len(exts)-1], ", ")
		return fmt.Sprintf("Only %s and %s files are allowed", head, exts[len(exts)-1])
	}
}
