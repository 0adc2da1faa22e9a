package paths

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the per-project state directory.
	StateDirName = ".sarifsort"
	// BaselineDBName is the SQLite file holding stored baselines.
	BaselineDBName = "baselines.db"
	// LogsSubdir holds log files when logging to a file is enabled.
	LogsSubdir = "logs"
)

// StateDir returns <root>/.sarifsort.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// EnsureStateDir creates the state directory if needed and returns it.
func EnsureStateDir(root string) (string, error) {
	dir := StateDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// BaselineDBPath returns the baseline database path. A configured path wins;
// relative configured paths are taken from root.
func BaselineDBPath(root, configured string) string {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured
		}
		return filepath.Join(root, configured)
	}
	return filepath.Join(StateDir(root), BaselineDBName)
}

// LogPath resolves a configured log file the same way as BaselineDBPath,
// defaulting to <root>/.sarifsort/logs/sarifsort.log.
func LogPath(root, configured string) string {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured
		}
		return filepath.Join(root, configured)
	}
	return filepath.Join(StateDir(root), LogsSubdir, "sarifsort.log")
}

// CanonicalizePath converts an absolute path to a root-relative path with
// forward slashes. Symlinks are resolved when the path exists.
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = root
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRepo checks if a path is within root
func IsWithinRepo(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath converts OS separators to forward slashes.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// FromFileURI returns the local path named by a file: URI, or "" when uri
// is not a file URI.
func FromFileURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	p := u.Path
	// file:///C:/x parses to /C:/x
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
