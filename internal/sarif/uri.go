package sarif

import (
	"path/filepath"
	"strings"
)

// SrcRootBaseID is the uriBaseId sarifsort uses for repo-relative URIs.
const SrcRootBaseID = "%SRCROOT%"

// FileURI turns a file system path into a file:/// URI with forward slashes.
// Directories should be passed with a trailing separator so the URI can be
// used as a base.
func FileURI(path string) string {
	p := strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
	return "file:///" + strings.TrimLeft(p, "/")
}

// RelativeURI converts path to a URI relative to base. Paths outside base, or
// that cannot be made relative, are returned with forward slashes only.
func RelativeURI(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return filepath.ToSlash(path)
	}
	return rel
}
