// Package store implements path-addressed CRUD over nodes: structured
// text files, opaque files with metadata sidecars, and directories,
// all inside one project tree. Every successful mutation is recorded
// through a Recorder; reads of a single path stay disk-authoritative
// while listing, search, and graph views are served from an in-memory
// path index.
package store

import (
	"fmt"
	"path"
	"strings"

	"github.com/weftworks/weft/api"
)

// CleanPath normalizes a caller-supplied path to the store's root-relative
// "/"-separated form; "" addresses the project root. Inputs whose
// normalization escapes the root are rejected with api.ErrPathEscape.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", api.ErrPathEscape, p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == "" {
		return "", nil
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", api.ErrPathEscape, p)
	}
	return clean, nil
}

// fsPath maps the store's root-relative form to the filesystem notation,
// where the root directory is ".".
func fsPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

// joinPath joins a parent path and a child name in root-relative form.
func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// dirOf returns the containing directory of p, "" at top level.
func dirOf(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}

// baseOf returns the last path segment.
func baseOf(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// parentOf returns the hard-link parent of p, nil for root-level paths
// and the root itself.
func parentOf(p string) *string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return api.String(p[:i])
	}
	return nil
}

// isHiddenPath reports whether any segment of p is dot-prefixed.
func isHiddenPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// isSidecarPath reports whether p names a metadata sidecar.
func isSidecarPath(p string) bool {
	return strings.HasSuffix(p, api.SidecarSuffix)
}

// isStructuredPath reports whether p names a front-matter file. Sidecars
// share the structured suffix but are companions, not nodes.
func isStructuredPath(p string) bool {
	return strings.HasSuffix(p, api.StructuredSuffix) && !isSidecarPath(p)
}

// hasTemplatesSegment reports whether any segment of p equals the
// reserved templates directory name.
func hasTemplatesSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == api.TemplatesDir {
			return true
		}
	}
	return false
}

// sidecarFor returns the sidecar path companion to p.
func sidecarFor(p string) string {
	return p + api.SidecarSuffix
}
