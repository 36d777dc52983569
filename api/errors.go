package api

import (
	"errors"
	"fmt"
)

// Error taxonomy for store and template operations. Filesystem failures are
// wrapped and propagated as-is; version-control failures on the mutation
// path are logged and swallowed by the repository manager instead of
// surfacing here.
var (
	// ErrNotFound reports an operation against a path or id that does not
	// resolve to a node.
	ErrNotFound = errors.New("node not found")

	// ErrInvalidArgument reports a caller error: empty names, wrong node
	// kinds, malformed selectors.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPathEscape reports a path argument that normalizes outside the
	// project root. It matches ErrInvalidArgument under errors.Is.
	ErrPathEscape = fmt.Errorf("%w: path escapes project root", ErrInvalidArgument)
)
