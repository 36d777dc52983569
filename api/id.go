package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	dashRuns         = regexp.MustCompile(`-+`)
)

// NewNodeID mints a fresh node identifier. The format is
// node-<unix seconds>-<9 hex chars>; ids are persisted at creation and
// never regenerated afterwards.
func NewNodeID() string {
	u := uuid.New()
	return fmt.Sprintf("node-%d-%s", time.Now().Unix(), hex.EncodeToString(u[:])[:9])
}

// NewProjectID mints a registry project identifier.
func NewProjectID() string {
	return uuid.NewString()
}

// DerivedNodeID returns a stable fallback id for a node that predates the
// store and carries no persisted id. It is a pure function of the path, so
// repeated reads of the same file agree.
func DerivedNodeID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("node-0-%s", hex.EncodeToString(sum[:])[:9])
}

// SanitizeName replaces characters that are unsafe in file names with "-"
// and collapses runs of dashes.
func SanitizeName(name string) string {
	s := invalidNameChars.ReplaceAllString(name, "-")
	return dashRuns.ReplaceAllString(s, "-")
}

// Now returns the current UTC time in the metadata timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// FormatTime renders t in the metadata timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
