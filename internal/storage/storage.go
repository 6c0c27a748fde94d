package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrCorruptReference marks a stored attachment reference that cannot be
// resolved to a path under the upload root. A file behind such a reference
// must be neither served nor deleted.
var ErrCorruptReference = errors.New("stored reference resolves outside the upload root")

var filenamePattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename turns a client-supplied filename into a safe display
// token: directory components are stripped, runs of characters outside
// [A-Za-z0-9._-] collapse into a single underscore, and leading/trailing
// separators and dots are trimmed. Never fails; an empty result becomes
// "file".
func SanitizeFilename(raw string) string {
	name := raw
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = filenamePattern.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// Paths maps between public attachment references and absolute disk paths
// under a single upload root. Constructed once from configuration; all
// methods are safe for concurrent use.
type Paths struct {
	root         string
	publicPrefix string
}

func NewPaths(uploadDir, publicPrefix string) (Paths, error) {
	root, err := filepath.Abs(uploadDir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve upload root: %w", err)
	}
	return Paths{
		root:         root,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

// Root returns the absolute upload root directory.
func (p Paths) Root() string {
	return p.root
}

// PublicURL builds the public reference persisted for a stored filename.
// New writes always produce this prefixed form.
func (p Paths) PublicURL(storedName string) string {
	return p.publicPrefix + "/" + storedName
}

// StoredPath is the absolute disk path a new upload with the given stored
// filename is written to.
func (p Paths) StoredPath(storedName string) string {
	return filepath.Join(p.root, storedName)
}

// DiskPath resolves a persisted reference to an absolute path under the
// upload root. Two historical reference shapes are accepted: the prefixed
// public form ("{prefix}/name") and the legacy bare relative form
// ("/uploads/name"). Anything that normalizes to a path outside the root,
// including traversal via "..", is reported as ErrCorruptReference.
func (p Paths) DiskPath(reference string) (string, error) {
	v := strings.TrimSpace(reference)
	if v == "" {
		return "", ErrCorruptReference
	}

	var rel string
	if strings.HasPrefix(v, p.publicPrefix+"/") {
		rel = strings.TrimPrefix(v, p.publicPrefix+"/")
	} else {
		rel = strings.TrimPrefix(v, "/")
		if base := filepath.Base(p.root); strings.HasPrefix(rel, base+"/") {
			rel = strings.TrimPrefix(rel, base+"/")
		}
	}

	abs := filepath.Clean(filepath.Join(p.root, filepath.FromSlash(rel)))
	if abs == p.root || !strings.HasPrefix(abs, p.root+string(filepath.Separator)) {
		return "", ErrCorruptReference
	}
	return abs, nil
}

// EnsureRoot creates the upload root if missing. Idempotent; called at
// startup and defensively before each write.
func (p Paths) EnsureRoot() error {
	return os.MkdirAll(p.root, 0o755)
}
