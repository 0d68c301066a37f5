package rcache

import (
	"path/filepath"
	"strings"
)

// layout derives, from a cache root directory, the fixed set of paths the
// cache reads and writes: payloads live under "rcache/", the journal under
// "jrnl/rjournal.bin".
type layout struct {
	root        string
	payloadDir  string
	journalDir  string
	journalPath string
	lockPath    string
}

func newLayout(root string) layout {
	journalDir := filepath.Join(root, "jrnl")
	return layout{
		root:        root,
		payloadDir:  filepath.Join(root, "rcache"),
		journalDir:  journalDir,
		journalPath: filepath.Join(journalDir, "rjournal.bin"),
		lockPath:    filepath.Join(journalDir, ".rcache.lock"),
	}
}

func (l layout) payloadPath(key string) string {
	return filepath.Join(l.payloadDir, key)
}

// validateKey requires a non-empty string safe to use as a single filesystem
// path component. Rather than silently escaping unsafe input, it is rejected
// outright; see DESIGN.md.
func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if key == "." || key == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsRune(key, 0) {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, "/\\") {
		return ErrInvalidKey
	}
	return nil
}
