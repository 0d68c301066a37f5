// Package rcachefs provides an in-memory FileSystem fake for exercising
// rcache's journal, payload store, and recovery logic without touching a
// real disk.
package rcachefs

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coredao-org/rcache/rcache"
)

var _ rcache.FileSystem = (*Mem)(nil)

type memFile struct {
	data  []byte
	mtime time.Time
	isDir bool
}

// Mem is an in-memory rcache.FileSystem. It does not implement any
// capability interface beyond the plain filesystem contract, so the
// production advisory directory lock is automatically a no-op against it.
type Mem struct {
	mu    sync.Mutex
	files map[string]*memFile
	now   func() time.Time
}

// New returns an empty Mem filesystem. now defaults to time.Now if nil.
func New(now func() time.Time) *Mem {
	if now == nil {
		now = time.Now
	}
	return &Mem{files: make(map[string]*memFile), now: now}
}

func clean(path string) string { return filepath.Clean(path) }

func (m *Mem) MkdirAll(path string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	for p := path; p != "." && p != "/" && p != ""; p = filepath.Dir(p) {
		if f, ok := m.files[p]; ok {
			if !f.isDir {
				return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
			}
			continue
		}
		m.files[p] = &memFile{isDir: true, mtime: m.now()}
	}
	return nil
}

func (m *Mem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[clean(path)]
	if !ok || f.isDir {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

func (m *Mem) WriteFile(path string, data []byte, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[clean(path)] = &memFile{data: buf, mtime: m.now()}
	return nil
}

func (m *Mem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	if _, ok := m.files[path]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(m.files, path)
	return nil
}

func (m *Mem) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := clean(path)
	for p := range m.files {
		if p == prefix || strings.HasPrefix(p, prefix+string(filepath.Separator)) {
			delete(m.files, p)
		}
	}
	return nil
}

func (m *Mem) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	f, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return memFileInfo{name: filepath.Base(path), f: f}, nil
}

func (m *Mem) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	if f, ok := m.files[path]; !ok || !f.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}
	var entries []fs.DirEntry
	for p, f := range m.files {
		if filepath.Dir(p) == path && p != path {
			entries = append(entries, memDirEntry{name: filepath.Base(p), f: f})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *Mem) Chtimes(path string, _, mtime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[clean(path)]
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: path, Err: fs.ErrNotExist}
	}
	f.mtime = mtime
	return nil
}

type memAppender struct {
	m    *Mem
	path string
}

func (m *Mem) OpenAppend(path string) (rcache.AppendFile, error) {
	path = clean(path)
	m.mu.Lock()
	if _, ok := m.files[path]; !ok {
		m.files[path] = &memFile{mtime: m.now()}
	}
	m.mu.Unlock()
	return &memAppender{m: m, path: path}, nil
}

func (a *memAppender) Write(p []byte) (int, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	f := a.m.files[a.path]
	f.data = append(f.data, p...)
	f.mtime = a.m.now()
	return len(p), nil
}

func (a *memAppender) Sync() error  { return nil }
func (a *memAppender) Close() error { return nil }

type memFileInfo struct {
	name string
	f    *memFile
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return int64(len(i.f.data)) }
func (i memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (i memFileInfo) ModTime() time.Time { return i.f.mtime }
func (i memFileInfo) IsDir() bool        { return i.f.isDir }
func (i memFileInfo) Sys() interface{}   { return nil }

type memDirEntry struct {
	name string
	f    *memFile
}

func (e memDirEntry) Name() string { return e.name }
func (e memDirEntry) IsDir() bool  { return e.f.isDir }
func (e memDirEntry) Type() fs.FileMode {
	if e.f.isDir {
		return fs.ModeDir
	}
	return 0
}
func (e memDirEntry) Info() (fs.FileInfo, error) { return memFileInfo{name: e.name, f: e.f}, nil }
