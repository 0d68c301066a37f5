package rcache

import (
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

// testFile/testFS is a minimal in-memory FileSystem fake used only by this
// package's own white-box tests. It deliberately does not implement realFS,
// matching how an in-memory backend behaves in production use.
type testFile struct {
	data  []byte
	mtime time.Time
	isDir bool
}

type testFS struct {
	files map[string]*testFile
	clock *testClock
}

func newTestFS(clock *testClock) *testFS {
	return &testFS{files: make(map[string]*testFile), clock: clock}
}

func (t *testFS) MkdirAll(path string, _ fs.FileMode) error {
	for p := path; p != "." && p != "/" && p != ""; p = filepath.Dir(p) {
		if _, ok := t.files[p]; !ok {
			t.files[p] = &testFile{isDir: true, mtime: t.clock.Now()}
		}
	}
	return nil
}

func (t *testFS) ReadFile(path string) ([]byte, error) {
	f, ok := t.files[path]
	if !ok || f.isDir {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

func (t *testFS) WriteFile(path string, data []byte, _ fs.FileMode) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	t.files[path] = &testFile{data: buf, mtime: t.clock.Now()}
	return nil
}

func (t *testFS) Remove(path string) error {
	if _, ok := t.files[path]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(t.files, path)
	return nil
}

func (t *testFS) RemoveAll(path string) error {
	for p := range t.files {
		if p == path || (len(p) > len(path) && p[:len(path)+1] == path+string(filepath.Separator)) {
			delete(t.files, p)
		}
	}
	return nil
}

type testFileInfo struct {
	name string
	f    *testFile
}

func (i testFileInfo) Name() string       { return i.name }
func (i testFileInfo) Size() int64        { return int64(len(i.f.data)) }
func (i testFileInfo) Mode() fs.FileMode  { return 0o644 }
func (i testFileInfo) ModTime() time.Time { return i.f.mtime }
func (i testFileInfo) IsDir() bool        { return i.f.isDir }
func (i testFileInfo) Sys() interface{}   { return nil }

func (t *testFS) Stat(path string) (fs.FileInfo, error) {
	f, ok := t.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return testFileInfo{name: filepath.Base(path), f: f}, nil
}

type testDirEntry struct {
	name string
	f    *testFile
}

func (e testDirEntry) Name() string { return e.name }
func (e testDirEntry) IsDir() bool  { return e.f.isDir }
func (e testDirEntry) Type() fs.FileMode {
	if e.f.isDir {
		return fs.ModeDir
	}
	return 0
}
func (e testDirEntry) Info() (fs.FileInfo, error) { return testFileInfo{name: e.name, f: e.f}, nil }

func (t *testFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if f, ok := t.files[path]; !ok || !f.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}
	var entries []fs.DirEntry
	for p, f := range t.files {
		if filepath.Dir(p) == path && p != path {
			entries = append(entries, testDirEntry{name: filepath.Base(p), f: f})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (t *testFS) Chtimes(path string, _, mtime time.Time) error {
	f, ok := t.files[path]
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: path, Err: fs.ErrNotExist}
	}
	f.mtime = mtime
	return nil
}

type testAppendFile struct {
	fsys *testFS
	path string
}

func (t *testFS) OpenAppend(path string) (AppendFile, error) {
	if _, ok := t.files[path]; !ok {
		t.files[path] = &testFile{mtime: t.clock.Now()}
	}
	return &testAppendFile{fsys: t, path: path}, nil
}

func (a *testAppendFile) Write(p []byte) (int, error) {
	f := a.fsys.files[a.path]
	f.data = append(f.data, p...)
	f.mtime = a.fsys.clock.Now()
	return len(p), nil
}

func (a *testAppendFile) Sync() error  { return nil }
func (a *testAppendFile) Close() error { return nil }

// testClock is a manually advanced Clock for deterministic recency tests.
type testClock struct{ t time.Time }

func newTestClock() *testClock { return &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)} }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }
