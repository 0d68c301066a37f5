package rcache

import (
	"io/fs"
	"os"
	"time"
)

// AppendFile is the handle returned by FileSystem.OpenAppend. Sync must make
// prior Writes durable; the production implementation opens the journal
// with os.O_CREATE|os.O_WRONLY|os.O_APPEND and relies on the OS to make each
// append visible to a subsequent read after Sync.
type AppendFile interface {
	Write(p []byte) (int, error)
	Sync() error
	Close() error
}

// FileSystem is the capability object the cache uses for all disk access. It
// exists so the Journal, Payload Store, and recovery logic can be exercised
// against an in-memory fake (see package rcachefs) instead of the real
// filesystem.
type FileSystem interface {
	MkdirAll(path string, perm fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Chtimes(path string, atime, mtime time.Time) error
	OpenAppend(path string) (AppendFile, error)
}

// realFS is implemented only by FileSystem backends that correspond to an
// actual directory on disk. It gates the advisory flock in locking.go: taking
// an OS-level file lock against a path an in-memory fake made up would do
// nothing useful and would leak real lock files from test runs.
type realFS interface {
	realRoot() bool
}

// osFS is the production FileSystem, a thin wrapper over os and io/fs.
type osFS struct{}

func (osFS) realRoot() bool { return true }

func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (osFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (osFS) Remove(path string) error { return os.Remove(path) }

func (osFS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (osFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (osFS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }

func (osFS) Chtimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func (osFS) OpenAppend(path string) (AppendFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return osAppendFile{f}, nil
}

type osAppendFile struct{ f *os.File }

func (a osAppendFile) Write(p []byte) (int, error) { return a.f.Write(p) }
func (a osAppendFile) Sync() error                 { return a.f.Sync() }
func (a osAppendFile) Close() error                { return a.f.Close() }
