package rcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"
)

// diskFile describes one payload file, as returned by store.list.
type diskFile struct {
	key   string
	size  int64
	mtime time.Time
}

// store is a thin wrapper over the payload folder: one file per key, file
// name equal to the key. It takes no lock of its own — every call happens
// under the facade's single global lock.
type store struct {
	fs  FileSystem
	lay layout
}

func newStore(fs FileSystem, lay layout) *store {
	return &store{fs: fs, lay: lay}
}

func (s *store) read(key string) ([]byte, bool, error) {
	data, err := s.fs.ReadFile(s.lay.payloadPath(key))
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *store) write(key string, data []byte) error {
	return s.fs.WriteFile(s.lay.payloadPath(key), data, 0o644)
}

// delete is best-effort: a missing file is not an error.
func (s *store) delete(key string) error {
	if err := s.fs.Remove(s.lay.payloadPath(key)); err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

func (s *store) setMtime(key string, t time.Time) error {
	return s.fs.Chtimes(s.lay.payloadPath(key), t, t)
}

// list returns the direct (non-recursive) children of the payload folder.
func (s *store) list() ([]diskFile, error) {
	entries, err := s.fs.ReadDir(s.lay.payloadDir)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	files := make([]diskFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("rcache: stat %s: %w", e.Name(), err)
		}
		files = append(files, diskFile{key: e.Name(), size: info.Size(), mtime: info.ModTime()})
	}
	return files, nil
}

// listByAge is list() sorted oldest-mtime-first, the order the trimmer walks.
func (s *store) listByAge() ([]diskFile, error) {
	files, err := s.list()
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	return files, nil
}

func (s *store) totalSize() (int64, error) {
	files, err := s.list()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist)
}
