package rcache

import "github.com/gofrs/flock"

// dirLock is a best-effort, advisory guard against two processes opening the
// same cache root concurrently. Cross-process sharing is still unsupported;
// this only turns the most common accident into an explicit ErrLocked
// instead of silent corruption.
type dirLock struct {
	fl *flock.Flock
}

func acquireDirLock(path string) (*dirLock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return &dirLock{fl: fl}, nil
}

func (d *dirLock) release() error {
	if d == nil || d.fl == nil {
		return nil
	}
	return d.fl.Unlock()
}
