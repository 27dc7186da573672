package storage

import "github.com/gofrs/flock"

// fileLock wraps gofrs/flock, the Go analogue of the Rust `fs2` crate's
// lock_exclusive/unlock used by the original engine's load/commit path.
type fileLock struct {
	f *flock.Flock
}

func newFileLock(path string) *fileLock {
	return &fileLock{f: flock.New(path + ".lock")}
}

func (l *fileLock) lock() error {
	return l.f.Lock()
}

func (l *fileLock) unlock() {
	_ = l.f.Unlock()
}
