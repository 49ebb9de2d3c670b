package runlock

import (
	"errors"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy means another ingestion or dispatch run holds the lock. Serial
// assignment and the duplicate existence check are read-then-write against
// shared storage; serializing runs keeps them honest across processes.
var ErrBusy = errors.New("a batch run is already in progress")

type Lock struct {
	fl *flock.Flock
}

func New(dataDir string) *Lock {
	return &Lock{fl: flock.New(filepath.Join(dataDir, "engine.lock"))}
}

// Acquire is non-blocking: overlapping triggers get ErrBusy instead of
// queueing up behind each other.
func (l *Lock) Acquire() (release func(), err error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() { _ = l.fl.Unlock() }, nil
}
