package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"dashpub/internal/services"
)

// LockFileName is created in the project folder while a run holds the lock.
const LockFileName = ".dashpub.lock"

// ErrLocked reports that another run holds the project lock.
var ErrLocked = errors.New("project is locked by another dashpub run")

// Lock is an advisory lock on a project folder.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes the project lock without blocking.
func AcquireLock(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockFileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, component, "lock", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return &Lock{lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.lock.Path()
}

// Release unlocks the project. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
