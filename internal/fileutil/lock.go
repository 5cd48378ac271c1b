package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
)

// ErrLocked indicates another process holds the lock file.
var ErrLocked = errors.New("lock is held by another process")

// Lock is an exclusive lock backed by a file created with O_EXCL.
type Lock struct {
	path string
}

// AcquireLock creates the lock file at path. If the file already exists and
// is younger than staleAfter, ErrLocked is returned. An older file is
// considered abandoned and replaced. A zero staleAfter never steals.
func AcquireLock(path string, staleAfter time.Duration, now time.Time) (*Lock, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) // #nosec G304
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + " " + now.UTC().Format(time.RFC3339) + "\n")
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("writing lock file: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("creating lock file: %w", err)
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				continue
			}
			return nil, statErr
		}
		if staleAfter <= 0 || now.Sub(info.ModTime()) < staleAfter {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("removing stale lock: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLocked, path)
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the lock file. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
