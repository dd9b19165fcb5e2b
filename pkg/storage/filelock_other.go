//go:build !linux && !darwin

package storage

import (
	"os"
	"sync"
)

// locked holds the LOCK files held by this process on platforms without flock.
var locked sync.Map

func lockFile(f *os.File) error {
	if _, loaded := locked.LoadOrStore(f.Name(), struct{}{}); loaded {
		return os.ErrExist
	}
	return nil
}

func unlockFile(f *os.File) error {
	locked.Delete(f.Name())
	return nil
}
