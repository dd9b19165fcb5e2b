//go:build linux || darwin

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes a non blocking exclusive lock on the whole file.
//
// flock locks belong to the open file, so a second open of the same LOCK file
// fails even from within the same process.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
