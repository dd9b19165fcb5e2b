package storage

import (
	"io"
	"os"

	"github.com/dr0pdb/icecanepaxos/internal/common"
	log "github.com/sirupsen/logrus"
)

// file is a db file: the MANIFEST, its temp file or a write ahead log.
//
// It is usually an *os.File.
type file interface {
	io.Reader
	io.Writer
	io.Closer

	// Sync commits the contents of the file to stable storage.
	Sync() error
}

// fileSystem is the set of file operations the storage needs.
//
// The db only ever creates, reads, renames and removes whole files. It never seeks.
type fileSystem interface {
	// create creates or truncates the file.
	create(name string) (file, error)

	// open opens the file for reading.
	// the error satisfies os.IsNotExist if the file is missing.
	open(name string) (file, error)

	remove(name string) error

	// rename atomically replaces newname with oldname.
	rename(oldname, newname string) error

	// mkdirAll creates the dir with all the parents. It is a no-op if the dir exists.
	mkdirAll(dir string, perm os.FileMode) error

	// lock takes an exclusive lock on the named file, creating it if needed.
	//
	// returns DbLockedError if the lock is held by another open db.
	// The lock is released when the returned closer is closed.
	lock(name string) (io.Closer, error)
}

// DefaultFileSystem is the fileSystem of the operating system.
var DefaultFileSystem fileSystem = defaultFileSystem{}

type defaultFileSystem struct{}

func (defaultFileSystem) create(name string) (file, error) {
	return os.Create(name)
}

func (defaultFileSystem) open(name string) (file, error) {
	return os.Open(name)
}

func (defaultFileSystem) remove(name string) error {
	return os.Remove(name)
}

func (defaultFileSystem) rename(oldname, newname string) error {
	return os.Rename(oldname, newname)
}

func (defaultFileSystem) mkdirAll(dir string, perm os.FileMode) error {
	return os.MkdirAll(dir, perm)
}

func (defaultFileSystem) lock(name string) (io.Closer, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	if err = lockFile(f); err != nil {
		f.Close()
		log.WithFields(log.Fields{"name": name, "error": err.Error()}).Error("storage::file: lock; db directory is locked")
		return nil, common.NewDbLockedError("storage::file: lock; " + name + " is held by another open db")
	}
	return &fileLock{f}, nil
}

// fileLock is a held LOCK file.
type fileLock struct {
	f *os.File
}

// Close releases the lock and closes the LOCK file.
func (fl *fileLock) Close() error {
	if err := unlockFile(fl.f); err != nil {
		fl.f.Close()
		return err
	}
	return fl.f.Close()
}
