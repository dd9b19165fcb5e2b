package storage

// Options defines all of the configuration options available with the storage layer.
type Options struct {
	// CreateIfNotExist creates the db directory and MANIFEST if they are missing.
	CreateIfNotExist bool

	// ErrorIfExists makes Open fail if the db already exists.
	ErrorIfExists bool

	// Sync syncs the write ahead log before a write returns.
	// Without it a write survives a process crash but not a machine crash.
	Sync bool

	// The instance of fileSystem interface that is going to be used to store data.
	// nil means DefaultFileSystem which uses the default OS file system.
	fs fileSystem

	// maxLevel of the memtable skiplist. 0 for the default.
	skipListMaxLevel int32
}
