package storage

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sync"

	"github.com/dr0pdb/icecanepaxos/internal/common"
	log "github.com/sirupsen/logrus"
)

const (
	// file number 1 is reserved for the MANIFEST.
	initialNextFileNumber uint64 = 2
)

// Storage is the key-value store.
//
// Keys are ordered by the user key comparator the storage was created with.
// Every write is appended to a write ahead log before it is applied to the memtable,
// and the log is replayed when the db is opened again.
// All the methods can be called concurrently once Open has returned successfully.
type Storage struct {
	dirname string
	options *Options
	fs      fileSystem

	// mu serializes writers and guards seqNum, the log and isOpen.
	mu sync.Mutex

	ukComparator Comparator
	ikComparator *internalKeyComparator

	memtable *memtable

	// seqNum is the sequence number of the last applied write.
	seqNum uint64

	nextFileNumber uint64

	// dirLock is held from Open till Close.
	dirLock io.Closer

	logNumber uint64
	logFile   file
	logWriter *logRecordWriter

	isOpen bool
}

// Open opens the db in the storage directory.
//
// A new db records the name of its user key comparator in the MANIFEST.
// An existing db fails to open if it was created with a comparator of a different name.
// Open replays the write ahead log of an existing db and starts a new log holding its live entries.
func (s *Storage) Open() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.WithFields(log.Fields{"dirname": s.dirname, "comparator": s.ukComparator.Name()}).Info("storage::storage: Open; opening db")

	if s.isOpen {
		return nil
	}

	if s.options.CreateIfNotExist {
		if err = s.fs.mkdirAll(s.dirname, 0755); err != nil {
			log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: Open; error in creating db directory")
			return err
		}
	}

	dirLock, err := s.fs.lock(getDbFileName(s.dirname, lockFileType, 0))
	if err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: Open; error in locking the db directory")
		return err
	}
	defer func() {
		if err != nil {
			s.closeLog()
			dirLock.Close()
		}
	}()

	var ve *versionEdit
	ve, err = s.readManifest()
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if !s.options.CreateIfNotExist {
			return common.NewNotFoundError(fmt.Sprintf("storage::storage: Open; db %s does not exist", s.dirname))
		}

		ve = &versionEdit{
			comparatorName: s.ukComparator.Name(),
			nextFileNumber: initialNextFileNumber,
		}
		log.WithFields(log.Fields{"dirname": s.dirname}).Info("storage::storage: Open; creating a new db")
	} else {
		if s.options.ErrorIfExists {
			return fmt.Errorf("storage::storage: Open; db %s already exists", s.dirname)
		}

		if ve.comparatorName != s.ukComparator.Name() {
			log.WithFields(log.Fields{
				"existing":  ve.comparatorName,
				"requested": s.ukComparator.Name(),
			}).Error("storage::storage: Open; comparator mismatch")

			return common.NewComparatorMismatchError(fmt.Sprintf("storage::storage: Open; db was created with comparator %q, opened with %q", ve.comparatorName, s.ukComparator.Name()))
		}
	}

	if err = s.recover(ve); err != nil {
		return err
	}

	s.dirLock = dirLock
	s.isOpen = true
	return nil
}

// recover rebuilds the memtable from the log named in the version edit and rotates the log.
//
// The live entries are rewritten to a new log so deleted and shadowed entries don't
// carry over. The MANIFEST then points at the new log and the old one is removed.
func (s *Storage) recover(ve *versionEdit) error {
	s.memtable = newMemtable(newSkipList(s.options.skipListMaxLevel, s.ikComparator), s.ikComparator)
	s.seqNum = 0

	if ve.logNumber != 0 {
		if err := s.replayLog(ve.logNumber); err != nil {
			return err
		}
	}

	live := &WriteBatch{}
	itr := newKeyValueIterator(s.memtable.newIterator(), s.ukComparator, s.seqNum)
	for itr.SeekToFirst(); itr.Valid(); itr.Next() {
		live.Set(itr.Key(), itr.Value())
	}

	newLogNumber := ve.nextFileNumber
	f, err := s.fs.create(getDbFileName(s.dirname, logFileType, newLogNumber))
	if err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: recover; error in creating the log")
		return err
	}
	s.logNumber, s.logFile, s.logWriter = newLogNumber, f, newLogRecordWriter(f)

	s.memtable = newMemtable(newSkipList(s.options.skipListMaxLevel, s.ikComparator), s.ikComparator)
	s.seqNum = 0
	if !live.Empty() {
		if err = s.writeLocked(live); err != nil {
			return err
		}
	}
	if err = s.logFile.Sync(); err != nil {
		return err
	}

	oldLogNumber := ve.logNumber
	ve.logNumber = newLogNumber
	ve.nextFileNumber = newLogNumber + 1
	if err = s.writeManifest(ve); err != nil {
		return err
	}
	s.nextFileNumber = ve.nextFileNumber

	if oldLogNumber != 0 {
		if err = s.fs.remove(getDbFileName(s.dirname, logFileType, oldLogNumber)); err != nil && !os.IsNotExist(err) {
			log.WithFields(log.Fields{"error": err.Error(), "logNumber": oldLogNumber}).Warn("storage::storage: recover; error in removing the old log")
		}
	}

	log.WithFields(log.Fields{"logNumber": newLogNumber, "live": live.Count()}).Info("storage::storage: recover; recovered the db")
	return nil
}

// replayLog applies every batch in the log to the memtable.
func (s *Storage) replayLog(logNumber uint64) error {
	f, err := s.fs.open(getDbFileName(s.dirname, logFileType, logNumber))
	if err != nil {
		if os.IsNotExist(err) {
			log.WithFields(log.Fields{"logNumber": logNumber}).Warn("storage::storage: replayLog; log is missing")
			return nil
		}
		return err
	}
	defer f.Close()

	r := newLogRecordReader(f)
	for {
		record, err := r.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			log.WithFields(log.Fields{"error": err.Error(), "logNumber": logNumber}).Error("storage::storage: replayLog; error in reading the log")
			return err
		}

		if len(record) < batchHeaderSize {
			return common.NewCorruptionError("storage::storage: replayLog; log record is shorter than a batch header")
		}

		wb := &WriteBatch{data: record}
		if err = wb.applyTo(s.memtable); err != nil {
			return err
		}
		if last := wb.getSeqNum() + uint64(wb.getCount()) - 1; last > s.seqNum {
			s.seqNum = last
		}
	}
}

// closeLog flushes and closes the log if there is one.
func (s *Storage) closeLog() error {
	if s.logFile == nil {
		return nil
	}

	err := s.logWriter.flush()
	if cerr := s.logFile.Close(); err == nil {
		err = cerr
	}
	s.logFile, s.logWriter = nil, nil
	return err
}

// readManifest reads and decodes the MANIFEST.
// returns an error satisfying os.IsNotExist if there is no MANIFEST.
func (s *Storage) readManifest() (*versionEdit, error) {
	f, err := s.fs.open(getDbFileName(s.dirname, manifestFileType, 0))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: readManifest; error in reading the MANIFEST")
		return nil, err
	}

	ve := &versionEdit{}
	if err = ve.decode(data); err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: readManifest; error in decoding the MANIFEST")
		return nil, err
	}
	return ve, nil
}

// writeManifest writes the version edit to a temp file and renames it to MANIFEST.
func (s *Storage) writeManifest(ve *versionEdit) error {
	tmp := getDbFileName(s.dirname, tempFileType, ve.nextFileNumber)

	f, err := s.fs.create(tmp)
	if err != nil {
		return err
	}

	_, err = f.Write(ve.encode())
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = s.fs.rename(tmp, getDbFileName(s.dirname, manifestFileType, 0))
	}

	if err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: writeManifest; error in writing the MANIFEST")
		s.fs.remove(tmp)
	}
	return err
}

// Get returns the latest value for the key.
// returns NotFoundError if the key doesn't exist or is deleted.
func (s *Storage) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	seqNum := s.seqNum
	s.mu.Unlock()

	val, _, err := s.memtable.get(newInternalKey(key, internalKeyKindMax, seqNum))
	return val, err
}

// Set sets the value for the key.
func (s *Storage) Set(key, value []byte) error {
	wb := &WriteBatch{}
	wb.Set(key, value)
	return s.Write(wb)
}

// Delete deletes the key.
func (s *Storage) Delete(key []byte) error {
	wb := &WriteBatch{}
	wb.Delete(key)
	return s.Write(wb)
}

// Write applies the batch atomically.
//
// The batch is in the write ahead log before it is visible to readers.
func (s *Storage) Write(wb *WriteBatch) error {
	if wb.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen {
		return fmt.Errorf("storage::storage: Write; db is not open")
	}

	return s.writeLocked(wb)
}

// writeLocked logs and applies the batch. s.mu must be held.
func (s *Storage) writeLocked(wb *WriteBatch) error {
	wb.setSeqNum(s.seqNum + 1)

	w, err := s.logWriter.next()
	if err == nil {
		_, err = w.Write(wb.data)
	}
	if err == nil {
		err = s.logWriter.flush()
	}
	if err == nil && s.options.Sync {
		err = s.logFile.Sync()
	}
	if err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: Write; error in appending the batch to the log")
		return err
	}

	if err = wb.applyTo(s.memtable); err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("storage::storage: Write; error in applying the batch")
		return err
	}
	s.seqNum += uint64(wb.getCount())

	log.WithFields(log.Fields{"count": wb.getCount(), "seqNum": s.seqNum}).Debug("storage::storage: Write; applied the batch")
	return nil
}

// Scan returns an iterator positioned at the first key >= start.
// nil start positions it at the first key.
// The iterator only sees writes done before Scan is called.
func (s *Storage) Scan(start []byte) Iterator {
	s.mu.Lock()
	seqNum := s.seqNum
	s.mu.Unlock()

	itr := newKeyValueIterator(s.memtable.newIterator(), s.ukComparator, seqNum)
	if start == nil {
		itr.SeekToFirst()
	} else {
		itr.Seek(start)
	}
	return itr
}

// Comparator returns the user key comparator of the storage.
func (s *Storage) Comparator() Comparator {
	return s.ukComparator
}

// Close closes the db.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen {
		return nil
	}
	s.isOpen = false

	err := s.closeLog()
	if cerr := s.dirLock.Close(); err == nil {
		err = cerr
	}
	s.dirLock = nil

	log.WithFields(log.Fields{"dirname": s.dirname}).Info("storage::storage: Close; closed db")
	return err
}

// newStorage creates a new persistent storage according to the given parameters.
func newStorage(dirname string, userKeyComparator Comparator, options *Options) (*Storage, error) {
	if options == nil {
		options = &Options{}
	}
	fs := options.fs
	if fs == nil {
		fs = DefaultFileSystem
	}

	internalKeyComparator := newInternalKeyComparator(userKeyComparator)
	skipList := newSkipList(options.skipListMaxLevel, internalKeyComparator)

	return &Storage{
		dirname:      dirname,
		options:      options,
		fs:           fs,
		ukComparator: userKeyComparator,
		ikComparator: internalKeyComparator,
		memtable:     newMemtable(skipList, internalKeyComparator),
	}, nil
}

// NewStorageWithCustomComparator creates a new persistent storage in the given directory.
//
// Open locks the directory, so only one open db can use it at a time.
// Keys are ordered using the given custom comparator.
func NewStorageWithCustomComparator(dirname string, userKeyComparator Comparator, options *Options) (*Storage, error) {
	if userKeyComparator == nil {
		return nil, fmt.Errorf("storage::storage: NewStorageWithCustomComparator; nil comparator")
	}
	return newStorage(dirname, userKeyComparator, options)
}

// NewStorage creates a new persistent storage in the given directory.
//
// Open locks the directory, so only one open db can use it at a time.
func NewStorage(dirname string, options *Options) (*Storage, error) {
	return newStorage(dirname, DefaultComparator, options)
}
