package storage

import (
	"github.com/dr0pdb/icecanepaxos/internal/common"
	log "github.com/sirupsen/logrus"
)

// memtable is the in-memory store
// It is thread safe and can be accessed concurrently.
//
// Entries are keyed by internal keys, so every write for a user key is a new entry.
type memtable struct {
	skiplist   *skipList
	comparator *internalKeyComparator
}

// get returns the latest value of the user key of ikey visible at the sequence number of ikey.
//
// returns (nil, true, NotFoundError) if the visible entry is a deletion.
func (m *memtable) get(ikey internalKey) ([]byte, bool, error) {
	node := m.skiplist.getEqualOrGreater(ikey)
	if node != nil {
		found := internalKey(node.getKey())
		if m.comparator.userKeyComparator.Compare(found.userKey(), ikey.userKey()) == 0 {
			if found.kind() == internalKeyKindDelete {
				return nil, true, common.NewNotFoundError("storage::memtable: get; key is deleted")
			}
			return node.getValue(), false, nil
		}
	}

	log.WithFields(log.Fields{"key": ikey.userKey()}).Debug("storage::memtable: get; key not found")
	return nil, false, common.NewNotFoundError("storage::memtable: get; key not found")
}

// set inserts the value against the internal key.
func (m *memtable) set(ikey internalKey, value []byte) error {
	if !ikey.valid() {
		return common.NewCorruptionError("storage::memtable: set; invalid internal key")
	}

	m.skiplist.set(ikey, value)
	return nil
}

// delete records a tombstone for the user key at the given sequence number.
func (m *memtable) delete(userKey []byte, sequenceNumber uint64) error {
	return m.set(newInternalKey(userKey, internalKeyKindDelete, sequenceNumber), nil)
}

// len returns the number of internal entries in the memtable.
func (m *memtable) len() int {
	return m.skiplist.len()
}

func (m *memtable) newIterator() *skipListIterator {
	return m.skiplist.newSkipListIterator()
}

// newMemtable returns a new instance of the memtable
func newMemtable(skiplist *skipList, comparator *internalKeyComparator) *memtable {
	return &memtable{
		skiplist:   skiplist,
		comparator: comparator,
	}
}
