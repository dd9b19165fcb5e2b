package storage

// Iterator interface
type Iterator interface {
	// Checks if the current position of the iterator is valid.
	Valid() bool

	// Move to the first entry of the source.
	// Call Valid() to ensure that the iterator is valid after the seek.
	SeekToFirst()

	// Seek the iterator to the first element whose key is >= target
	// Call Valid() to ensure that the iterator is valid after the seek.
	Seek(target []byte)

	// Moves to the next key-value pair in the source.
	// Call valid() to ensure that the iterator is valid.
	// REQUIRES: Current position of iterator is valid. Panic otherwise.
	Next()

	// Get the key of the current iterator position.
	// REQUIRES: Current position of iterator is valid. Panics otherwise.
	Key() []byte

	// Get the value of the current iterator position.
	// REQUIRES: Current position of iterator is valid. Panics otherwise.
	Value() []byte
}

// KeyValueIterator iterates over the live user keys of the db in comparator order.
//
// Older versions, entries newer than the iterator's sequence number and deleted keys are skipped.
type KeyValueIterator struct {
	itr    *skipListIterator
	cmp    Comparator
	seqNum uint64

	key, value []byte
	valid      bool
}

var _ Iterator = (*KeyValueIterator)(nil)

// Valid checks if the current position of the iterator is valid.
func (kvi *KeyValueIterator) Valid() bool {
	return kvi.valid
}

// SeekToFirst moves to the first entry of the source.
// Call Valid() to ensure that the iterator is valid after the seek.
func (kvi *KeyValueIterator) SeekToFirst() {
	kvi.itr.SeekToFirst()
	kvi.findNextUserEntry(nil)
}

// Seek the iterator to the first element whose key is >= target
// Call Valid() to ensure that the iterator is valid after the seek.
func (kvi *KeyValueIterator) Seek(target []byte) {
	kvi.itr.Seek(newInternalKey(target, internalKeyKindMax, kvi.seqNum))
	kvi.findNextUserEntry(nil)
}

// Next moves to the next key-value pair in the source.
// Call valid() to ensure that the iterator is valid.
// REQUIRES: Current position of iterator is valid. Panic otherwise.
func (kvi *KeyValueIterator) Next() {
	if !kvi.Valid() {
		panic("Next on an invalid iterator position.")
	}
	kvi.itr.Next()
	kvi.findNextUserEntry(kvi.key)
}

// Key returns the user key of the current iterator position.
// REQUIRES: Current position of iterator is valid. Panics otherwise.
func (kvi *KeyValueIterator) Key() []byte {
	if !kvi.Valid() {
		panic("Key on an invalid iterator position.")
	}
	return kvi.key
}

// Value gets the value of the current iterator position.
// REQUIRES: Current position of iterator is valid. Panics otherwise.
func (kvi *KeyValueIterator) Value() []byte {
	if !kvi.Valid() {
		panic("Value on an invalid iterator position.")
	}
	return kvi.value
}

// findNextUserEntry moves the underlying iterator to the next visible entry whose user key is > skip.
// nil skip denotes no lower bound.
func (kvi *KeyValueIterator) findNextUserEntry(skip []byte) {
	for ; kvi.itr.Valid(); kvi.itr.Next() {
		ikey := internalKey(kvi.itr.Key())
		if ikey.sequenceNumber() > kvi.seqNum {
			continue
		}

		ukey := ikey.userKey()
		if skip != nil && kvi.cmp.Compare(ukey, skip) <= 0 {
			continue
		}

		// the newest visible version is a deletion, hide all older versions.
		if ikey.kind() == internalKeyKindDelete {
			skip = ukey
			continue
		}

		kvi.key = ukey
		kvi.value = kvi.itr.Value()
		kvi.valid = true
		return
	}

	kvi.key, kvi.value = nil, nil
	kvi.valid = false
}

func newKeyValueIterator(itr *skipListIterator, cmp Comparator, seqNum uint64) *KeyValueIterator {
	return &KeyValueIterator{
		itr:    itr,
		cmp:    cmp,
		seqNum: seqNum,
	}
}
