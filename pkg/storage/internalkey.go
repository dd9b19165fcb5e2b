package storage

import (
	"encoding/binary"
)

// internalKey is the key used for memtable and SST in the db.
//
// It consists of the user key along with a 8-byte suffix.
// The 8 byte suffix consists of:
//    - 1 byte segment defining the kind of operation: delete or set
//    - 7 bytes segment defining the sequence number.
type internalKey []byte

type internalKeyKind uint8

const (
	// This is part of the file format and stored on the disk. Don't change
	internalKeyKindDelete internalKeyKind = 0
	internalKeyKindSet    internalKeyKind = 1

	// internalKeyKindMax is used for seeking; it sorts first among entries with the same sequence number.
	internalKeyKindMax = internalKeyKindSet

	internalKeyTrailerLen = 8

	// maxSequenceNumber is the largest sequence number that fits in 7 bytes.
	maxSequenceNumber uint64 = (1 << 56) - 1
)

// newInternalKey generates an internalKey from a userKey, kind and a sequence number.
func newInternalKey(userKey []byte, kind internalKeyKind, sequenceNumber uint64) internalKey {
	if sequenceNumber > maxSequenceNumber {
		panic("storage::internalkey: newInternalKey; sequence number overflows 7 bytes")
	}

	ik := make([]byte, len(userKey)+internalKeyTrailerLen)
	copy(ik, userKey)
	binary.LittleEndian.PutUint64(ik[len(userKey):], sequenceNumber<<8|uint64(kind))
	return ik
}

// userKey extracts the user key from the internal key and returns a new slice.
func (ik internalKey) userKey() []byte {
	return ik[:len(ik)-internalKeyTrailerLen]
}

func (ik internalKey) trailer() uint64 {
	return binary.LittleEndian.Uint64(ik[len(ik)-internalKeyTrailerLen:])
}

// kind extracts the key kind from an internal key.
func (ik internalKey) kind() internalKeyKind {
	return internalKeyKind(ik.trailer() & 0xff)
}

// sequenceNumber returns the sequence number of the internal key.
func (ik internalKey) sequenceNumber() uint64 {
	return ik.trailer() >> 8
}

// valid returns if the internal key is valid structurally.
func (ik internalKey) valid() bool {
	if len(ik) < internalKeyTrailerLen {
		return false
	}
	k := ik.kind()
	return k == internalKeyKindDelete || k == internalKeyKindSet
}

// internalKeyComparator is the comparator which uses a user key comparator to compare internal key.
//
// keys are first compared for their user key according to the user key comparator.
// ties are broken by comparing sequence number (decreasing) and then by kind (decreasing).
type internalKeyComparator struct {
	userKeyComparator Comparator
}

var _ Comparator = (*internalKeyComparator)(nil)

func (d *internalKeyComparator) Compare(a, b []byte) int {
	ika, ikb := internalKey(a), internalKey(b)
	if r := d.userKeyComparator.Compare(ika.userKey(), ikb.userKey()); r != 0 {
		return r
	}

	ta, tb := ika.trailer(), ikb.trailer()
	if ta > tb {
		return -1
	} else if ta < tb {
		return 1
	}
	return 0
}

func (d *internalKeyComparator) Name() string {
	return "InternalKeyComparator"
}

// FindShortestSeparator shortens the user key part of start using the user key comparator.
// The shortened key is only taken if it is physically shorter and still orders after the original.
func (d *internalKeyComparator) FindShortestSeparator(start *[]byte, limit []byte) {
	userStart := internalKey(*start).userKey()
	userLimit := internalKey(limit).userKey()

	tmp := make([]byte, len(userStart))
	copy(tmp, userStart)
	d.userKeyComparator.FindShortestSeparator(&tmp, userLimit)

	if len(tmp) < len(userStart) && d.userKeyComparator.Compare(userStart, tmp) < 0 {
		*start = newInternalKey(tmp, internalKeyKindMax, maxSequenceNumber)
	}
}

// FindShortSuccessor shortens the user key part of key using the user key comparator.
func (d *internalKeyComparator) FindShortSuccessor(key *[]byte) {
	userKey := internalKey(*key).userKey()

	tmp := make([]byte, len(userKey))
	copy(tmp, userKey)
	d.userKeyComparator.FindShortSuccessor(&tmp)

	if len(tmp) < len(userKey) && d.userKeyComparator.Compare(userKey, tmp) < 0 {
		*key = newInternalKey(tmp, internalKeyKindMax, maxSequenceNumber)
	}
}

// newInternalKeyComparator creates a new instance of an internalKeyComparator
func newInternalKeyComparator(userKeyComparator Comparator) *internalKeyComparator {
	return &internalKeyComparator{
		userKeyComparator: userKeyComparator,
	}
}
