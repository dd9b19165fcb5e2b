package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalKeyRoundTrip(t *testing.T) {
	ik := newInternalKey([]byte("Key1"), internalKeyKindSet, 42)

	assert.True(t, ik.valid())
	assert.Equal(t, []byte("Key1"), ik.userKey())
	assert.Equal(t, internalKeyKindSet, ik.kind())
	assert.Equal(t, uint64(42), ik.sequenceNumber())

	assert.False(t, internalKey([]byte("short")).valid())
	assert.Panics(t, func() { newInternalKey(nil, internalKeyKindSet, maxSequenceNumber+1) })
}

func TestInternalKeyComparatorOrdering(t *testing.T) {
	cmp := newInternalKeyComparator(DefaultComparator)

	a1 := newInternalKey([]byte("a"), internalKeyKindSet, 1)
	a2 := newInternalKey([]byte("a"), internalKeyKindSet, 2)
	a2del := newInternalKey([]byte("a"), internalKeyKindDelete, 2)
	b1 := newInternalKey([]byte("b"), internalKeyKindSet, 1)

	assert.Equal(t, -1, cmp.Compare(a1, b1), "user key order comes first")
	assert.Equal(t, -1, cmp.Compare(a2, a1), "newer sequence numbers sort first")
	assert.Equal(t, -1, cmp.Compare(a2, a2del), "set sorts before delete for the same sequence number")
	assert.Equal(t, 0, cmp.Compare(a1, newInternalKey([]byte("a"), internalKeyKindSet, 1)))
}

func TestDefaultComparatorShortening(t *testing.T) {
	start := []byte("aaabbb")
	DefaultComparator.FindShortestSeparator(&start, []byte("aaaddd"))
	assert.Equal(t, "aaac", string(start))

	start = []byte("abc")
	DefaultComparator.FindShortestSeparator(&start, []byte("abcd"))
	assert.Equal(t, "abc", string(start), "prefix keys must not be shortened")

	key := []byte("dddddddd")
	DefaultComparator.FindShortSuccessor(&key)
	assert.Equal(t, "e", string(key))

	key = []byte{0xff, 0xff}
	DefaultComparator.FindShortSuccessor(&key)
	assert.Equal(t, []byte{0xff, 0xff}, key)
}

func TestInternalKeyComparatorShortening(t *testing.T) {
	cmp := newInternalKeyComparator(DefaultComparator)

	start := []byte(newInternalKey([]byte("aaabbb"), internalKeyKindSet, 5))
	limit := newInternalKey([]byte("aaaddd"), internalKeyKindSet, 3)
	cmp.FindShortestSeparator(&start, limit)

	assert.Equal(t, []byte("aaac"), internalKey(start).userKey())
	assert.Equal(t, -1, cmp.Compare(start, limit))

	// a user comparator that never shortens leaves internal keys alone.
	noop := newInternalKeyComparator(NewTestCustomComparator())
	orig := newInternalKey([]byte("100"), internalKeyKindSet, 5)
	start = append([]byte(nil), orig...)
	noop.FindShortestSeparator(&start, newInternalKey([]byte("200"), internalKeyKindSet, 1))
	assert.Equal(t, []byte(orig), start)

	key := append([]byte(nil), orig...)
	noop.FindShortSuccessor(&key)
	assert.Equal(t, []byte(orig), key)
}

func TestVersionEditRoundTrip(t *testing.T) {
	ve := &versionEdit{comparatorName: "PaxosComparator", nextFileNumber: 7, logNumber: 6}

	decoded := &versionEdit{}
	assert.Nil(t, decoded.decode(ve.encode()))
	assert.Equal(t, ve, decoded)

	assert.NotNil(t, decoded.decode([]byte{0x7f}), "unknown tags are corruption")
	assert.NotNil(t, decoded.decode([]byte{tagComparatorName, 0x05, 'a'}), "short strings are corruption")
}
