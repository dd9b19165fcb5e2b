package storage

import (
	"bytes"
)

// Comparator defines a total ordering over the []byte key space.
// It is used in Memtable as well as in SST.
type Comparator interface {
	// Compare returns -1, 0, 1 if a is less than, equal to or greater than b respectively.
	Compare(a, b []byte) int

	// Name returns the name of the comparator
	//
	// The data is stored in the sorted order determined by a comparator.
	// Hence opening a database with a different comparator than the one it was
	// created with will cause an error
	Name() string

	// FindShortestSeparator may change *start to a shorter key in [*start, limit).
	// Leaving *start untouched is always correct.
	FindShortestSeparator(start *[]byte, limit []byte)

	// FindShortSuccessor may change *key to a shorter key >= *key.
	// Leaving *key untouched is always correct.
	FindShortSuccessor(key *[]byte)
}

// DefaultComparator is the default comparator which uses byte wise ordering.
var DefaultComparator Comparator = defaultComparator{}

type defaultComparator struct{}

func (d defaultComparator) Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

func (d defaultComparator) Name() string {
	return "BytewiseComparator"
}

func (d defaultComparator) FindShortestSeparator(start *[]byte, limit []byte) {
	s := *start
	n := len(s)
	if n > len(limit) {
		n = len(limit)
	}

	i := 0
	for i < n && s[i] == limit[i] {
		i++
	}

	// one is a prefix of the other
	if i >= n {
		return
	}

	if c := s[i]; c < 0xff && c+1 < limit[i] {
		sep := make([]byte, i+1)
		copy(sep, s[:i+1])
		sep[i]++
		*start = sep
	}
}

func (d defaultComparator) FindShortSuccessor(key *[]byte) {
	k := *key
	for i, c := range k {
		if c != 0xff {
			succ := make([]byte, i+1)
			copy(succ, k[:i+1])
			succ[i]++
			*key = succ
			return
		}
	}

	// all 0xff, leave it as is.
}
