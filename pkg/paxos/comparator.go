package paxos

import (
	"fmt"

	"github.com/dr0pdb/icecanepaxos/internal/common"
	"github.com/dr0pdb/icecanepaxos/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// ComparatorBaseName is the name of the comparator for text keys.
// Binary codecs append their codec name to it, so a db can't be reopened with a different key encoding.
const ComparatorBaseName = "PaxosComparator"

// Comparator orders keys by the instance ids they decode to instead of by their bytes.
//
// It is immutable and safe for concurrent use.
type Comparator struct {
	codec KeyCodec
	name  string
}

var _ storage.Comparator = (*Comparator)(nil)

// Compare returns -1, 0, 1 if the instance id of a is less than, equal to or greater than that of b.
//
// A key the codec can't decode is a broken db invariant: it is logged and Compare panics with a
// *common.KeyLengthError. Use CompareKeys to get the error instead.
func (c *Comparator) Compare(a, b []byte) int {
	r, err := c.CompareKeys(a, b)
	if err != nil {
		log.WithFields(log.Fields{
			"codec": c.codec.Name(),
			"lenA":  len(a),
			"lenB":  len(b),
		}).Error("paxos::comparator: Compare; invalid key length")

		panic(err)
	}
	return r
}

// CompareKeys is Compare with the key length violation returned as an error.
func (c *Comparator) CompareKeys(a, b []byte) (int, error) {
	ia, errA := c.codec.Decode(a)
	ib, errB := c.codec.Decode(b)
	if errA != nil || errB != nil {
		return 0, common.NewKeyLengthError(fmt.Sprintf("paxos::comparator: CompareKeys; %s keys must be 8 bytes", c.codec.Name()), len(a), len(b))
	}

	if ia == ib {
		return 0, nil
	} else if ia < ib {
		return -1, nil
	}
	return 1, nil
}

// Name returns the name of the comparator. It changes with the codec.
func (c *Comparator) Name() string {
	return c.name
}

// FindShortestSeparator leaves start untouched.
// Dropping bytes of a key changes the instance id it decodes to.
func (c *Comparator) FindShortestSeparator(start *[]byte, limit []byte) {}

// FindShortSuccessor leaves key untouched.
func (c *Comparator) FindShortSuccessor(key *[]byte) {}

// Decode returns the instance id of the key.
func (c *Comparator) Decode(key []byte) (uint64, error) {
	return c.codec.Decode(key)
}

// Encode returns the key of the instance id.
func (c *Comparator) Encode(id uint64) []byte {
	return c.codec.Encode(id)
}

// Codec returns the key codec of the comparator.
func (c *Comparator) Codec() KeyCodec {
	return c.codec
}

// NewComparator returns a comparator for keys encoded with codec. A nil codec means TextCodec.
func NewComparator(codec KeyCodec) *Comparator {
	codec = codecOrDefault(codec)
	return &Comparator{
		codec: codec,
		name:  comparatorName(codec),
	}
}

func comparatorName(codec KeyCodec) string {
	if codec.Name() == textCodecName {
		return ComparatorBaseName
	}
	return ComparatorBaseName + "." + codec.Name()
}
