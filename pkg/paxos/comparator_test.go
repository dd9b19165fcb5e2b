package paxos

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/dr0pdb/icecanepaxos/internal/common"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCodecs = []KeyCodec{TextCodec, NativeBinaryCodec, BigEndianCodec}

func TestCompareIsNumericNotLexicographic(t *testing.T) {
	cmp := NewComparator(TextCodec)

	assert.Equal(t, -1, cmp.Compare([]byte("9"), []byte("10")))
	assert.Equal(t, 1, cmp.Compare([]byte("10"), []byte("9")))
	assert.Equal(t, 0, cmp.Compare([]byte("10"), []byte("10")))
	assert.Equal(t, -1, cmp.Compare([]byte("99"), []byte("100")))
}

func TestCompareMalformedTextKeyIsZero(t *testing.T) {
	cmp := NewComparator(TextCodec)

	assert.Equal(t, 0, cmp.Compare([]byte("abc"), []byte("0")))
	assert.Equal(t, 0, cmp.Compare([]byte("abc"), []byte("xyz")), "distinct malformed keys collapse to the same id")
	assert.Equal(t, -1, cmp.Compare([]byte("abc"), []byte("1")))
}

func TestCompareBinaryRoundTrip(t *testing.T) {
	for _, codec := range []KeyCodec{NativeBinaryCodec, BigEndianCodec} {
		cmp := NewComparator(codec)

		assert.Equal(t, -1, cmp.Compare(codec.Encode(1), codec.Encode(2)), codec.Name())
		assert.Equal(t, 1, cmp.Compare(codec.Encode(2), codec.Encode(1)), codec.Name())
		assert.Equal(t, 0, cmp.Compare(codec.Encode(2), codec.Encode(2)), codec.Name())
		assert.Equal(t, -1, cmp.Compare(codec.Encode(255), codec.Encode(256)), codec.Name())
	}
}

func TestCompareTotalOrder(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for _, codec := range allCodecs {
		cmp := NewComparator(codec)

		ids := make([]uint64, 64)
		for i := range ids {
			// small ids collide often, which exercises the equal branch.
			if i%2 == 0 {
				ids[i] = uint64(rnd.Intn(8))
			} else {
				ids[i] = rnd.Uint64()
			}
		}

		for _, a := range ids {
			ka := codec.Encode(a)
			assert.Equal(t, 0, cmp.Compare(ka, ka), "reflexivity")

			for _, b := range ids {
				kb := codec.Encode(b)
				ab, ba := cmp.Compare(ka, kb), cmp.Compare(kb, ka)
				assert.Equal(t, -ab, ba, fmt.Sprintf("antisymmetry for %d, %d with %s", a, b, codec.Name()))

				for _, c := range ids[:16] {
					kc := codec.Encode(c)
					if ab <= 0 && cmp.Compare(kb, kc) <= 0 {
						assert.True(t, cmp.Compare(ka, kc) <= 0, fmt.Sprintf("transitivity for %d, %d, %d with %s", a, b, c, codec.Name()))
					}
				}
			}
		}
	}
}

func TestSortingKeysMatchesNumericOrder(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))

	for _, codec := range allCodecs {
		cmp := NewComparator(codec)

		ids := make([]uint64, 200)
		keys := make([][]byte, len(ids))
		for i := range ids {
			ids[i] = rnd.Uint64() >> uint(rnd.Intn(64))
			keys[i] = codec.Encode(ids[i])
		}

		sort.Slice(keys, func(i, j int) bool { return cmp.Compare(keys[i], keys[j]) < 0 })
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for i := range ids {
			id, err := cmp.Decode(keys[i])
			require.Nil(t, err)
			assert.Equal(t, ids[i], id, fmt.Sprintf("position %d with %s", i, codec.Name()))
		}
	}
}

func TestCompareWrongLengthIsFatal(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	cmp := NewComparator(NativeBinaryCodec)
	valid := NativeBinaryCodec.Encode(1)

	for _, n := range []int{7, 9} {
		hook.Reset()

		var recovered interface{}
		func() {
			defer func() { recovered = recover() }()
			cmp.Compare(make([]byte, n), valid)
			t.Errorf("Compare returned for a %d byte key", n)
		}()

		kle, ok := recovered.(*common.KeyLengthError)
		require.True(t, ok, fmt.Sprintf("expected a *KeyLengthError panic, got %v", recovered))
		assert.Equal(t, []int{n, 8}, kle.Lengths)

		entry := hook.LastEntry()
		require.NotNil(t, entry, "the violation should be logged before panicking")
		assert.Equal(t, log.ErrorLevel, entry.Level)
		assert.Equal(t, n, entry.Data["lenA"])
		assert.Equal(t, 8, entry.Data["lenB"])
	}
}

func TestCompareKeysReturnsError(t *testing.T) {
	cmp := NewComparator(BigEndianCodec)

	_, err := cmp.CompareKeys(BigEndianCodec.Encode(1), []byte("1"))
	assert.IsType(t, &common.KeyLengthError{}, err)

	r, err := cmp.CompareKeys(BigEndianCodec.Encode(3), BigEndianCodec.Encode(1))
	assert.Nil(t, err)
	assert.Equal(t, 1, r)

	// text keys never fail.
	r, err = NewComparator(TextCodec).CompareKeys([]byte("1234567"), []byte("123456789"))
	assert.Nil(t, err)
	assert.Equal(t, -1, r)
}

func TestShorteningHintsAreNoOps(t *testing.T) {
	for _, codec := range allCodecs {
		cmp := NewComparator(codec)

		start := codec.Encode(1000)
		orig := append([]byte(nil), start...)
		cmp.FindShortestSeparator(&start, codec.Encode(5000))
		assert.Equal(t, orig, start)

		key := codec.Encode(1000)
		cmp.FindShortSuccessor(&key)
		assert.Equal(t, orig, key)
	}
}

func TestNamesDifferPerCodec(t *testing.T) {
	assert.Equal(t, "PaxosComparator", NewComparator(TextCodec).Name())
	assert.Equal(t, "PaxosComparator.u64be", NewComparator(BigEndianCodec).Name())
	assert.Contains(t, []string{"PaxosComparator.u64le", "PaxosComparator.u64be"}, NewComparator(NativeBinaryCodec).Name())

	assert.NotEqual(t, NewComparator(TextCodec).Name(), NewComparator(NativeBinaryCodec).Name())
	assert.Equal(t, NewComparator(TextCodec).Name(), NewComparator(TextCodec).Name())
}
