package paxos

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/dr0pdb/icecanepaxos/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestTextCodecDecode(t *testing.T) {
	cases := []struct {
		key      string
		expected uint64
	}{
		{"0", 0},
		{"9", 9},
		{"10", 10},
		{"18446744073709551615", 18446744073709551615},
		{"  42", 42},
		{"\t\n+7", 7},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{"-1", 18446744073709551615},
		{" 3 4", 3},
		{"18446744073709551616", 0},
		// ids past 32 bits don't truncate.
		{"2147483648", 2147483648},
		{"4294967296", 4294967296},
	}

	for _, c := range cases {
		id, err := TextCodec.Decode([]byte(c.key))
		assert.Nil(t, err)
		assert.Equal(t, c.expected, id, fmt.Sprintf("unexpected id for key %q", c.key))
	}
}

func TestTextCodecEncode(t *testing.T) {
	assert.Equal(t, []byte("0"), TextCodec.Encode(0))
	assert.Equal(t, []byte("4294967296"), TextCodec.Encode(4294967296))

	id, err := TextCodec.Decode(TextCodec.Encode(123456789))
	assert.Nil(t, err)
	assert.Equal(t, uint64(123456789), id)
}

func TestBinaryCodecsUseTheirByteOrder(t *testing.T) {
	key := BigEndianCodec.Encode(1)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, key)

	native := NativeBinaryCodec.Encode(0x0102030405060708)
	assert.Equal(t, uint64(0x0102030405060708), binary.NativeEndian.Uint64(native))

	id, err := NativeBinaryCodec.Decode(native)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0x0102030405060708), id)
}

func TestBinaryCodecsRejectWrongLength(t *testing.T) {
	for _, codec := range []KeyCodec{NativeBinaryCodec, BigEndianCodec} {
		for _, n := range []int{0, 7, 9} {
			_, err := codec.Decode(make([]byte, n))
			assert.IsType(t, &common.KeyLengthError{}, err, fmt.Sprintf("%s should reject a %d byte key", codec.Name(), n))
		}
	}
}

func TestCodecByName(t *testing.T) {
	codec, err := CodecByName(common.CodecText)
	assert.Nil(t, err)
	assert.Equal(t, TextCodec, codec)

	codec, err = CodecByName(common.CodecNative)
	assert.Nil(t, err)
	assert.Equal(t, NativeBinaryCodec, codec)

	codec, err = CodecByName(common.CodecBigEndian)
	assert.Nil(t, err)
	assert.Equal(t, BigEndianCodec, codec)

	_, err = CodecByName("hex")
	assert.IsType(t, common.InvalidCodecError{}, err)
}
