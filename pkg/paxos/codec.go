package paxos

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/dr0pdb/icecanepaxos/internal/common"
)

const (
	textCodecName = "text"

	// binaryKeyLen is the only valid key length for the binary codecs.
	binaryKeyLen = 8
)

// KeyCodec converts between instance ids and the key bytes stored in the db.
//
// A db must use a single codec for its whole life; the codecs don't agree on any key.
type KeyCodec interface {
	// Name identifies the key encoding.
	Name() string

	// Decode returns the instance id encoded in the key.
	Decode(key []byte) (uint64, error)

	// Encode returns the key for the instance id.
	Encode(id uint64) []byte
}

var (
	// TextCodec stores instance ids as ascii decimal strings.
	//
	// Decoding follows atoi: leading whitespace and a single sign are accepted,
	// parsing stops at the first non digit, and a key without leading digits is 0.
	// Overflow wraps modulo 2^64.
	TextCodec KeyCodec = textCodec{}

	// NativeBinaryCodec stores instance ids as 8 bytes in the byte order of the host.
	// Keys are not portable across hosts with different byte orders.
	NativeBinaryCodec KeyCodec = binaryCodec{order: binary.NativeEndian, name: nativeOrderName()}

	// BigEndianCodec stores instance ids as 8 big endian bytes.
	// Byte wise order of these keys matches their numeric order.
	BigEndianCodec KeyCodec = binaryCodec{order: binary.BigEndian, name: "u64be"}
)

// CodecByName returns the codec for a config codec name.
func CodecByName(name string) (KeyCodec, error) {
	switch name {
	case common.CodecText:
		return TextCodec, nil
	case common.CodecNative:
		return NativeBinaryCodec, nil
	case common.CodecBigEndian:
		return BigEndianCodec, nil
	}
	return nil, common.NewInvalidCodecError(fmt.Sprintf("paxos::codec: CodecByName; unknown codec %q", name))
}

type textCodec struct{}

func (textCodec) Name() string {
	return textCodecName
}

func (textCodec) Decode(key []byte) (uint64, error) {
	i := 0
	for i < len(key) && isSpace(key[i]) {
		i++
	}

	neg := false
	if i < len(key) && (key[i] == '+' || key[i] == '-') {
		neg = key[i] == '-'
		i++
	}

	var n uint64
	for ; i < len(key) && key[i] >= '0' && key[i] <= '9'; i++ {
		n = n*10 + uint64(key[i]-'0')
	}

	if neg {
		n = -n
	}
	return n, nil
}

func (textCodec) Encode(id uint64) []byte {
	return strconv.AppendUint(nil, id, 10)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

type binaryCodec struct {
	order binary.ByteOrder
	name  string
}

func (bc binaryCodec) Name() string {
	return bc.name
}

func (bc binaryCodec) Decode(key []byte) (uint64, error) {
	if len(key) != binaryKeyLen {
		return 0, common.NewKeyLengthError("paxos::codec: Decode; binary keys must be 8 bytes", len(key))
	}
	return bc.order.Uint64(key), nil
}

func (bc binaryCodec) Encode(id uint64) []byte {
	key := make([]byte, binaryKeyLen)
	bc.order.PutUint64(key, id)
	return key
}

// nativeOrderName names the host byte order the way the fixed order codecs are named.
func nativeOrderName() string {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return "u64le"
	}
	return "u64be"
}
