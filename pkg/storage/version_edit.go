package storage

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dr0pdb/icecanepaxos/internal/common"
)

const (
	tagComparatorName = 1
	tagNextFileNumber = 2
	tagLogNumber      = 3
)

// versionEdit stores the data indicating a version edit.
//
// It is rewritten to the MANIFEST on every open, after the log has been rotated.
type versionEdit struct {
	// the name of the user key comparator used in the version.
	comparatorName string

	// the next file number available.
	nextFileNumber uint64

	// the number of the live write ahead log. 0 if there is none.
	logNumber uint64
}

// encode encodes the contents of a version edit.
func (ve *versionEdit) encode() []byte {
	venc := versionEditEncoder{new(bytes.Buffer)}

	if ve.comparatorName != "" {
		venc.writeUvarint(tagComparatorName)
		venc.writeString(ve.comparatorName)
	}

	if ve.nextFileNumber != 0 {
		venc.writeUvarint(tagNextFileNumber)
		venc.writeUvarint(ve.nextFileNumber)
	}

	if ve.logNumber != 0 {
		venc.writeUvarint(tagLogNumber)
		venc.writeUvarint(ve.logNumber)
	}

	return venc.Bytes()
}

// decode populates the version edit from the encoded bytes.
func (ve *versionEdit) decode(data []byte) error {
	vdec := versionEditDecoder{bytes.NewReader(data)}

	for {
		tag, err := binary.ReadUvarint(vdec)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return common.NewCorruptionError("storage::version_edit: decode; corrupt tag")
		}

		switch tag {
		case tagComparatorName:
			s, err := vdec.readString()
			if err != nil {
				return err
			}
			ve.comparatorName = s

		case tagNextFileNumber:
			n, err := binary.ReadUvarint(vdec)
			if err != nil {
				return common.NewCorruptionError("storage::version_edit: decode; corrupt next file number")
			}
			ve.nextFileNumber = n

		case tagLogNumber:
			n, err := binary.ReadUvarint(vdec)
			if err != nil {
				return common.NewCorruptionError("storage::version_edit: decode; corrupt log number")
			}
			ve.logNumber = n

		default:
			return common.NewCorruptionError("storage::version_edit: decode; unknown tag")
		}
	}
}

// versionEditEncoder is a struct containing the encoded data.
// Provides utility methods on it to encode various data types
type versionEditEncoder struct {
	*bytes.Buffer
}

func (vee versionEditEncoder) writeUvarint(u uint64) {
	var buffer [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buffer[:], u)
	vee.Write(buffer[:n])
}

func (vee versionEditEncoder) writeString(s string) {
	vee.writeUvarint(uint64(len(s)))
	vee.WriteString(s)
}

type versionEditDecoder struct {
	*bytes.Reader
}

func (ved versionEditDecoder) readString() (string, error) {
	n, err := binary.ReadUvarint(ved)
	if err != nil || n > uint64(ved.Len()) {
		return "", common.NewCorruptionError("storage::version_edit: decode; corrupt string length")
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(ved, b); err != nil {
		return "", common.NewCorruptionError("storage::version_edit: decode; short string")
	}
	return string(b), nil
}
