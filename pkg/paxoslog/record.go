package paxoslog

import (
	"encoding/binary"

	"github.com/dr0pdb/icecanepaxos/internal/common"
)

const recordHeaderSize = 8

// Record is the value chosen for a paxos instance.
type Record struct {
	// ProposalID is the ballot the value was accepted with.
	ProposalID uint64

	Value []byte
}

func (r *Record) toBytes() []byte {
	res := make([]byte, recordHeaderSize, recordHeaderSize+len(r.Value))
	binary.LittleEndian.PutUint64(res, r.ProposalID)
	return append(res, r.Value...)
}

func deserializeRecord(b []byte) (*Record, error) {
	if len(b) < recordHeaderSize {
		return nil, common.NewCorruptionError("paxoslog::record: deserializeRecord; invalid record bytes")
	}

	value := make([]byte, len(b)-recordHeaderSize)
	copy(value, b[recordHeaderSize:])

	return &Record{
		ProposalID: binary.LittleEndian.Uint64(b),
		Value:      value,
	}, nil
}
