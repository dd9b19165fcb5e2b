package storage

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/dr0pdb/icecanepaxos/internal/common"
	log "github.com/sirupsen/logrus"
)

// The log record format details can be found at the below link.
// https://github.com/google/leveldb/blob/master/doc/log_format.md
//
// Every chunk header is a 4 byte crc32c of the type and the payload, 2 bytes of payload
// length and the chunk type. Type 0 is reserved for the zeroed tail of a block.
const (
	blockSize  = 32 * 1024
	headerSize = 7
)

const (
	zeroChunkType = iota
	fullChunkType
	firstChunkType
	middleChunkType
	lastChunkType
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// chunkChecksum returns the checksum of a chunk. b starts at the type byte of the header.
func chunkChecksum(b []byte) uint32 {
	return crc32.Checksum(b, crcTable)
}

type logRecordWriter struct {
	// w is the writer that logRecordWriter writes to
	w io.Writer

	// seq is the sequence number of the current record.
	seq int

	// buffer
	buf [blockSize]byte

	// buf[i:j] is the current chunk position including the header
	i, j int

	// buf[:written] has been written to w. can be stale if flush hasn't been called.
	written int

	// pending indicates if there is a chunk that is yet to written but is buffered.
	pending bool

	// first indicates if the current chunk is the first chunk of the record.
	first bool

	// err is any error encountered during any log record writer operation.
	err error
}

// fillHeaders fill the header entry in the buffer for the current chunk.
func (lrw *logRecordWriter) fillHeaders(lastChunk bool) {
	if lrw.err != nil {
		log.WithFields(log.Fields{"error": lrw.err.Error()}).Error("storage::logrecord: fillHeaders; existing background error found in the log record writer.")
		return
	}

	if lrw.i+headerSize > lrw.j || lrw.j > blockSize {
		log.WithFields(log.Fields{"i": lrw.i, "j": lrw.j}).Error("storage::logrecord: fillHeaders; Inconsistent state found.")
		panic("storage::logrecord::logrecordwriter; inconsistent state found")
	}

	if lastChunk {
		if lrw.first {
			lrw.buf[lrw.i+6] = fullChunkType
		} else {
			lrw.buf[lrw.i+6] = lastChunkType
		}
	} else {
		if lrw.first {
			lrw.buf[lrw.i+6] = firstChunkType
		} else {
			lrw.buf[lrw.i+6] = middleChunkType
		}
	}

	binary.LittleEndian.PutUint32(lrw.buf[lrw.i:lrw.i+4], chunkChecksum(lrw.buf[lrw.i+6:lrw.j]))
	binary.LittleEndian.PutUint16(lrw.buf[lrw.i+4:lrw.i+6], uint16(lrw.j-lrw.i-headerSize))
}

// writePending finishes the pending chunk and writes everything buffered so far.
func (lrw *logRecordWriter) writePending() {
	if lrw.err != nil {
		return
	}

	if lrw.pending {
		lrw.fillHeaders(true)
		lrw.pending = false
	}

	_, lrw.err = lrw.w.Write(lrw.buf[lrw.written:lrw.j])
	lrw.written = lrw.j
}

// writeBlock writes the rest of the block and resets the buffer for the next one.
func (lrw *logRecordWriter) writeBlock() {
	_, lrw.err = lrw.w.Write(lrw.buf[lrw.written:])
	lrw.i = 0
	lrw.j = headerSize
	lrw.written = 0
}

// flush finishes the current record and writes it to the underlying writer.
//
// It doesn't sync; the caller syncs the file when it needs durability.
func (lrw *logRecordWriter) flush() error {
	lrw.seq++
	lrw.writePending()
	if lrw.err != nil {
		log.WithFields(log.Fields{"error": lrw.err.Error()}).Error("storage::logrecord: flush; error in writing the pending record.")
	}
	return lrw.err
}

// newLogRecordWriter creates a new log record writer.
func newLogRecordWriter(w io.Writer) *logRecordWriter {
	return &logRecordWriter{
		w: w,
	}
}

// next returns a io.Writer for the next record.
// The writer returned by the previous call becomes stale.
func (lrw *logRecordWriter) next() (io.Writer, error) {
	lrw.seq++
	if lrw.err != nil {
		log.WithFields(log.Fields{"error": lrw.err.Error()}).Error("storage::logrecord: next; existing background error found in the log record writer.")
		return nil, lrw.err
	}

	if lrw.pending {
		lrw.fillHeaders(true)
	}

	// move pointers for the next chunk headers
	lrw.i = lrw.j
	lrw.j = lrw.j + headerSize

	// a block tail that can't hold a header is zero filled.
	if lrw.j > blockSize {
		for x := lrw.i; x < blockSize; x++ {
			lrw.buf[x] = 0
		}

		lrw.writeBlock()

		if lrw.err != nil {
			log.WithFields(log.Fields{"error": lrw.err.Error()}).Error("storage::logrecord: next; error in writing the block.")
			return nil, lrw.err
		}
	}

	lrw.first = true
	lrw.pending = true
	return singleLogRecordWriter{lrw, lrw.seq}, nil
}

type singleLogRecordWriter struct {
	w   *logRecordWriter
	seq int
}

// Write writes a slice of byte to the writer by splitting it into blocks of blocksize.
func (slrw singleLogRecordWriter) Write(p []byte) (int, error) {
	w := slrw.w

	if w.seq != slrw.seq {
		return 0, common.NewStaleLogRecordWriterError("storage::logrecord: Write; stale log record writer")
	}

	if w.err != nil {
		return 0, w.err
	}

	tot := len(p)
	for len(p) > 0 {
		// write if full
		if w.j == blockSize {
			w.fillHeaders(false)
			w.writeBlock()

			if w.err != nil {
				return 0, w.err
			}

			w.first = false
		}

		n := copy(w.buf[w.j:], p)
		w.j += n
		p = p[n:]
	}

	return tot, nil
}

// logRecordReader reads back the records written by a logRecordWriter.
type logRecordReader struct {
	r io.Reader

	buf [blockSize]byte

	// buf[i:n] is the unread part of the current block.
	i, n int

	// eof is set once r has no more blocks.
	eof bool
}

// newLogRecordReader creates a new log record reader.
func newLogRecordReader(r io.Reader) *logRecordReader {
	return &logRecordReader{
		r: r,
	}
}

// readBlock reads the next block into the buffer.
// the last block of a log can be short.
func (lrr *logRecordReader) readBlock() error {
	n, err := io.ReadFull(lrr.r, lrr.buf[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}
	if err != nil {
		lrr.eof = true
	}
	lrr.i, lrr.n = 0, n
	return nil
}

// next returns the next complete record.
//
// returns io.EOF after the last record. A record cut short at the end of the log
// is treated as the end of the log, since its write never completed.
// returns CorruptionError if a chunk fails its checksum.
func (lrr *logRecordReader) next() ([]byte, error) {
	var record []byte
	inRecord := false

	for {
		if lrr.n-lrr.i < headerSize {
			if lrr.eof {
				if inRecord || lrr.n-lrr.i > 0 {
					log.Warn("storage::logrecord: next; dropping an incomplete record at the end of the log")
				}
				return nil, io.EOF
			}
			if err := lrr.readBlock(); err != nil {
				log.WithFields(log.Fields{"error": err.Error()}).Error("storage::logrecord: next; error in reading a block")
				return nil, err
			}
			continue
		}

		header := lrr.buf[lrr.i : lrr.i+headerSize]
		checksum := binary.LittleEndian.Uint32(header[0:4])
		length := int(binary.LittleEndian.Uint16(header[4:6]))
		chunkType := header[6]

		if chunkType == zeroChunkType {
			// zeroed block tail
			lrr.i = lrr.n
			continue
		}

		if lrr.i+headerSize+length > lrr.n {
			if lrr.eof {
				log.Warn("storage::logrecord: next; dropping a torn chunk at the end of the log")
				return nil, io.EOF
			}
			return nil, common.NewCorruptionError("storage::logrecord: next; chunk overflows its block")
		}

		if chunkChecksum(lrr.buf[lrr.i+6:lrr.i+headerSize+length]) != checksum {
			log.WithFields(log.Fields{"offset": lrr.i}).Error("storage::logrecord: next; checksum mismatch")
			return nil, common.NewCorruptionError("storage::logrecord: next; checksum mismatch")
		}

		payload := lrr.buf[lrr.i+headerSize : lrr.i+headerSize+length]
		lrr.i += headerSize + length

		switch chunkType {
		case fullChunkType:
			if inRecord {
				return nil, common.NewCorruptionError("storage::logrecord: next; full chunk inside a record")
			}
			return append([]byte{}, payload...), nil

		case firstChunkType:
			if inRecord {
				return nil, common.NewCorruptionError("storage::logrecord: next; first chunk inside a record")
			}
			inRecord = true
			record = append([]byte{}, payload...)

		case middleChunkType, lastChunkType:
			if !inRecord {
				return nil, common.NewCorruptionError("storage::logrecord: next; chunk without a first chunk")
			}
			record = append(record, payload...)
			if chunkType == lastChunkType {
				return record, nil
			}

		default:
			return nil, common.NewCorruptionError("storage::logrecord: next; unknown chunk type")
		}
	}
}
