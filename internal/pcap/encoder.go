// Package pcap encodes captured serial data into the classic PCAP container
// format: one global file header followed by (record header, payload) pairs.
// All multi-byte fields are little-endian, as declared by the magic number.
package pcap

import (
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/google/gopacket/layers"
)

const (
	// magicMicroseconds marks a little-endian file with microsecond timestamps.
	magicMicroseconds = 0xa1b2c3d4

	versionMajor = 2
	versionMinor = 4

	// FileHeaderLen is the size of the global header in bytes.
	FileHeaderLen = 24
	// RecordHeaderLen is the size of each per-record header in bytes.
	RecordHeaderLen = 16
)

// ErrPayloadTooLarge is returned when a chunk's true length cannot be
// represented in the 32-bit original-length field of a record header.
var ErrPayloadTooLarge = errors.New("pcap: payload length exceeds 32-bit record length field")

// Encoder builds the on-disk representation of the global header and of
// individual capture records. It is a pure function of its configuration
// and never touches the output file.
type Encoder struct {
	snapLen uint32
	link    layers.LinkType
}

// NewEncoder returns an encoder for files with the given snapshot length
// and link type. Payloads longer than snapLen are truncated per the
// standard PCAP policy: the record keeps the first snapLen bytes and the
// header records both the stored and the true length.
func NewEncoder(snapLen uint32, link layers.LinkType) *Encoder {
	return &Encoder{snapLen: snapLen, link: link}
}

// SnapLen returns the configured snapshot length.
func (e *Encoder) SnapLen() uint32 { return e.snapLen }

// LinkType returns the configured link type.
func (e *Encoder) LinkType() layers.LinkType { return e.link }

// FileHeader encodes the 24-byte global header. It is written exactly once,
// before any record.
func (e *Encoder) FileHeader() []byte {
	buf := make([]byte, FileHeaderLen)
	binary.LittleEndian.PutUint32(buf[0:4], magicMicroseconds)
	binary.LittleEndian.PutUint16(buf[4:6], versionMajor)
	binary.LittleEndian.PutUint16(buf[6:8], versionMinor)
	// thiszone and sigfigs are conventionally zero.
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	binary.LittleEndian.PutUint32(buf[12:16], 0)
	binary.LittleEndian.PutUint32(buf[16:20], e.snapLen)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(e.link))
	return buf
}

// Record encodes one record header plus payload for a chunk read at ts.
// Payloads longer than the snapshot length are truncated; the header's
// captured length reflects the truncation while the original length keeps
// the true size. Fails only when the true length does not fit in 32 bits.
func (e *Encoder) Record(ts time.Time, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrPayloadTooLarge
	}
	origLen := uint32(len(payload))
	captured := payload
	if origLen > e.snapLen {
		captured = payload[:e.snapLen]
	}

	buf := make([]byte, RecordHeaderLen+len(captured))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(ts.Unix()))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(ts.Nanosecond()/1000))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(captured)))
	binary.LittleEndian.PutUint32(buf[12:16], origLen)
	copy(buf[RecordHeaderLen:], captured)
	return buf, nil
}
