package snapshot

import (
	"fmt"

	"github.com/arloliu/gridverify/endian"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/format"
)

// Header is the fixed-size header at the start of a snapshot.
type Header struct {
	// Options packs the endianness and collision flags with the magic number.
	Options uint16 // byte offset 0-1
	Version uint8  // byte offset 2
	// Compression and Encoding share byte 3: compression in the low nibble,
	// float column encoding in the high nibble.
	Compression format.CompressionType
	Encoding    format.EncodingType
	// LevelCount is the number of discretization levels.
	LevelCount    uint32 // byte offset 4-7
	ResponseCount uint32 // byte offset 8-11
	ParamCount    uint32 // byte offset 12-15
	// PayloadSize is the size of the payload as stored, after compression.
	PayloadSize uint32 // byte offset 16-19
	// RawSize is the size of the payload before compression.
	RawSize  uint32 // byte offset 20-23
	Checksum uint64 // byte offset 24-31
}

// newHeader creates a little-endian header for the given compression and
// float encoding.
func newHeader(compression format.CompressionType, encoding format.EncodingType) Header {
	return Header{
		Options:     MagicSnapshotV1,
		Version:     Version,
		Compression: compression,
		Encoding:    encoding,
	}
}

// IsBigEndian reports whether the payload is big-endian.
func (h Header) IsBigEndian() bool {
	return h.Options&EndiannessMask != 0
}

// HasCollision reports whether two response keys share a hash, in which case
// keys are resolved by name.
func (h Header) HasCollision() bool {
	return h.Options&CollisionMask != 0
}

func (h *Header) setBigEndian(enabled bool) {
	if enabled {
		h.Options |= EndiannessMask
	} else {
		h.Options &^= EndiannessMask
	}
}

func (h *Header) setCollision(enabled bool) {
	if enabled {
		h.Options |= CollisionMask
	} else {
		h.Options &^= CollisionMask
	}
}

// Engine returns the byte order engine of the header and payload.
func (h Header) Engine() endian.EndianEngine {
	if h.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Validate checks the magic number, version, reserved bits, compression and
// encoding types.
func (h Header) Validate() error {
	if h.Options&MagicNumberMask != MagicSnapshotV1 {
		return fmt.Errorf("%w: 0x%04x", errs.ErrInvalidMagic, h.Options&MagicNumberMask)
	}
	if h.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved option bits set", errs.ErrInvalidMagic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidMagic, h.Version)
	}
	if !h.Compression.Valid() {
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, uint8(h.Compression))
	}
	if !h.Encoding.Valid() {
		return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidEncoding, uint8(h.Encoding))
	}

	return nil
}

// Bytes serializes the header into a new 32-byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.put(b)

	return b
}

func (h Header) put(b []byte) {
	engine := h.Engine()

	// Options is always little-endian so the byte order can be read first.
	b[0] = byte(h.Options)
	b[1] = byte(h.Options >> 8)
	b[2] = h.Version
	b[3] = uint8(h.Compression)&CompressionMask | uint8(h.Encoding)<<4
	engine.PutUint32(b[4:8], h.LevelCount)
	engine.PutUint32(b[8:12], h.ResponseCount)
	engine.PutUint32(b[12:16], h.ParamCount)
	engine.PutUint32(b[16:20], h.PayloadSize)
	engine.PutUint32(b[20:24], h.RawSize)
	engine.PutUint64(b[24:32], h.Checksum)
}

// ParseHeader parses and validates the header at the start of data.
//
// Parameters:
//   - data: Snapshot bytes (at least 32)
//
// Returns:
//   - Header: Parsed header
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic, ErrInvalidCompression or ErrInvalidEncoding
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", errs.ErrInvalidHeaderSize, len(data))
	}

	h := Header{
		Options:     uint16(data[0]) | uint16(data[1])<<8,
		Version:     data[2],
		Compression: format.CompressionType(data[3] & CompressionMask),
		Encoding:    format.EncodingType(data[3] >> 4),
	}
	engine := h.Engine()
	h.LevelCount = engine.Uint32(data[4:8])
	h.ResponseCount = engine.Uint32(data[8:12])
	h.ParamCount = engine.Uint32(data[12:16])
	h.PayloadSize = engine.Uint32(data[16:20])
	h.RawSize = engine.Uint32(data[20:24])
	h.Checksum = engine.Uint64(data[24:32])

	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}
