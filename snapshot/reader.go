package snapshot

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/arloliu/gridverify/compress"
	"github.com/arloliu/gridverify/endian"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/format"
	"github.com/arloliu/gridverify/internal/collision"
	"github.com/arloliu/gridverify/internal/encoding"
	"github.com/arloliu/gridverify/internal/hash"
	"github.com/arloliu/gridverify/report"
)

// Reader gives access to a verified snapshot. The header, names and index are
// parsed eagerly; response columns are decoded on demand.
type Reader struct {
	header  Header
	engine  endian.EndianEngine
	payload []byte

	meta       [metadataCount]string
	paramNames []string
	sizes      []float64
	keys       []string
	offsets    []uint32
	byID       map[uint64]int // nil when keys collide

	columnsStart int
}

// NewReader verifies the checksum of data, decompresses the payload and
// parses its index. Bytes after the stored payload are ignored.
//
// Returns:
//   - *Reader: Reader over the decompressed payload
//   - error: Header errors, ErrTruncatedPayload, ErrChecksumMismatch or a codec error
func NewReader(data []byte) (*Reader, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	end := HeaderSize + int(h.PayloadSize)
	if len(data) < end {
		return nil, fmt.Errorf("%w: have %d payload bytes, header declares %d",
			errs.ErrTruncatedPayload, len(data)-HeaderSize, h.PayloadSize)
	}
	data = data[:end]

	if sum := checksum(data); sum != h.Checksum {
		return nil, fmt.Errorf("%w: computed 0x%016x, header 0x%016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	codec, err := compress.CreateCodec(h.Compression, "snapshot")
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(data[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot payload: %w", err)
	}
	if len(payload) != int(h.RawSize) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header declares %d",
			errs.ErrTruncatedPayload, len(payload), h.RawSize)
	}

	rd := &Reader{header: h, engine: h.Engine(), payload: payload}
	if err := rd.parseIndex(); err != nil {
		return nil, err
	}

	return rd, nil
}

func (rd *Reader) parseIndex() error {
	c := &cursor{b: rd.payload, engine: rd.engine, encoding: rd.header.Encoding}
	h := rd.header

	var err error
	for i := range rd.meta {
		if rd.meta[i], err = c.text(); err != nil {
			return err
		}
	}
	if rd.paramNames, err = c.texts(int(h.ParamCount)); err != nil {
		return err
	}
	if rd.sizes, err = c.floats(int(h.LevelCount)); err != nil {
		return err
	}

	count := int(h.ResponseCount)
	entries, err := c.take(count * IndexEntrySize)
	if err != nil {
		return err
	}
	if rd.keys, err = c.texts(count); err != nil {
		return err
	}
	rd.columnsStart = c.pos

	tracker := collision.NewTracker()
	rd.offsets = make([]uint32, count)
	for i, key := range rd.keys {
		entry := entries[i*IndexEntrySize : (i+1)*IndexEntrySize]
		id := rd.engine.Uint64(entry[0:8])
		if id != hash.ID(key) {
			return fmt.Errorf("%w: key %q does not match index id 0x%016x", errs.ErrChecksumMismatch, key, id)
		}
		if err := tracker.TrackKey(key, id); err != nil {
			return err
		}
		rd.offsets[i] = rd.engine.Uint32(entry[8:12])
	}
	if tracker.HasCollision() && !h.HasCollision() {
		return fmt.Errorf("%w: colliding keys without collision flag", errs.ErrHashCollision)
	}

	if !h.HasCollision() {
		rd.byID = make(map[uint64]int, count)
		for i, key := range rd.keys {
			rd.byID[hash.ID(key)] = i
		}
	}

	return nil
}

// Header returns the parsed snapshot header.
func (rd *Reader) Header() Header {
	return rd.header
}

// Stats returns the compression statistics recorded in the header.
func (rd *Reader) Stats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      rd.header.Compression,
		OriginalSize:   int64(rd.header.RawSize),
		CompressedSize: int64(rd.header.PayloadSize),
	}
}

// Name returns the archived report name.
func (rd *Reader) Name() string {
	return rd.meta[0]
}

// Keys returns the archived response keys in report order.
func (rd *Reader) Keys() []string {
	return slices.Clone(rd.keys)
}

// Sizes returns the archived discretization sizes.
func (rd *Reader) Sizes() []float64 {
	return slices.Clone(rd.sizes)
}

// Response decodes the column block of one response. Keys are resolved
// through the hashed index unless the snapshot records a collision.
func (rd *Reader) Response(key string) (*report.Response, error) {
	i := -1
	if rd.byID != nil {
		if idx, ok := rd.byID[hash.ID(key)]; ok && rd.keys[idx] == key {
			i = idx
		}
	} else {
		i = slices.Index(rd.keys, key)
	}
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return rd.response(i)
}

func (rd *Reader) response(i int) (*report.Response, error) {
	start := rd.columnsStart + int(rd.offsets[i])
	if start > len(rd.payload) {
		return nil, fmt.Errorf("%w: column offset of %q past payload end", errs.ErrTruncatedPayload, rd.keys[i])
	}

	c := &cursor{b: rd.payload, pos: start, engine: rd.engine, encoding: rd.header.Encoding}
	n := len(rd.sizes)
	resp := &report.Response{Key: rd.keys[i]}

	var err error
	if resp.Values, err = c.floats(n); err != nil {
		return nil, err
	}
	if resp.FEst, err = c.float(); err != nil {
		return nil, err
	}
	terms, err := c.take(2)
	if err != nil {
		return nil, err
	}
	if resp.Order, err = c.floats(int(rd.engine.Uint16(terms))); err != nil {
		return nil, err
	}
	if resp.Params, err = c.floats(len(rd.paramNames)); err != nil {
		return nil, err
	}
	if resp.Errors, err = c.floats(n); err != nil {
		return nil, err
	}
	if resp.Uncertainties, err = c.floats(n); err != nil {
		return nil, err
	}
	if resp.ErrorFailure, err = c.text(); err != nil {
		return nil, err
	}
	if resp.UncertaintyFailure, err = c.text(); err != nil {
		return nil, err
	}

	return resp, nil
}

// Report decodes every response and rebuilds the archived Report.
func (rd *Reader) Report() (*report.Report, error) {
	r := &report.Report{
		Name:             rd.meta[0],
		Preset:           rd.meta[1],
		Model:            rd.meta[2],
		ErrorModel:       rd.meta[3],
		UncertaintyModel: rd.meta[4],
		SizeKey:          rd.meta[5],
		Sizes:            rd.Sizes(),
		ParamNames:       slices.Clone(rd.paramNames),
		Responses:        make([]report.Response, 0, len(rd.keys)),
	}
	for i := range rd.keys {
		resp, err := rd.response(i)
		if err != nil {
			return nil, err
		}
		r.Responses = append(r.Responses, *resp)
	}

	return r, nil
}

// Decode verifies and decodes a complete snapshot.
func Decode(data []byte) (*report.Report, error) {
	rd, err := NewReader(data)
	if err != nil {
		return nil, err
	}

	return rd.Report()
}

// Read reads a snapshot from r until EOF and decodes it.
func Read(r io.Reader) (*report.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	return Decode(data)
}

// cursor reads fixed-width fields from a payload, reporting overruns as
// ErrTruncatedPayload.
type cursor struct {
	b        []byte
	pos      int
	engine   endian.EndianEngine
	encoding format.EncodingType
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.b)-c.pos {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			errs.ErrTruncatedPayload, n, c.pos, len(c.b)-c.pos)
	}
	out := c.b[c.pos : c.pos+n]
	c.pos += n

	return out, nil
}

func (c *cursor) float() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(c.engine.Uint64(b)), nil
}

func (c *cursor) floats(n int) ([]float64, error) {
	if c.encoding == format.TypeGorilla {
		size, err := c.take(4)
		if err != nil {
			return nil, err
		}
		stream, err := c.take(int(c.engine.Uint32(size)))
		if err != nil {
			return nil, err
		}

		return encoding.DecodeGorilla(stream, n)
	}

	if n < 0 || n > (len(c.b)-c.pos)/8 {
		return nil, fmt.Errorf("%w: %d floats at offset %d", errs.ErrTruncatedPayload, n, c.pos)
	}
	b, err := c.take(n * 8)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(c.engine.Uint64(b[i*8:]))
	}

	return out, nil
}

func (c *cursor) text() (string, error) {
	b, err := c.take(2)
	if err != nil {
		return "", err
	}
	s, err := c.take(int(c.engine.Uint16(b)))
	if err != nil {
		return "", err
	}

	return string(s), nil
}

func (c *cursor) texts(n int) ([]string, error) {
	// Each string needs at least its length prefix.
	if n < 0 || n > (len(c.b)-c.pos)/2 {
		return nil, fmt.Errorf("%w: %d strings at offset %d", errs.ErrTruncatedPayload, n, c.pos)
	}

	out := make([]string, n)
	for i := range out {
		s, err := c.text()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}

	return out, nil
}
