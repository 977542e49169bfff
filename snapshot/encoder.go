package snapshot

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/gridverify/compress"
	"github.com/arloliu/gridverify/endian"
	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/format"
	"github.com/arloliu/gridverify/internal/collision"
	"github.com/arloliu/gridverify/internal/encoding"
	"github.com/arloliu/gridverify/internal/hash"
	"github.com/arloliu/gridverify/internal/options"
	"github.com/arloliu/gridverify/internal/pool"
	"github.com/arloliu/gridverify/report"
)

// Encode serializes r into a new snapshot.
//
// Parameters:
//   - r: Report to archive; every response must hold one value per level
//   - opts: Compression, encoding and byte order options
//
// Returns:
//   - []byte: Header followed by the stored payload
//   - error: ErrLengthMismatch, ErrDuplicateKey, ErrEmptyKey, ErrTextTooLong or a codec error
func Encode(r *report.Report, opts ...Option) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil report", errs.ErrInvalidOption)
	}

	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	h := newHeader(cfg.Compression, cfg.Encoding)
	h.setBigEndian(cfg.BigEndian)
	engine := h.Engine()
	cols := columns{engine: engine, encoding: cfg.Encoding}

	if err := validateReport(r); err != nil {
		return nil, err
	}

	tracker := collision.NewTracker()
	ids := make([]uint64, len(r.Responses))
	for i := range r.Responses {
		ids[i] = hash.ID(r.Responses[i].Key)
		if err := tracker.TrackKey(r.Responses[i].Key, ids[i]); err != nil {
			return nil, err
		}
	}
	h.setCollision(tracker.HasCollision())

	raw := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(raw)
	raw.Grow(payloadEstimate(r))

	if err := writePayload(raw, cols, r, ids); err != nil {
		return nil, err
	}
	if uint64(len(raw.B)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds 4GiB", errs.ErrInvalidOption, len(raw.B))
	}

	codec, err := compress.CreateCodec(cfg.Compression, "snapshot")
	if err != nil {
		return nil, err
	}
	stored, err := codec.Compress(raw.B)
	if err != nil {
		return nil, fmt.Errorf("compress snapshot payload: %w", err)
	}
	if uint64(len(stored)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: stored payload of %d bytes exceeds 4GiB", errs.ErrInvalidOption, len(stored))
	}

	h.LevelCount = uint32(len(r.Sizes))
	h.ResponseCount = uint32(len(r.Responses))
	h.ParamCount = uint32(len(r.ParamNames))
	h.RawSize = uint32(len(raw.B))
	h.PayloadSize = uint32(len(stored))

	// stored may alias the pooled buffer, so it is copied before the buffer is released.
	out := make([]byte, HeaderSize+len(stored))
	copy(out[HeaderSize:], stored)
	h.put(out[:HeaderSize])
	h.Checksum = checksum(out)
	engine.PutUint64(out[ChecksumOffset:HeaderSize], h.Checksum)

	return out, nil
}

// Write encodes r and writes the snapshot to w.
func Write(w io.Writer, r *report.Report, opts ...Option) error {
	data, err := Encode(r, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// checksum hashes the header up to the checksum field and the stored payload.
func checksum(snapshot []byte) uint64 {
	d := hash.NewDigest()
	d.Write(snapshot[:ChecksumOffset])
	d.Write(snapshot[HeaderSize:])

	return d.Sum()
}

func validateReport(r *report.Report) error {
	n := len(r.Sizes)
	p := len(r.ParamNames)
	for i := range r.Responses {
		resp := &r.Responses[i]
		for _, col := range []struct {
			name string
			len  int
			want int
		}{
			{"values", len(resp.Values), n},
			{"errors", len(resp.Errors), n},
			{"uncertainties", len(resp.Uncertainties), n},
			{"parameters", len(resp.Params), p},
		} {
			if col.len != col.want {
				return fmt.Errorf("%w: %q %s has %d entries, want %d",
					errs.ErrLengthMismatch, resp.Key, col.name, col.len, col.want)
			}
		}
		if len(resp.Order) > maxOrderTerms {
			return fmt.Errorf("%w: %q order has %d terms, limit %d",
				errs.ErrLengthMismatch, resp.Key, len(resp.Order), maxOrderTerms)
		}
	}

	return nil
}

// writePayload appends the raw payload sections to buf.
func writePayload(buf *pool.ByteBuffer, cols columns, r *report.Report, ids []uint64) error {
	var err error
	engine := cols.engine
	b := buf.B

	meta := [metadataCount]string{r.Name, r.Preset, r.Model, r.ErrorModel, r.UncertaintyModel, r.SizeKey}
	for _, s := range meta {
		if b, err = appendText(engine, b, s); err != nil {
			return err
		}
	}
	for _, s := range r.ParamNames {
		if b, err = appendText(engine, b, s); err != nil {
			return err
		}
	}
	b = cols.appendFloats(b, r.Sizes)

	// Index entries are patched once the column offsets are known.
	indexStart := len(b)
	b = append(b, make([]byte, len(r.Responses)*IndexEntrySize)...)

	for i := range r.Responses {
		if b, err = appendText(engine, b, r.Responses[i].Key); err != nil {
			return err
		}
	}

	columnsStart := len(b)
	for i := range r.Responses {
		resp := &r.Responses[i]
		offset := len(b) - columnsStart
		if uint64(offset) > math.MaxUint32 {
			return fmt.Errorf("%w: column offset %d exceeds 4GiB", errs.ErrInvalidOption, offset)
		}

		entry := b[indexStart+i*IndexEntrySize : indexStart+(i+1)*IndexEntrySize]
		engine.PutUint64(entry[0:8], ids[i])
		engine.PutUint32(entry[8:12], uint32(offset))

		b = cols.appendFloats(b, resp.Values)
		b = engine.AppendUint64(b, math.Float64bits(resp.FEst))
		// Order holds one term per model exponent, not one per level.
		b = engine.AppendUint16(b, uint16(len(resp.Order)))
		b = cols.appendFloats(b, resp.Order)
		b = cols.appendFloats(b, resp.Params)
		b = cols.appendFloats(b, resp.Errors)
		b = cols.appendFloats(b, resp.Uncertainties)
		if b, err = appendText(engine, b, resp.ErrorFailure); err != nil {
			return err
		}
		if b, err = appendText(engine, b, resp.UncertaintyFailure); err != nil {
			return err
		}
	}

	buf.B = b

	return nil
}

// payloadEstimate returns the raw payload size excluding string bytes.
func payloadEstimate(r *report.Report) int {
	n, p, k := len(r.Sizes), len(r.ParamNames), len(r.Responses)
	floats := n + k*(3*n+3+p)
	texts := metadataCount + p + 3*k

	return floats*8 + texts*2 + k*(IndexEntrySize+2)
}

func appendText(engine endian.EndianEngine, b []byte, s string) ([]byte, error) {
	if len(s) > maxTextLen {
		return b, fmt.Errorf("%w: %d bytes, limit %d", errs.ErrTextTooLong, len(s), maxTextLen)
	}
	b = engine.AppendUint16(b, uint16(len(s)))

	return append(b, s...), nil
}

// columns writes float columns in the configured encoding.
type columns struct {
	engine   endian.EndianEngine
	encoding format.EncodingType
}

// appendFloats appends values as 8-byte words, or as a Gorilla stream behind
// a uint32 byte length.
func (cols columns) appendFloats(b []byte, values []float64) []byte {
	if cols.encoding == format.TypeGorilla {
		lenAt := len(b)
		b = cols.engine.AppendUint32(b, 0)
		b = encoding.AppendGorilla(b, values)
		cols.engine.PutUint32(b[lenAt:lenAt+4], uint32(len(b)-lenAt-4))

		return b
	}

	for _, v := range values {
		b = cols.engine.AppendUint64(b, math.Float64bits(v))
	}

	return b
}
