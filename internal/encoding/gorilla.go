// Package encoding implements the Gorilla XOR float encoding used for the
// float columns of a snapshot.
//
// The first value is stored verbatim in 64 bits. Every later value is XORed
// with its predecessor and written as:
//
//	'0'                              value repeats
//	'10' + meaningful bits           XOR fits the previous leading/trailing window
//	'11' + 5-bit leading + 6-bit size + meaningful bits
//
// A size of 64 is written as 0. Converged discretization series repeat or
// change only in their low mantissa bits, which this scheme packs tightly.
package encoding

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/gridverify/errs"
)

// maxLeading is the largest leading-zero count the 5-bit field can hold.
const maxLeading = 31

// AppendGorilla appends the Gorilla encoding of values to dst. The bit stream
// is padded with zero bits to a whole byte.
func AppendGorilla(dst []byte, values []float64) []byte {
	if len(values) == 0 {
		return dst
	}

	w := bitWriter{buf: dst}
	prev := math.Float64bits(values[0])
	w.writeBits(prev, 64)

	prevLeading, prevTrailing := -1, 0
	for _, v := range values[1:] {
		cur := math.Float64bits(v)
		xor := cur ^ prev
		prev = cur

		if xor == 0 {
			w.writeBits(0, 1)
			continue
		}

		leading := min(bits.LeadingZeros64(xor), maxLeading)
		trailing := bits.TrailingZeros64(xor)

		if prevLeading >= 0 && leading >= prevLeading && trailing >= prevTrailing {
			w.writeBits(0b10, 2)
			w.writeBits(xor>>prevTrailing, 64-prevLeading-prevTrailing)

			continue
		}

		size := 64 - leading - trailing
		w.writeBits(0b11, 2)
		w.writeBits(uint64(leading), 5)
		w.writeBits(uint64(size&0x3F), 6)
		w.writeBits(xor>>trailing, size)
		prevLeading, prevTrailing = leading, trailing
	}

	return w.flush()
}

// DecodeGorilla decodes n values from data.
//
// Returns:
//   - []float64: Decoded values
//   - error: ErrTruncatedPayload if data ends early or holds an invalid block
func DecodeGorilla(data []byte, n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative value count %d", errs.ErrTruncatedPayload, n)
	}
	if n == 0 {
		return []float64{}, nil
	}
	// 64 bits for the first value and at least one bit per later value.
	if len(data) < 8 || n-1 > (len(data)-8)*8 {
		return nil, fmt.Errorf("%w: %d bytes cannot hold %d values", errs.ErrTruncatedPayload, len(data), n)
	}

	r := bitReader{data: data}
	prev, _ := r.readBits(64)
	out := make([]float64, 1, n)
	out[0] = math.Float64frombits(prev)

	leading, trailing := -1, 0
	for len(out) < n {
		ctrl, ok := r.readBits(1)
		if !ok {
			return nil, truncated(len(out), n)
		}
		if ctrl == 0 {
			out = append(out, math.Float64frombits(prev))
			continue
		}

		sel, ok := r.readBits(1)
		if !ok {
			return nil, truncated(len(out), n)
		}
		if sel == 1 {
			l, ok1 := r.readBits(5)
			s, ok2 := r.readBits(6)
			if !ok1 || !ok2 {
				return nil, truncated(len(out), n)
			}
			size := int(s)
			if size == 0 {
				size = 64
			}
			leading, trailing = int(l), 64-int(l)-size
			if trailing < 0 {
				return nil, fmt.Errorf("%w: block of %d bits after %d leading zeros",
					errs.ErrTruncatedPayload, size, leading)
			}
		} else if leading < 0 {
			return nil, fmt.Errorf("%w: window reuse before first block", errs.ErrTruncatedPayload)
		}

		meaningful, ok := r.readBits(64 - leading - trailing)
		if !ok {
			return nil, truncated(len(out), n)
		}
		prev ^= meaningful << trailing
		out = append(out, math.Float64frombits(prev))
	}

	return out, nil
}

func truncated(have, want int) error {
	return fmt.Errorf("%w: stream ends after %d of %d values", errs.ErrTruncatedPayload, have, want)
}

type bitWriter struct {
	buf []byte
	cur byte
	n   int // bits used in cur
}

// writeBits writes the low nbits of v, most significant first.
func (w *bitWriter) writeBits(v uint64, nbits int) {
	for nbits > 0 {
		free := 8 - w.n
		take := min(free, nbits)
		chunk := byte(v>>(nbits-take)) & (byte(1)<<take - 1)
		w.cur |= chunk << (free - take)
		w.n += take
		nbits -= take

		if w.n == 8 {
			w.buf = append(w.buf, w.cur)
			w.cur, w.n = 0, 0
		}
	}
}

func (w *bitWriter) flush() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, w.cur)
		w.cur, w.n = 0, 0
	}

	return w.buf
}

type bitReader struct {
	data []byte
	pos  int // bit position
}

// readBits reads nbits (at most 64), most significant first.
func (r *bitReader) readBits(nbits int) (uint64, bool) {
	if nbits > len(r.data)*8-r.pos {
		return 0, false
	}

	var v uint64
	for nbits > 0 {
		avail := 8 - r.pos%8
		take := min(avail, nbits)
		chunk := r.data[r.pos/8] >> (avail - take) & (byte(1)<<take - 1)
		v = v<<take | uint64(chunk)
		r.pos += take
		nbits -= take
	}

	return v, true
}
