package compress

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/format"
	"github.com/stretchr/testify/require"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// columnPayload mimics a snapshot payload: smooth float64 columns.
func columnPayload(n int) []byte {
	buf := make([]byte, 0, n*8)
	for i := range n {
		h := float64(i%8 + 1)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(10+0.25*h*h))
	}

	return buf
}

func TestCodecs_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"columns":   columnPayload(512),
		"small":     []byte("f_est"),
		"repeating": bytes.Repeat([]byte("gci "), 1000),
	}

	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		for name, data := range inputs {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				packed, err := codec.Compress(data)
				require.NoError(t, err)

				restored, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Equal(t, data, restored)
			})
		}
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, typ := range allTypes {
		codec, err := CreateCodec(typ, "payload")
		require.NoError(t, err)

		packed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, packed, typ.String())

		restored, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, restored, typ.String())
	}
}

func TestCodecs_Compressible(t *testing.T) {
	data := bytes.Repeat([]byte("discretization "), 400)

	for _, typ := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		packed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(packed), len(data)/4, typ.String())
	}
}

func TestCodecs_CorruptedInput(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}

	// LZ4 reports every malformed block as a short buffer and would grow to its limit.
	for _, typ := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, typ.String())
	}
}

func TestNoOpCompressor_SharesMemory(t *testing.T) {
	data := []byte{1, 2, 3}
	packed, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &packed[0])
}

func TestCreateCodec_Invalid(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0x9), "snapshot")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	require.Contains(t, err.Error(), "snapshot")

	_, err = GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestCompressionStats(t *testing.T) {
	stats := CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 200, CompressedSize: 50}
	require.InDelta(t, 0.25, stats.CompressionRatio(), 1e-12)
	require.InDelta(t, 75.0, stats.SpaceSavings(), 1e-12)

	grown := CompressionStats{OriginalSize: 100, CompressedSize: 110}
	require.Less(t, grown.SpaceSavings(), 0.0)

	require.Zero(t, CompressionStats{}.CompressionRatio())
}

func BenchmarkCodecs_Compress(b *testing.B) {
	data := columnPayload(4096)

	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(b, err)

		b.Run(typ.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_, _ = codec.Compress(data)
			}
		})
	}
}
