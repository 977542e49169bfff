package format

import (
	"testing"

	"github.com/arloliu/gridverify/errs"
	"github.com/stretchr/testify/require"
)

func TestCompressionType_String(t *testing.T) {
	require.Equal(t, "None", CompressionNone.String())
	require.Equal(t, "Zstd", CompressionZstd.String())
	require.Equal(t, "S2", CompressionS2.String())
	require.Equal(t, "LZ4", CompressionLZ4.String())
	require.Equal(t, "Unknown", CompressionType(0).String())
	require.Equal(t, "Unknown", CompressionType(0x9).String())
}

func TestCompressionType_Valid(t *testing.T) {
	require.True(t, CompressionNone.Valid())
	require.True(t, CompressionLZ4.Valid())
	require.False(t, CompressionType(0).Valid())
	require.False(t, CompressionType(0x5).Valid())
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name string
		want CompressionType
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"ZSTD", CompressionZstd},
		{" s2 ", CompressionS2},
		{"lz4", CompressionLZ4},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.name)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.want, got, tt.name)
	}

	_, err := ParseCompression("gzip")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	require.Contains(t, err.Error(), "gzip")
}

func TestEncodingType(t *testing.T) {
	require.Equal(t, "Raw", TypeRaw.String())
	require.Equal(t, "Gorilla", TypeGorilla.String())
	require.Equal(t, "Unknown", EncodingType(0).String())
	require.True(t, TypeGorilla.Valid())
	require.False(t, EncodingType(0x3).Valid())

	got, err := ParseEncoding("Gorilla")
	require.NoError(t, err)
	require.Equal(t, TypeGorilla, got)

	got, err = ParseEncoding("")
	require.NoError(t, err)
	require.Equal(t, TypeRaw, got)

	_, err = ParseEncoding("delta")
	require.ErrorIs(t, err, errs.ErrInvalidEncoding)
}
