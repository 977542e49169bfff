package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestChecksum(t *testing.T) {
	require.Equal(t, ID("test"), Checksum([]byte("test")))
	require.Equal(t, uint64(0xef46db3751d8e999), Checksum(nil))
	require.NotEqual(t, Checksum([]byte{1, 2, 3}), Checksum([]byte{1, 2, 4}))
}

func TestDigest(t *testing.T) {
	d := NewDigest()
	d.Write([]byte("this is a longer "))
	d.Write([]byte("test string to hash"))

	require.Equal(t, ID("this is a longer test string to hash"), d.Sum())
}

func BenchmarkID(b *testing.B) {
	key := "System Response Quantity"
	for b.Loop() {
		ID(key)
	}
}
