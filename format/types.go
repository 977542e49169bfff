// Package format defines the wire enums shared by the snapshot codecs and
// float column encodings.
package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/gridverify/errs"
)

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the known compression types.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompression resolves a case-insensitive compression name such as
// "zstd" or "none".
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q (supported: none, zstd, s2, lz4)", errs.ErrInvalidCompression, name)
	}
}

// EncodingType selects how float columns are laid out in a payload.
type EncodingType uint8

const (
	TypeRaw     EncodingType = 0x1 // TypeRaw stores every float as 8 bytes.
	TypeGorilla EncodingType = 0x2 // TypeGorilla stores float columns as XOR-compressed bit streams.
)

func (e EncodingType) String() string {
	switch e {
	case TypeRaw:
		return "Raw"
	case TypeGorilla:
		return "Gorilla"
	default:
		return "Unknown"
	}
}

// Valid reports whether e is one of the known encoding types.
func (e EncodingType) Valid() bool {
	return e == TypeRaw || e == TypeGorilla
}

// ParseEncoding resolves a case-insensitive encoding name such as "raw" or
// "gorilla".
func ParseEncoding(name string) (EncodingType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "raw":
		return TypeRaw, nil
	case "gorilla":
		return TypeGorilla, nil
	default:
		return 0, fmt.Errorf("%w: %q (supported: raw, gorilla)", errs.ErrInvalidEncoding, name)
	}
}
