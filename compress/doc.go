// Package compress provides the compression codecs applied to snapshot payloads.
//
// A snapshot payload holds the float64 columns and names of a report. The
// codecs trade speed for size:
//   - None: No compression (fastest, largest)
//   - Zstd: Best ratio, suited to archived studies
//   - S2: Balanced compression and speed
//   - LZ4: Fastest decompression
//
// # Architecture
//
// The package defines three interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Built-in codecs are stateless and safe for concurrent use. Zstd and LZ4
// keep their encoders and decoders in sync.Pool instances.
//
// # Zstd backends
//
// The pure Go klauspost/compress implementation is used by default. Building
// with cgo and the gozstd tag switches to the valyala/gozstd binding:
//
//	go build -tags gozstd ./...
//
// Both backends produce standard Zstandard frames, so snapshots written by one
// are readable by the other.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
package compress
