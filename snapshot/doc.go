// Package snapshot archives a report.Report in a compact binary form.
//
// # Layout
//
// A snapshot is a fixed 32-byte header followed by the stored payload:
//
//	+-------------------+------------------------------------------+
//	| Header (32 bytes) | Payload (optionally compressed)          |
//	+-------------------+------------------------------------------+
//
// Header fields, in header byte order except Options (always little-endian):
//
//	0-1    Options: bit 0 big-endian, bit 1 key collision, bits 4-15 magic
//	2      Version
//	3      Compression type (low nibble) and float encoding (high nibble)
//	4-7    Level count
//	8-11   Response count
//	12-15  Parameter count
//	16-19  Stored payload size
//	20-23  Raw payload size
//	24-31  xxHash64 of header bytes 0-23 and the stored payload
//
// The raw payload holds, in order: the report metadata strings, the parameter
// names, the sizes column, the key index (16-byte entries of key hash and
// column offset), the key names and one column block per response. Strings
// carry a uint16 length prefix. A column block holds the values, the estimate,
// a uint16 count of order terms and that many order values, the parameters,
// errors, uncertainties and the two failure texts. With format.TypeGorilla every float column
// except the estimate is a Gorilla XOR stream behind a uint32 byte length;
// otherwise floats are stored as 8-byte words.
//
// # Usage
//
//	data, err := snapshot.Encode(rep, snapshot.WithCompression(format.CompressionZstd))
//	...
//	rep, err := snapshot.Decode(data)
//
// A Reader resolves a single response through the hashed key index without
// materializing the rest:
//
//	rd, err := snapshot.NewReader(data)
//	resp, err := rd.Response("drag")
package snapshot
