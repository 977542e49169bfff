// Package hash computes the xxHash64 values stored in snapshots.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a response key.
func ID(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Checksum computes the xxHash64 of a snapshot payload.
func Checksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// Digest accumulates a checksum over several byte slices.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty Digest.
func NewDigest() Digest {
	return Digest{d: xxhash.New()}
}

// Write adds p to the running checksum.
func (d Digest) Write(p []byte) {
	_, _ = d.d.Write(p)
}

// Sum returns the checksum of everything written so far.
func (d Digest) Sum() uint64 {
	return d.d.Sum64()
}
