// xxh3.go wraps github.com/zeebo/xxh3, the same hashing library
// internal/metastring uses for its intern-time content hash, so frame
// checksums and meta-string hashing share one implementation instead of two.
//
// Reference: https://github.com/Cyan4973/xxHash for the algorithm;
// RocksDB v10.7.5 table/format.cc (ComputeBuiltinChecksum) for the
// last-byte-folding convention below.
package checksum

import "github.com/zeebo/xxh3"

// xxh3LastByteFoldPrime folds a trailing byte (the compression-type flag)
// into a checksum computed over the rest of the frame.
const xxh3LastByteFoldPrime = 0x6b9083d9

// XXH3_64bits computes the 64-bit XXH3 hash of data.
func XXH3_64bits(data []byte) uint64 {
	return xxh3.Hash(data)
}

// XXH3Checksum computes a 32-bit checksum (the low 32 bits of the XXH3 hash,
// not masked) over data[:len-1], folding
// in the last byte separately. Used when a trailing compression-type byte
// must vary the checksum without being hashed as ordinary payload.
func XXH3Checksum(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	h := XXH3_64bits(data[:len(data)-1])
	return foldLastByte(uint32(h), data[len(data)-1])
}

// XXH3ChecksumWithLastByte computes the same checksum as
// XXH3Checksum, but over all of data, with lastByte (not itself part of
// data) folded in separately.
func XXH3ChecksumWithLastByte(data []byte, lastByte byte) uint32 {
	h := XXH3_64bits(data)
	return foldLastByte(uint32(h), lastByte)
}

func foldLastByte(v uint32, lastByte byte) uint32 {
	return v ^ (uint32(lastByte) * xxh3LastByteFoldPrime)
}
