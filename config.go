package fury

import (
	"github.com/chaokunyang/fury/internal/checksum"
	"github.com/chaokunyang/fury/internal/compression"
	"github.com/chaokunyang/fury/internal/logging"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// Logger is an alias for the logging.Logger interface, letting callers pass
// their own implementation without importing the internal package.
type Logger = logging.Logger

// SecurityChecker is an alias for the type resolver's registration gate.
type SecurityChecker = typeresolver.SecurityChecker

// ChecksumType selects the frame-integrity checksum algorithm.
type ChecksumType = checksum.Type

// Checksum type constants.
const (
	ChecksumNone  = checksum.TypeNoChecksum
	ChecksumCRC32 = checksum.TypeCRC32C
	ChecksumXXH3  = checksum.TypeXXH3
)

// CompressionType selects the large-payload compression algorithm.
type CompressionType = compression.Type

// Compression type constants.
const (
	CompressionNone   = compression.NoCompression
	CompressionSnappy = compression.SnappyCompression
	CompressionLZ4    = compression.LZ4Compression
	CompressionZstd   = compression.ZstdCompression
)

// Language selects whether a message targets this runtime only or must
// remain decodable by another language's implementation of the same wire
// format. CROSS forces string reference tracking on regardless of
// IgnoreStringRef, since strings are the only basic type other runtimes can
// still share an instance of.
type Language uint8

const (
	// SameRuntime omits nothing mandated by cross-language decoders; this
	// mode exists only to let IgnoreStringRef take effect.
	SameRuntime Language = iota
	// Cross is the portable mode base spec §4.4/§9 describes as the default
	// expectation for this wire format.
	Cross
)

// LongEncoding selects how int64-shaped values are written.
type LongEncoding uint8

const (
	// LongEncodingSLI is the 4-byte-fast-path/9-byte-fallback small long
	// integer encoding (base spec §4.1).
	LongEncodingSLI LongEncoding = iota
	// LongEncodingRaw always writes 8 raw little-endian bytes.
	LongEncodingRaw
	// LongEncodingPVL is VarInt64 (ZigZag then VarUint64).
	LongEncodingPVL
)

// CompatibleMode selects schema-evolution strictness.
type CompatibleMode uint8

const (
	// SchemaConsistent is the default: a reader and writer must agree on
	// struct shape; this codec does not implement field-level evolution (see
	// base spec §1 Non-goals), so this mode exists for API completeness and
	// to exercise the flag's wire-level effect (no per-class version hash is
	// ever emitted by this implementation either way — see Compatible below).
	SchemaConsistent CompatibleMode = iota
	// Compatible disables any checkClassVersion-style enforcement (base spec
	// §9: "whenever compatible mode is enabled, the per-class version hash
	// must not be emitted or validated").
	Compatible
)

// Config controls every behavior base spec §6 names, plus the two optional
// header extensions (frame checksum, payload compression) this
// implementation adds on reserved flag bits. DefaultConfig's zero-extension
// fields reproduce every literal wire example in base spec §8 byte-for-byte.
type Config struct {
	// Language gates cross-language wire-format strictness. Default: SameRuntime.
	Language Language

	// TrackRef is the master switch for the reference resolver. When false,
	// only NULL/NOT_NULL_VALUE tags are ever written and a self-referential
	// graph raises KindCircularWithoutTracking past 256 levels of recursion.
	// Default: true.
	TrackRef bool

	// IgnoreStringRef suppresses content-based string deduplication, making
	// every string occurrence write inline. Forced back on whenever Language
	// is Cross. Default: false.
	IgnoreStringRef bool

	// CompressInt selects VarInt32 encoding for int32 values in place of raw
	// 4-byte little-endian. Default: true.
	CompressInt bool

	// LongEncoding selects the int64 wire encoding. Default: LongEncodingSLI.
	LongEncoding LongEncoding

	// CompressString enables the shorter meta-string-style encoding for
	// ASCII-only string payloads. Default: false.
	CompressString bool

	// CompatibleMode controls class-version enforcement strictness. Default:
	// SchemaConsistent.
	CompatibleMode CompatibleMode

	// RequireClassRegistration, when true, makes an unregistered NS_-kind or
	// numeric type id raise KindUnregisteredType on read instead of being
	// fabricated as a placeholder. Default: true.
	RequireClassRegistration bool

	// DeserializeUnexistentClass allows fabricating a placeholder for an
	// unregistered type on read; only takes effect when
	// RequireClassRegistration is false. Default: false.
	DeserializeUnexistentClass bool

	// ShareMetaContext keeps one meta-string intern pool across every
	// Serialize/Deserialize call on a *Fury instance instead of starting a
	// fresh one per message. Default: false.
	ShareMetaContext bool

	// Security vets a native type before registration, or before an
	// unregistered type is allowed through as a fallback. Nil allows
	// everything. Default: nil.
	Security SecurityChecker

	// Logger receives informational messages; logging never substitutes for
	// a returned error. Default: nil (a stderr DefaultLogger is used).
	Logger Logger

	// FrameChecksum appends a masked checksum after the payload on write and
	// verifies it on read (header bit 5). Default: false.
	FrameChecksum bool
	// ChecksumType selects the algorithm FrameChecksum uses. Default: ChecksumXXH3.
	ChecksumType ChecksumType

	// PayloadCompression compresses the whole message payload (everything
	// after the header) when it is at or above CompressionThreshold bytes;
	// header bit 6 records whether it was compressed. Default: false.
	PayloadCompression bool
	// CompressionType selects the algorithm PayloadCompression uses. Default: CompressionSnappy.
	CompressionType CompressionType
	// CompressionThreshold is the minimum uncompressed payload length, in
	// bytes, PayloadCompression will act on. Default: 1024.
	CompressionThreshold int
}

// DefaultConfig returns a Config matching base spec §8's literal wire
// examples byte-for-byte: reference tracking on, int compression on, SLI
// long encoding, schema-consistent mode, class registration required, both
// header extensions off.
func DefaultConfig() *Config {
	return &Config{
		Language:                   SameRuntime,
		TrackRef:                   true,
		IgnoreStringRef:            false,
		CompressInt:                true,
		LongEncoding:               LongEncodingSLI,
		CompressString:             false,
		CompatibleMode:             SchemaConsistent,
		RequireClassRegistration:   true,
		DeserializeUnexistentClass: false,
		ShareMetaContext:           false,
		Security:                   nil,
		Logger:                     nil,
		FrameChecksum:              false,
		ChecksumType:               ChecksumXXH3,
		PayloadCompression:         false,
		CompressionType:            CompressionSnappy,
		CompressionThreshold:       1024,
	}
}
