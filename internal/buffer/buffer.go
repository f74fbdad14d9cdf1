// Package buffer provides the growable byte buffer that underlies every read
// and write in the codec, plus the variable-length integer encodings layered
// on top of it.
//
// All multi-byte fixed-width values are little-endian. Variable-length
// integers use 7-bit groups with MSB continuation (LEB128-shaped), optionally
// zigzag-encoded for signed values.
//
// Reference: fury's MemoryBuffer (java/cpp) and Buffer.varint/SLI conventions.
package buffer

import (
	"encoding/binary"
	"errors"
	"math"
	"unsafe"
)

// Sentinel errors returned by buffer operations.
var (
	// ErrBufferTooSmall is returned when a read demands more bytes than remain.
	ErrBufferTooSmall = errors.New("buffer: not enough bytes remaining")
	// ErrVarintOverflow is returned when a varint exceeds its maximum encoded width.
	ErrVarintOverflow = errors.New("buffer: varint overflow")
	// ErrNegativeReserve is returned when Reserve is asked to grow by a negative amount.
	ErrNegativeReserve = errors.New("buffer: negative reserve amount")
)

// Maximum encoded byte widths for the variable-length integer formats.
const (
	MaxVarUint32Len = 5
	MaxVarUint64Len = 10
	SliSmallLen     = 4
	SliBigLen       = 9
)

// growThreshold is the capacity point (bytes) below which Reserve doubles and
// above which it grows by 1.5x, bounding large-buffer overshoot.
const growThreshold = 100 << 20 // 100 MiB

// streamSource adapts an external chunked byte source for on-demand backfill.
// It is implemented by *stream.Reader; declared here (rather than imported)
// to avoid a dependency cycle between buffer and stream.
type streamSource interface {
	// Fill appends at least min bytes to dst (if available) and returns the
	// extended slice. It returns io.EOF-shaped errors through err when the
	// source is exhausted before min bytes could be supplied.
	Fill(dst []byte, min int) ([]byte, error)
}

// Buffer is a contiguous byte region with three indices: capacity (len of the
// backing array), size (write watermark) and a reader cursor.
//
// Invariant: 0 <= reader <= size <= cap(data). Growth is monotonic; shrinking
// is an explicit post-use operation via Shrink.
type Buffer struct {
	data   []byte
	size   int
	reader int
	stream streamSource
}

// New creates an empty buffer with the given initial capacity.
func New(initialCap int) *Buffer {
	if initialCap < 0 {
		initialCap = 0
	}
	return &Buffer{data: make([]byte, 0, initialCap)}
}

// Wrap creates a buffer over an existing byte slice for reading. The slice is
// not copied; the caller must not mutate it while the buffer is in use.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data, size: len(data)}
}

// WithStream attaches an upstream chunked source used by FillBuffer when a
// read demands more bytes than are currently buffered.
func (b *Buffer) WithStream(s streamSource) *Buffer {
	b.stream = s
	return b
}

// Bytes returns the written portion of the buffer (indices [0, size)).
func (b *Buffer) Bytes() []byte { return b.data[:b.size] }

// Size returns the write watermark.
func (b *Buffer) Size() int { return b.size }

// Cap returns the physical capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// ReaderIndex returns the current read cursor.
func (b *Buffer) ReaderIndex() int { return b.reader }

// SetReaderIndex repositions the read cursor. REQUIRES: 0 <= idx <= Size().
func (b *Buffer) SetReaderIndex(idx int) { b.reader = idx }

// Remaining returns the number of unread bytes currently buffered.
func (b *Buffer) Remaining() int { return b.size - b.reader }

// Reserve ensures size+n <= cap(data), growing the backing array by the
// policy: 2x the required capacity below growThreshold, 1.5x above it.
// Existing data is preserved.
func (b *Buffer) Reserve(n int) error {
	if n < 0 {
		return ErrNegativeReserve
	}
	required := b.size + n
	if required <= cap(b.data) {
		return nil
	}
	var newCap int
	if required < growThreshold {
		newCap = required * 2
	} else {
		newCap = required + required/2
	}
	grown := make([]byte, b.size, newCap)
	copy(grown, b.data[:b.size])
	b.data = grown
	return nil
}

// Shrink releases surplus capacity beyond the current write watermark. It
// must not be called while a read or write is in progress on this buffer.
func (b *Buffer) Shrink() {
	if cap(b.data) == b.size {
		return
	}
	trimmed := make([]byte, b.size)
	copy(trimmed, b.data[:b.size])
	b.data = trimmed
}

// FillBuffer asks the attached stream for at least min more unread bytes,
// appending them at the write watermark. It is a no-op (returns nil) when
// Remaining() already satisfies min or no stream is attached.
func (b *Buffer) FillBuffer(min int) error {
	if b.Remaining() >= min {
		return nil
	}
	if b.stream == nil {
		return ErrBufferTooSmall
	}
	filled, err := b.stream.Fill(b.data[:b.size], min-b.Remaining())
	if err != nil {
		return err
	}
	b.data = filled
	b.size = len(filled)
	return nil
}

func (b *Buffer) grow(n int) {
	_ = b.Reserve(n)
	b.data = b.data[:b.size+n]
	b.size += n
}

// -----------------------------------------------------------------------------
// Fixed-width writes/reads (little-endian)
// -----------------------------------------------------------------------------

// WriteByte appends a single byte. Implements io.ByteWriter.
func (b *Buffer) WriteByte(v byte) error {
	b.grow(1)
	b.data[b.size-1] = v
	return nil
}

// WriteUint16LE appends a little-endian uint16.
func (b *Buffer) WriteUint16LE(v uint16) {
	b.grow(2)
	binary.LittleEndian.PutUint16(b.data[b.size-2:], v)
}

// WriteUint32LE appends a little-endian uint32.
func (b *Buffer) WriteUint32LE(v uint32) {
	b.grow(4)
	binary.LittleEndian.PutUint32(b.data[b.size-4:], v)
}

// WriteUint64LE appends a little-endian uint64. This is also the "LE_RAW_BYTES"
// 8-byte raw encoding used by SLI_INT64's large-value branch.
func (b *Buffer) WriteUint64LE(v uint64) {
	b.grow(8)
	binary.LittleEndian.PutUint64(b.data[b.size-8:], v)
}

// WriteFloat32LE appends a little-endian IEEE-754 float32.
func (b *Buffer) WriteFloat32LE(v float32) {
	b.WriteUint32LE(math.Float32bits(v))
}

// WriteFloat64LE appends a little-endian IEEE-754 float64.
func (b *Buffer) WriteFloat64LE(v float64) {
	b.WriteUint64LE(math.Float64bits(v))
}

// ReadByte consumes a single byte. Implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if err := b.FillBuffer(1); err != nil {
		return 0, err
	}
	v := b.data[b.reader]
	b.reader++
	return v, nil
}

// ReadUint16LE consumes a little-endian uint16.
func (b *Buffer) ReadUint16LE() (uint16, error) {
	if err := b.FillBuffer(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(b.data[b.reader:])
	b.reader += 2
	return v, nil
}

// ReadUint32LE consumes a little-endian uint32.
func (b *Buffer) ReadUint32LE() (uint32, error) {
	if err := b.FillBuffer(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(b.data[b.reader:])
	b.reader += 4
	return v, nil
}

// ReadUint64LE consumes a little-endian uint64.
func (b *Buffer) ReadUint64LE() (uint64, error) {
	if err := b.FillBuffer(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(b.data[b.reader:])
	b.reader += 8
	return v, nil
}

// ReadFloat32LE consumes a little-endian IEEE-754 float32.
func (b *Buffer) ReadFloat32LE() (float32, error) {
	v, err := b.ReadUint32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64LE consumes a little-endian IEEE-754 float64.
func (b *Buffer) ReadFloat64LE() (float64, error) {
	v, err := b.ReadUint64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// -----------------------------------------------------------------------------
// Bulk copy
// -----------------------------------------------------------------------------

// WriteBytes appends a raw byte slice with no length prefix.
func (b *Buffer) WriteBytes(p []byte) {
	n := len(p)
	b.grow(n)
	copy(b.data[b.size-n:], p)
}

// ReadBytes consumes and returns exactly n raw bytes. The returned slice
// aliases the buffer's backing array and must not be retained past the next
// mutation of this buffer.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := b.FillBuffer(n); err != nil {
		return nil, err
	}
	v := b.data[b.reader : b.reader+n]
	b.reader += n
	return v, nil
}

// UnsafeReadBytes consumes exactly n bytes via a pointer-aliasing slice
// header, advancing the reader index WITHOUT checking that n bytes are
// available. The caller must have already ensured availability (e.g. via a
// prior FillBuffer(n)); this exists for hot paths that already know the
// bound holds, mirroring the unsafe bulk-copy path of the base spec's memory
// buffer.
func (b *Buffer) UnsafeReadBytes(n int) []byte {
	p := unsafe.Pointer(&b.data[b.reader])
	b.reader += n
	return unsafe.Slice((*byte)(p), n)
}

// -----------------------------------------------------------------------------
// Variable-length unsigned integers: 7-bit groups, MSB continuation.
// -----------------------------------------------------------------------------

// WriteVarUint32 appends v as a canonical unsigned LEB128 varint truncated to
// at most MaxVarUint32Len bytes.
func (b *Buffer) WriteVarUint32(v uint32) int {
	const cont = 0x80
	n := 0
	for v >= cont {
		b.grow(1)
		b.data[b.size-1] = byte(v) | cont
		v >>= 7
		n++
	}
	b.grow(1)
	b.data[b.size-1] = byte(v)
	return n + 1
}

// ReadVarUint32 consumes a VarUint32, rejecting encodings wider than
// MaxVarUint32Len bytes as ErrVarintOverflow.
func (b *Buffer) ReadVarUint32() (uint32, error) {
	var result uint32
	for shift := uint(0); shift < 35; shift += 7 {
		v, err := b.ReadByte()
		if err != nil {
			return 0, err
		}
		if v < 0x80 {
			result |= uint32(v) << shift
			return result, nil
		}
		result |= uint32(v&0x7f) << shift
	}
	return 0, ErrVarintOverflow
}

// ReadVarUint32Small7 is the single-byte fast path for callers that know the
// value fits in 7 bits; it falls back to the general decoder on continuation.
func (b *Buffer) ReadVarUint32Small7() (uint32, error) {
	v, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	if v < 0x80 {
		return uint32(v), nil
	}
	b.reader--
	return b.ReadVarUint32()
}

// WriteVarUint64 appends v as a canonical unsigned LEB128 varint truncated to
// at most MaxVarUint64Len bytes.
func (b *Buffer) WriteVarUint64(v uint64) int {
	const cont = 0x80
	n := 0
	for v >= cont {
		b.grow(1)
		b.data[b.size-1] = byte(v) | cont
		v >>= 7
		n++
	}
	b.grow(1)
	b.data[b.size-1] = byte(v)
	return n + 1
}

// ReadVarUint64 consumes a VarUint64, rejecting encodings wider than
// MaxVarUint64Len bytes as ErrVarintOverflow.
func (b *Buffer) ReadVarUint64() (uint64, error) {
	var result uint64
	for shift := uint(0); shift < 70; shift += 7 {
		v, err := b.ReadByte()
		if err != nil {
			return 0, err
		}
		if v < 0x80 {
			result |= uint64(v) << shift
			return result, nil
		}
		result |= uint64(v&0x7f) << shift
	}
	return 0, ErrVarintOverflow
}

// -----------------------------------------------------------------------------
// Variable-length signed integers: ZigZag then VarUint.
// -----------------------------------------------------------------------------

// ZigZag32 maps a signed int32 to an unsigned uint32 so small-magnitude
// negatives encode as short varints.
func ZigZag32(v int32) uint32 { return (uint32(v) << 1) ^ uint32(v>>31) }

// UnZigZag32 is the inverse of ZigZag32.
func UnZigZag32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }

// ZigZag64 maps a signed int64 to an unsigned uint64.
func ZigZag64(v int64) uint64 { return (uint64(v) << 1) ^ uint64(v>>63) }

// UnZigZag64 is the inverse of ZigZag64.
func UnZigZag64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

// WriteVarInt32 zigzag-encodes v and writes it as a VarUint32.
func (b *Buffer) WriteVarInt32(v int32) int { return b.WriteVarUint32(ZigZag32(v)) }

// ReadVarInt32 reads a VarUint32 and un-zigzags it.
func (b *Buffer) ReadVarInt32() (int32, error) {
	v, err := b.ReadVarUint32()
	if err != nil {
		return 0, err
	}
	return UnZigZag32(v), nil
}

// WriteVarInt64 zigzag-encodes v and writes it as a VarUint64.
func (b *Buffer) WriteVarInt64(v int64) int { return b.WriteVarUint64(ZigZag64(v)) }

// ReadVarInt64 reads a VarUint64 and un-zigzags it.
func (b *Buffer) ReadVarInt64() (int64, error) {
	v, err := b.ReadVarUint64()
	if err != nil {
		return 0, err
	}
	return UnZigZag64(v), nil
}

// -----------------------------------------------------------------------------
// SLI_INT64 ("small long integer"): 4-byte fast path, 9-byte fallback.
// -----------------------------------------------------------------------------

// sliBound is the inclusive/exclusive range [-2^30, 2^30) that fits the
// 4-byte SLI fast path (value<<1 must still fit in a signed 31-bit field).
const sliBound = 1 << 30

// WriteSliInt64 writes v using the SLI_INT64 encoding: if v fits in
// [-2^30, 2^30), emits (v<<1) as 4 little-endian bytes with the low bit
// clear; otherwise emits a marker byte of 1 followed by 8 little-endian
// bytes holding v.
func (b *Buffer) WriteSliInt64(v int64) {
	if v >= -sliBound && v < sliBound {
		b.WriteUint32LE(uint32(v) << 1)
		return
	}
	b.grow(1)
	b.data[b.size-1] = 1
	b.WriteUint64LE(uint64(v))
}

// ReadSliInt64 is the symmetric inverse of WriteSliInt64.
func (b *Buffer) ReadSliInt64() (int64, error) {
	if err := b.FillBuffer(1); err != nil {
		return 0, err
	}
	marker := b.data[b.reader]
	if marker&1 == 0 {
		u, err := b.ReadUint32LE()
		if err != nil {
			return 0, err
		}
		return int64(int32(u)) >> 1, nil
	}
	b.reader++
	u, err := b.ReadUint64LE()
	if err != nil {
		return 0, err
	}
	return int64(u), nil
}

// -----------------------------------------------------------------------------
// Length-prefixed byte slices
// -----------------------------------------------------------------------------

// WriteLengthPrefixed writes a VarUint32 length followed by the bytes.
func (b *Buffer) WriteLengthPrefixed(p []byte) {
	b.WriteVarUint32(uint32(len(p)))
	b.WriteBytes(p)
}

// ReadLengthPrefixed reads a VarUint32 length, then exactly that many bytes.
func (b *Buffer) ReadLengthPrefixed() ([]byte, error) {
	n, err := b.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	return b.ReadBytes(int(n))
}
