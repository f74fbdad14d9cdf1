// Package serde provides the built-in Serializer implementations for the
// default-registration type set and the struct/list/set/map dispatch that
// recurses through a typeresolver.Resolver for everything else.
//
// Reference: base spec §4.6. Grounded on the teacher's internal/encoding
// fixed-width/varint codecs for the primitive writers and on
// internal/compression's wrapper style for how a Serializer composes with
// the buffer and reference-resolver layers beneath it.
package serde

import (
	"time"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// primitiveSerializer implements typeresolver.Serializer for a value kind
// that is never reference-tracked: booleans, fixed and variable-width
// integers, and floats always write inline.
type primitiveSerializer struct {
	write func(buf *buffer.Buffer, v any)
	read  func(buf *buffer.Buffer) (any, error)
}

func (s primitiveSerializer) Write(buf *buffer.Buffer, v any, _ *refresolver.WriteResolver, _ *metastring.Resolver) error {
	s.write(buf, v)
	return nil
}

func (s primitiveSerializer) Read(buf *buffer.Buffer, _ *refresolver.ReadResolver, _ *metastring.Resolver) (any, error) {
	return s.read(buf)
}

func (s primitiveSerializer) Copy(v any) any { return v }

func (primitiveSerializer) NeedsTracking() bool { return false }

var boolSerializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) {
		if v.(bool) {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	},
	read: func(buf *buffer.Buffer) (any, error) {
		b, err := buf.ReadByte()
		return b != 0, err
	},
}

var int8Serializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteByte(byte(v.(int8))) },
	read: func(buf *buffer.Buffer) (any, error) {
		b, err := buf.ReadByte()
		return int8(b), err
	},
}

var int16Serializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteUint16LE(uint16(v.(int16))) },
	read: func(buf *buffer.Buffer) (any, error) {
		u, err := buf.ReadUint16LE()
		return int16(u), err
	},
}

// int32Serializer uses the VarInt32 zigzag path, matching the S2 wire
// example for int-compression mode.
var int32Serializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteVarInt32(v.(int32)) },
	read: func(buf *buffer.Buffer) (any, error) {
		return buf.ReadVarInt32()
	},
}

// int64Serializer uses SLI_INT64: a 4-byte fast path for values in
// [-2^30, 2^30) and a 9-byte fallback otherwise.
var int64Serializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteSliInt64(v.(int64)) },
	read: func(buf *buffer.Buffer) (any, error) {
		return buf.ReadSliInt64()
	},
}

var float32Serializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteFloat32LE(v.(float32)) },
	read: func(buf *buffer.Buffer) (any, error) {
		return buf.ReadFloat32LE()
	},
}

var float64Serializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteFloat64LE(v.(float64)) },
	read: func(buf *buffer.Buffer) (any, error) {
		return buf.ReadFloat64LE()
	},
}

// durationSerializer writes a signed-nanosecond duration as a VarInt64.
var durationSerializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteVarInt64(int64(v.(time.Duration))) },
	read: func(buf *buffer.Buffer) (any, error) {
		n, err := buf.ReadVarInt64()
		return time.Duration(n), err
	},
}

// timestampSerializer writes wall-clock time as signed nanoseconds since
// the Unix epoch.
var timestampSerializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteVarInt64(v.(time.Time).UnixNano()) },
	read: func(buf *buffer.Buffer) (any, error) {
		n, err := buf.ReadVarInt64()
		if err != nil {
			return nil, err
		}
		return time.Unix(0, n).UTC(), nil
	},
}

// RegisterPrimitives wires the built-in Serializer for every primitive
// default registration a Resolver starts with.
func RegisterPrimitives(r *typeresolver.Resolver) {
	install(r, false, boolSerializer)
	install(r, int8(0), int8Serializer)
	install(r, int16(0), int16Serializer)
	install(r, int32(0), int32Serializer)
	install(r, int64(0), int64Serializer)
	install(r, float32(0), float32Serializer)
	install(r, float64(0), float64Serializer)
	install(r, time.Duration(0), durationSerializer)
	install(r, time.Time{}, timestampSerializer)
}

// int32RawSerializer writes int32 as 4 raw little-endian bytes, the
// compress_int=false path.
var int32RawSerializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteUint32LE(uint32(v.(int32))) },
	read: func(buf *buffer.Buffer) (any, error) {
		u, err := buf.ReadUint32LE()
		return int32(u), err
	},
}

// int64RawSerializer writes int64 as 8 raw little-endian bytes, the
// LE_RAW_BYTES long_encoding path.
var int64RawSerializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteUint64LE(uint64(v.(int64))) },
	read: func(buf *buffer.Buffer) (any, error) {
		u, err := buf.ReadUint64LE()
		return int64(u), err
	},
}

// int64PVLSerializer writes int64 as a VarInt64, the PVL long_encoding path.
var int64PVLSerializer = primitiveSerializer{
	write: func(buf *buffer.Buffer, v any) { buf.WriteVarInt64(v.(int64)) },
	read: func(buf *buffer.Buffer) (any, error) {
		return buf.ReadVarInt64()
	},
}

// LongEncoding mirrors the façade's long_encoding selection.
type LongEncoding uint8

const (
	LongEncodingSLI LongEncoding = iota
	LongEncodingRaw
	LongEncodingPVL
)

// InstallIntCodecs overrides the default int32/int64 serializers to match
// compress_int and long_encoding. It is called once at Resolver
// construction, never per value: base spec §6's configuration flags are
// fixed for a codec instance's lifetime, not chosen per call.
func InstallIntCodecs(r *typeresolver.Resolver, compressInt bool, long LongEncoding) {
	if !compressInt {
		install(r, int32(0), int32RawSerializer)
	}
	switch long {
	case LongEncodingRaw:
		install(r, int64(0), int64RawSerializer)
	case LongEncodingPVL:
		install(r, int64(0), int64PVLSerializer)
	}
}
