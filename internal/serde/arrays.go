package serde

import (
	"math"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// typedArraySerializer handles one of the fixed-width typed-array default
// registrations: a VarUint32 element count followed by each element packed
// at fixed width, with no per-element ref tag since primitives are never
// null or shared.
type typedArraySerializer struct {
	length  func(v any) int
	writeAt func(buf *buffer.Buffer, v any, i int)
	read    func(buf *buffer.Buffer, n int) (any, error)
}

func (s typedArraySerializer) Write(buf *buffer.Buffer, v any, _ *refresolver.WriteResolver, _ *metastring.Resolver) error {
	n := s.length(v)
	buf.WriteVarUint32(uint32(n))
	for i := 0; i < n; i++ {
		s.writeAt(buf, v, i)
	}
	return nil
}

func (s typedArraySerializer) Read(buf *buffer.Buffer, _ *refresolver.ReadResolver, _ *metastring.Resolver) (any, error) {
	n, err := buf.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	return s.read(buf, int(n))
}

func (typedArraySerializer) Copy(v any) any { return v }

func (typedArraySerializer) NeedsTracking() bool { return true }

var boolArraySerializer = typedArraySerializer{
	length: func(v any) int { return len(v.([]bool)) },
	writeAt: func(buf *buffer.Buffer, v any, i int) {
		if v.([]bool)[i] {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	},
	read: func(buf *buffer.Buffer, n int) (any, error) {
		out := make([]bool, n)
		for i := 0; i < n; i++ {
			b, err := buf.ReadByte()
			if err != nil {
				return nil, err
			}
			out[i] = b != 0
		}
		return out, nil
	},
}

var int16ArraySerializer = typedArraySerializer{
	length: func(v any) int { return len(v.([]int16)) },
	writeAt: func(buf *buffer.Buffer, v any, i int) {
		buf.WriteUint16LE(uint16(v.([]int16)[i]))
	},
	read: func(buf *buffer.Buffer, n int) (any, error) {
		out := make([]int16, n)
		for i := 0; i < n; i++ {
			u, err := buf.ReadUint16LE()
			if err != nil {
				return nil, err
			}
			out[i] = int16(u)
		}
		return out, nil
	},
}

var int32ArraySerializer = typedArraySerializer{
	length: func(v any) int { return len(v.([]int32)) },
	writeAt: func(buf *buffer.Buffer, v any, i int) {
		buf.WriteUint32LE(uint32(v.([]int32)[i]))
	},
	read: func(buf *buffer.Buffer, n int) (any, error) {
		out := make([]int32, n)
		for i := 0; i < n; i++ {
			u, err := buf.ReadUint32LE()
			if err != nil {
				return nil, err
			}
			out[i] = int32(u)
		}
		return out, nil
	},
}

var int64ArraySerializer = typedArraySerializer{
	length: func(v any) int { return len(v.([]int64)) },
	writeAt: func(buf *buffer.Buffer, v any, i int) {
		buf.WriteUint64LE(uint64(v.([]int64)[i]))
	},
	read: func(buf *buffer.Buffer, n int) (any, error) {
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			u, err := buf.ReadUint64LE()
			if err != nil {
				return nil, err
			}
			out[i] = int64(u)
		}
		return out, nil
	},
}

var float32ArraySerializer = typedArraySerializer{
	length: func(v any) int { return len(v.([]float32)) },
	writeAt: func(buf *buffer.Buffer, v any, i int) {
		buf.WriteUint32LE(math.Float32bits(v.([]float32)[i]))
	},
	read: func(buf *buffer.Buffer, n int) (any, error) {
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			u, err := buf.ReadUint32LE()
			if err != nil {
				return nil, err
			}
			out[i] = math.Float32frombits(u)
		}
		return out, nil
	},
}

var float64ArraySerializer = typedArraySerializer{
	length: func(v any) int { return len(v.([]float64)) },
	writeAt: func(buf *buffer.Buffer, v any, i int) {
		buf.WriteUint64LE(math.Float64bits(v.([]float64)[i]))
	},
	read: func(buf *buffer.Buffer, n int) (any, error) {
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			u, err := buf.ReadUint64LE()
			if err != nil {
				return nil, err
			}
			out[i] = math.Float64frombits(u)
		}
		return out, nil
	},
}

// RegisterArrays wires the built-in Serializer for every typed-array
// default registration.
func RegisterArrays(r *typeresolver.Resolver) {
	install(r, []bool(nil), boolArraySerializer)
	install(r, []int16(nil), int16ArraySerializer)
	install(r, []int32(nil), int32ArraySerializer)
	install(r, []int64(nil), int64ArraySerializer)
	install(r, []float32(nil), float32ArraySerializer)
	install(r, []float64(nil), float64ArraySerializer)
}
