package serde

import (
	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// binarySerializer handles the BINARY default registration: a raw,
// length-prefixed byte slice.
type binarySerializer struct{}

func (binarySerializer) Write(buf *buffer.Buffer, v any, _ *refresolver.WriteResolver, _ *metastring.Resolver) error {
	buf.WriteLengthPrefixed(v.([]byte))
	return nil
}

func (binarySerializer) Read(buf *buffer.Buffer, _ *refresolver.ReadResolver, _ *metastring.Resolver) (any, error) {
	return buf.ReadLengthPrefixed()
}

func (binarySerializer) Copy(v any) any {
	src := v.([]byte)
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

func (binarySerializer) NeedsTracking() bool { return true }

// RegisterBinary wires the built-in Serializer for the default []byte
// registration.
func RegisterBinary(r *typeresolver.Resolver) {
	install(r, []byte(nil), binarySerializer{})
}
