package typeresolver

import (
	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
)

// Dispatch is implemented by the serde package's Dispatcher. Container
// serializers (list/set/map) hold one so they can recurse into arbitrary
// element values through the same ref-tag/type-id/payload pipeline every
// top-level value goes through, instead of duplicating it.
type Dispatch interface {
	WriteValue(buf *buffer.Buffer, refs *refresolver.WriteResolver, msg *metastring.Resolver, v any) error
	ReadValue(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error)
}

// Serializer is the contract every per-type codec implements. The dispatch
// core in the serde package calls these from within a reference-resolver
// frame; NeedsTracking lets a serializer short-circuit that frame for
// values that can never participate in identity sharing or cycles. msg
// carries the per-message meta-string interning state, needed only by
// serializers (namespaced structs, containers of them) that recurse into
// NS_-kind class info.
type Serializer interface {
	Write(buf *buffer.Buffer, v any, refs *refresolver.WriteResolver, msg *metastring.Resolver) error
	Read(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error)
	Copy(v any) any
	NeedsTracking() bool
}
