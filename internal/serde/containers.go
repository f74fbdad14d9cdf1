package serde

import (
	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// listSerializer handles the LIST default registration ([]any): a
// VarUint32 element count followed by each element written through the
// dispatch core, so arbitrarily nested values recurse through the same
// ref-tag/type-id pipeline a top-level value goes through.
type listSerializer struct {
	dispatch typeresolver.Dispatch
}

func (s listSerializer) Write(buf *buffer.Buffer, v any, refs *refresolver.WriteResolver, msg *metastring.Resolver) error {
	items := v.([]any)
	buf.WriteVarUint32(uint32(len(items)))
	for _, item := range items {
		if err := s.dispatch.WriteValue(buf, refs, msg, item); err != nil {
			return err
		}
	}
	return nil
}

func (s listSerializer) Read(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error) {
	n, err := buf.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		v, err := s.dispatch.ReadValue(buf, refs, msg)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (listSerializer) Copy(v any) any {
	items := v.([]any)
	out := make([]any, len(items))
	copy(out, items)
	return out
}

func (listSerializer) NeedsTracking() bool { return true }

// setSerializer handles the SET default registration (*typeresolver.Set):
// a VarUint32 element count followed by each element written through the
// dispatch core, in insertion order.
type setSerializer struct {
	dispatch typeresolver.Dispatch
}

func (s setSerializer) Write(buf *buffer.Buffer, v any, refs *refresolver.WriteResolver, msg *metastring.Resolver) error {
	set := v.(*typeresolver.Set)
	values := set.Values()
	buf.WriteVarUint32(uint32(len(values)))
	for _, item := range values {
		if err := s.dispatch.WriteValue(buf, refs, msg, item); err != nil {
			return err
		}
	}
	return nil
}

func (s setSerializer) Read(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error) {
	n, err := buf.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	set := typeresolver.NewSet()
	for i := uint32(0); i < n; i++ {
		v, err := s.dispatch.ReadValue(buf, refs, msg)
		if err != nil {
			return nil, err
		}
		set.Add(v)
	}
	return set, nil
}

func (setSerializer) Copy(v any) any {
	src := v.(*typeresolver.Set)
	return typeresolver.NewSet(src.Values()...)
}

func (setSerializer) NeedsTracking() bool { return true }

// mapSerializer handles the MAP default registration (map[any]any): a
// VarUint32 pair count followed by each key then value written through the
// dispatch core.
type mapSerializer struct {
	dispatch typeresolver.Dispatch
}

func (s mapSerializer) Write(buf *buffer.Buffer, v any, refs *refresolver.WriteResolver, msg *metastring.Resolver) error {
	m := v.(map[any]any)
	buf.WriteVarUint32(uint32(len(m)))
	for k, val := range m {
		if err := s.dispatch.WriteValue(buf, refs, msg, k); err != nil {
			return err
		}
		if err := s.dispatch.WriteValue(buf, refs, msg, val); err != nil {
			return err
		}
	}
	return nil
}

func (s mapSerializer) Read(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error) {
	n, err := buf.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	out := make(map[any]any, n)
	for i := uint32(0); i < n; i++ {
		k, err := s.dispatch.ReadValue(buf, refs, msg)
		if err != nil {
			return nil, err
		}
		val, err := s.dispatch.ReadValue(buf, refs, msg)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

func (mapSerializer) Copy(v any) any {
	src := v.(map[any]any)
	out := make(map[any]any, len(src))
	for k, val := range src {
		out[k] = val
	}
	return out
}

func (mapSerializer) NeedsTracking() bool { return true }

// RegisterContainers wires the built-in Serializer for the LIST, SET, and
// MAP default registrations. dispatch is how each recurses into its
// elements; it is the Dispatcher the caller already built around the same
// Resolver, passed back in through the typeresolver.Dispatch interface to
// avoid a cyclic import between this package and typeresolver.
func RegisterContainers(r *typeresolver.Resolver, dispatch typeresolver.Dispatch) {
	install(r, []any(nil), listSerializer{dispatch: dispatch})
	install(r, (*typeresolver.Set)(nil), setSerializer{dispatch: dispatch})
	install(r, map[any]any(nil), mapSerializer{dispatch: dispatch})
}
