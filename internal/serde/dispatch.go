package serde

import (
	"errors"
	"reflect"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// ErrMalformedRefTag is returned when a value's leading byte is not one of
// the four recognized ref tags.
var ErrMalformedRefTag = errors.New("serde: malformed ref tag")

// RawStruct is what an unregistered STRUCT/NS_STRUCT-kind value decodes to
// when the resolver is configured to fabricate placeholders instead of
// raising unregistered-type: its wire payload is preserved verbatim,
// un-interpreted, exactly as base spec §8 S4 describes.
type RawStruct struct {
	Namespace string
	Name      string
	Fields    []byte
}

// Dispatcher is the per-message orchestrator tying the buffer, reference
// resolver, meta-string interner, and type resolver together: for every
// value it writes or reads the ref tag, then (unless the tag alone
// sufficed) the wire type id, then hands off to that type's Serializer.
//
// Reference: base spec §4.6's "dispatch core [...] calls these within a
// reference-resolver frame". Grounded on the teacher's internal/compression
// wrapper style for composing independent codec layers around a payload.
type Dispatcher struct {
	Types *typeresolver.Resolver
}

// trackableKind reports whether a value's Go kind can participate in
// identity sharing or cycles and so needs a generic ref tag rather than
// always writing NotNullValueFlag.
func trackableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.String:
		return true
	default:
		return false
	}
}

// structLike reports whether a kind's payload is wrapped in a length
// prefix so an unregistered occurrence can be skipped without
// understanding its contents.
func structLike(k typeresolver.Kind) bool {
	switch k {
	case typeresolver.KindStruct, typeresolver.KindPolymorphicStruct,
		typeresolver.KindCompatibleStruct, typeresolver.KindPolymorphicCompatibleStruct,
		typeresolver.KindNSStruct, typeresolver.KindNSPolymorphicStruct,
		typeresolver.KindNSCompatibleStruct, typeresolver.KindNSPolymorphicCompatibleStruct:
		return true
	default:
		return false
	}
}

// WriteValue writes v's ref tag, and if needed its wire type id and value
// payload, to buf.
func (d *Dispatcher) WriteValue(buf *buffer.Buffer, refs *refresolver.WriteResolver, msg *metastring.Resolver, v any) error {
	if v == nil {
		_, err := refs.WriteRef(buf, nil, false)
		return err
	}
	t := reflect.TypeOf(v)
	trackable := trackableKind(t.Kind())
	if info, ok := d.Types.LookupByType(t); ok && info.Serializer != nil && !info.Serializer.NeedsTracking() {
		trackable = false
	}
	needsWrite, err := refs.WriteRef(buf, v, trackable)
	if err != nil {
		return err
	}
	if !needsWrite {
		return nil
	}
	if _, isString := v.(string); !isString {
		defer refs.LeaveUntracked()
	}
	info, err := d.Types.WriteClassInfo(buf, msg, v)
	if err != nil {
		return err
	}
	if info.Serializer == nil {
		return typeresolver.ErrUnregisteredType
	}
	if structLike(info.TypeID.Kind()) {
		scratch := buffer.New(64)
		if err := info.Serializer.Write(scratch, v, refs, msg); err != nil {
			return err
		}
		buf.WriteLengthPrefixed(scratch.Bytes())
		return nil
	}
	return info.Serializer.Write(buf, v, refs, msg)
}

// ReadValue reads one value (ref tag, and if needed wire type id and
// payload) from buf.
func (d *Dispatcher) ReadValue(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error) {
	tag, err := refs.ReadTag(buf)
	if err != nil {
		return nil, err
	}
	switch tag {
	case refresolver.NullFlag:
		return nil, nil
	case refresolver.RefTag:
		return refs.ResolveRef(buf)
	case refresolver.NotNullValueFlag:
		return d.readTyped(buf, refs, msg)
	case refresolver.TrackFirstFlag:
		slot := refs.PreserveRefSlot()
		v, err := d.readTyped(buf, refs, msg)
		if err != nil {
			return nil, err
		}
		refs.SetRef(slot, v)
		return v, nil
	default:
		return nil, ErrMalformedRefTag
	}
}

// readTyped reads a wire type id and its payload.
func (d *Dispatcher) readTyped(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error) {
	info, err := d.Types.ReadClassInfo(buf, msg)
	if err != nil {
		return nil, err
	}
	if structLike(info.TypeID.Kind()) {
		payload, err := buf.ReadLengthPrefixed()
		if err != nil {
			return nil, err
		}
		if info.Serializer == nil {
			return RawStruct{Namespace: info.Namespace, Name: info.Name, Fields: payload}, nil
		}
		sub := buffer.Wrap(payload)
		return info.Serializer.Read(sub, refs, msg)
	}
	if info.Serializer == nil {
		return nil, typeresolver.ErrUnregisteredType
	}
	return info.Serializer.Read(buf, refs, msg)
}
