// Package refresolver implements reference tracking across a single
// (de)serialized message: preserving object identity and cycles on write,
// and resolving back-references to previously materialized values on read.
//
// Reference: base spec §4.4. Grounded on the teacher's internal/cache
// identity-then-fallback lookup idiom, generalized from a byte-slice LRU to
// a per-message identity table that never evicts.
package refresolver

import (
	"errors"
	"reflect"

	"github.com/chaokunyang/fury/internal/buffer"
)

// RefFlag is the one-byte tag written ahead of every reference-trackable
// value, telling the reader how to obtain it.
type RefFlag byte

const (
	// NullFlag marks an absent value; nothing follows it on the wire.
	NullFlag RefFlag = 0
	// RefTag marks a back-reference; a VarUint32 ref id follows.
	RefTag RefFlag = 1
	// NotNullValueFlag marks a non-null value that is not being tracked;
	// the value's own encoding follows directly.
	NotNullValueFlag RefFlag = 2
	// TrackFirstFlag marks the first occurrence of a tracked value; the
	// value's own encoding follows, and it is assigned the next ref id.
	TrackFirstFlag RefFlag = 3
)

// maxUntrackedDepth bounds how deeply WriteRef will recurse while tracking
// is disabled. Without an identity table there is no other way to notice a
// cycle, so a recursion this deep is treated as one.
const maxUntrackedDepth = 256

// ErrCircularWithoutTracking is returned when a value graph recurses past
// maxUntrackedDepth while reference tracking is disabled, the signature of a
// cycle that cannot be represented without tracking.
var ErrCircularWithoutTracking = errors.New("refresolver: circular reference requires tracking to be enabled")

// ErrUnknownRef is returned when a RefTag names a ref id this ReadResolver
// has not yet seen in the current message.
var ErrUnknownRef = errors.New("refresolver: unknown ref id")

// WriteResolver assigns ref ids to values as they are first written and
// emits back-references for values seen again later in the same message.
// Strings and pointer-like values share one ref id sequence: strings are
// keyed by content (Go strings carry no pointer identity, but
// deduplicating identical content gives the same cross-language "shared
// instance" wire savings), everything else by reflect.Value.Pointer().
// Not safe for concurrent use; one instance serves one in-flight write.
type WriteResolver struct {
	trackingEnabled   bool
	suppressStringRef bool
	ptrRefs           map[uintptr]uint32
	stringRefs        map[string]uint32
	nextID            uint32
	depth             int
}

// NewWriteResolver returns a WriteResolver. When trackingEnabled is false,
// no value is deduplicated (neither by identity nor, for strings, by
// content) and WriteRef
// returns ErrCircularWithoutTracking if the graph recurses past
// maxUntrackedDepth.
func NewWriteResolver(trackingEnabled bool) *WriteResolver {
	return &WriteResolver{
		trackingEnabled: trackingEnabled,
		ptrRefs:         make(map[uintptr]uint32),
		stringRefs:      make(map[string]uint32),
	}
}

// SetSuppressStringRef disables content-based deduplication of strings,
// making every string occurrence write inline regardless of repeats. Callers
// wire this from a per-family suppression config flag; it has no effect once
// cross-language mode has forced string tracking back on, a decision made by
// the caller before construction finishes rather than inside WriteRef.
func (r *WriteResolver) SetSuppressStringRef(suppress bool) {
	r.suppressStringRef = suppress
}

// WriteRef writes the ref tag for v ahead of its value encoding. It returns
// needsWrite=true when the caller must now write v's own encoding
// (NotNullValueFlag or TrackFirstFlag); false means the tag alone (Null or
// Ref) fully describes v on the wire.
//
// trackable should reflect the serializer's NeedsTracking hint: pass false
// for value types that can never participate in a cycle or identity share
// (most primitives), true for pointer-like or container types. It is
// ignored for strings, which are tracked by content rather than identity
// whenever tracking is in effect at all: content-keying is the only
// identity Go strings have to offer, and in cross-language mode string
// reference suppression is forcibly disabled. But the master trackingEnabled
// switch still applies to strings same as everything else — disabling it
// falls back to NotNullValueFlag for strings too, per the global "tracking
// off" contract.
func (r *WriteResolver) WriteRef(buf *buffer.Buffer, v any, trackable bool) (needsWrite bool, err error) {
	if v == nil || isNilPointer(v) {
		buf.WriteByte(byte(NullFlag))
		return false, nil
	}
	if s, ok := v.(string); ok {
		if r.suppressStringRef || !r.trackingEnabled {
			buf.WriteByte(byte(NotNullValueFlag))
			return true, nil
		}
		if id, ok := r.stringRefs[s]; ok {
			buf.WriteByte(byte(RefTag))
			buf.WriteVarUint32(id)
			return false, nil
		}
		id := r.nextID
		r.nextID++
		r.stringRefs[s] = id
		buf.WriteByte(byte(TrackFirstFlag))
		return true, nil
	}
	if !trackable || !r.trackingEnabled {
		if !r.trackingEnabled {
			r.depth++
			if r.depth > maxUntrackedDepth {
				r.depth--
				return false, ErrCircularWithoutTracking
			}
		}
		buf.WriteByte(byte(NotNullValueFlag))
		return true, nil
	}
	key := reflect.ValueOf(v).Pointer()
	if id, ok := r.ptrRefs[key]; ok {
		buf.WriteByte(byte(RefTag))
		buf.WriteVarUint32(id)
		return false, nil
	}
	id := r.nextID
	r.nextID++
	r.ptrRefs[key] = id
	buf.WriteByte(byte(TrackFirstFlag))
	return true, nil
}

// LeaveUntracked must be called once after a WriteRef call that returned
// needsWrite=true while tracking was disabled, mirroring the depth
// increment so sibling subtrees are not over-counted.
func (r *WriteResolver) LeaveUntracked() {
	if !r.trackingEnabled {
		r.depth--
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// ReadResolver mirrors WriteResolver on the decode side: it hands back tags
// as they are read and maintains the single ref-id -> value table that
// later RefTag occurrences resolve against, regardless of whether the
// tracked value was a string or a pointer-like value.
type ReadResolver struct {
	values []any
}

// NewReadResolver returns an empty ReadResolver for one in-flight read.
func NewReadResolver() *ReadResolver {
	return &ReadResolver{}
}

// ReadTag reads the one-byte ref tag ahead of a value.
func (r *ReadResolver) ReadTag(buf *buffer.Buffer) (RefFlag, error) {
	b, err := buf.ReadByte()
	if err != nil {
		return 0, err
	}
	return RefFlag(b), nil
}

// ResolveRef looks up a previously tracked value by the ref id read after a
// RefTag.
func (r *ReadResolver) ResolveRef(buf *buffer.Buffer) (any, error) {
	id, err := buf.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	if int(id) >= len(r.values) {
		return nil, ErrUnknownRef
	}
	return r.values[id], nil
}

// PreserveRefSlot reserves the next ref id for a value under construction,
// returning its index. Callers building a pointer-like value should call
// this, store the allocated (possibly still-empty) pointer with SetRef
// immediately, and only then recurse into filling its fields — that
// ordering is what lets a self-referential field resolve correctly via
// ResolveRef before construction finishes. A string occurrence reserves and
// fills its slot in the same step, since a string has no fields to recurse
// into.
func (r *ReadResolver) PreserveRefSlot() int {
	r.values = append(r.values, nil)
	return len(r.values) - 1
}

// SetRef fills a slot reserved by PreserveRefSlot once the value it
// describes exists.
func (r *ReadResolver) SetRef(idx int, v any) {
	r.values[idx] = v
}
