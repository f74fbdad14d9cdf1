package fury

import (
	"errors"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/serde"
	"github.com/chaokunyang/fury/internal/stream"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// ErrorKind classifies a returned error onto the error surface this codec
// promises callers, independent of which internal package actually raised it.
type ErrorKind uint8

const (
	// KindUnknown covers an error this codec did not originate and cannot
	// classify — a user-supplied serializer's own error, most commonly.
	KindUnknown ErrorKind = iota
	// KindTruncatedInput means the stream ended before a read's demand.
	KindTruncatedInput
	// KindMalformed means a tag or length failed to satisfy an invariant.
	KindMalformed
	// KindUnregisteredType means a decoded type id or qualified name has no
	// registration and placeholder fabrication is disabled.
	KindUnregisteredType
	// KindUnregisteredSerializer means an EXT-kind value arrived with no
	// registered serializer to interpret its opaque payload.
	KindUnregisteredSerializer
	// KindIDOverflow means a user id did not fit the 24-bit id space, or an
	// explicit registration asked for an id of 4096 or more.
	KindIDOverflow
	// KindIDReused means a numeric id was registered twice for different types.
	KindIDReused
	// KindNameConflict means a (namespace, name) pair was registered twice
	// for different types, or a simple name contained the namespace separator.
	KindNameConflict
	// KindCircularWithoutTracking means the writer detected recursion past
	// the untracked-depth limit while reference tracking was disabled.
	KindCircularWithoutTracking
	// KindPolicyViolation means a SecurityChecker rejected a type.
	KindPolicyViolation
)

func (k ErrorKind) String() string {
	switch k {
	case KindTruncatedInput:
		return "truncated-input"
	case KindMalformed:
		return "malformed"
	case KindUnregisteredType:
		return "unregistered-type"
	case KindUnregisteredSerializer:
		return "unregistered-serializer"
	case KindIDOverflow:
		return "id-overflow"
	case KindIDReused:
		return "id-reused"
	case KindNameConflict:
		return "name-conflict"
	case KindCircularWithoutTracking:
		return "circular-without-tracking"
	case KindPolicyViolation:
		return "policy-violation"
	default:
		return "unknown"
	}
}

// Error is the wrapped form every public Fury method returns its errors as.
// Kind lets a caller branch on the documented error surface without
// depending on which internal package produced Cause; errors.Is/errors.As
// still see through to Cause via Unwrap.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Kind.String() + ": " + e.Msg
	}
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrChecksumMismatch is returned (wrapped as KindMalformed) when a frame's
// trailing checksum does not match the payload it was computed over.
var ErrChecksumMismatch = errors.New("fury: frame checksum mismatch")

// ErrBadHeader is returned (wrapped as KindMalformed) when a message's
// leading 4 bytes do not carry the expected magic byte.
var ErrBadHeader = errors.New("fury: bad header magic")

// classify maps a sentinel from an internal package onto the public
// ErrorKind surface base spec §7 promises. A cause this codec did not
// originate (most commonly a user-supplied serializer's own error)
// classifies as KindUnknown and is still reachable via errors.As.
func classify(cause error) ErrorKind {
	switch {
	case errors.Is(cause, buffer.ErrBufferTooSmall), errors.Is(cause, stream.ErrTruncated):
		return KindTruncatedInput
	case errors.Is(cause, buffer.ErrVarintOverflow),
		errors.Is(cause, buffer.ErrNegativeReserve),
		errors.Is(cause, metastring.ErrUnknownToken),
		errors.Is(cause, metastring.ErrUnknownEncoding),
		errors.Is(cause, refresolver.ErrUnknownRef),
		errors.Is(cause, serde.ErrMalformedRefTag),
		errors.Is(cause, ErrChecksumMismatch),
		errors.Is(cause, ErrBadHeader):
		return KindMalformed
	case errors.Is(cause, typeresolver.ErrUnregisteredType):
		return KindUnregisteredType
	case errors.Is(cause, typeresolver.ErrUnregisteredSerializer):
		return KindUnregisteredSerializer
	case errors.Is(cause, typeresolver.ErrUserIDOverflow),
		errors.Is(cause, typeresolver.ErrIDTooLarge):
		return KindIDOverflow
	case errors.Is(cause, typeresolver.ErrIDReused):
		return KindIDReused
	case errors.Is(cause, typeresolver.ErrNameConflict),
		errors.Is(cause, typeresolver.ErrNameHasSeparator):
		return KindNameConflict
	case errors.Is(cause, refresolver.ErrCircularWithoutTracking):
		return KindCircularWithoutTracking
	case errors.Is(cause, typeresolver.ErrPolicyViolation):
		return KindPolicyViolation
	default:
		return KindUnknown
	}
}

// wrapErr classifies cause and wraps it as an *Error, or returns nil for a
// nil cause so call sites can `return wrapErr(err)` unconditionally.
func wrapErr(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: classify(cause), Cause: cause}
}
