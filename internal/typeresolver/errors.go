package typeresolver

import "errors"

var (
	// ErrUnregisteredType is raised reading a numeric type id, or an NS_
	// namespace+name pair, that names no registration and placeholder
	// fabrication is disabled.
	ErrUnregisteredType = errors.New("typeresolver: unregistered type")
	// ErrUnregisteredSerializer is raised reading an EXT-kind type with no
	// registered serializer; its payload is opaque and cannot be skipped.
	ErrUnregisteredSerializer = errors.New("typeresolver: unregistered serializer for ext type")
	// ErrNameConflict is raised registering a (namespace, name) pair that
	// already names a different native type.
	ErrNameConflict = errors.New("typeresolver: namespace+name already registered to a different type")
	// ErrIDReused is raised registering a numeric id already bound to a
	// different native type.
	ErrIDReused = errors.New("typeresolver: type id already registered to a different type")
	// ErrIDTooLarge is raised registering a numeric id >= 4096.
	ErrIDTooLarge = errors.New("typeresolver: type id must be < 4096")
	// ErrNameHasSeparator is raised registering a simple name containing
	// the namespace separator '.'.
	ErrNameHasSeparator = errors.New("typeresolver: type name must not contain '.'")
	// ErrNotRegistered is raised by RegisterSerializer against a type with
	// no prior registration.
	ErrNotRegistered = errors.New("typeresolver: type must be registered before a serializer override")
	// ErrPolicyViolation is raised when a SecurityChecker rejects a type.
	ErrPolicyViolation = errors.New("typeresolver: type rejected by security policy")
)
