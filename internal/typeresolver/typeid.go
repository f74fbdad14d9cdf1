package typeresolver

import "errors"

// TypeID is the wire type identifier: low 8 bits are the Kind, high 24 bits
// are a user-assigned id for registered structs/enums/extensions, or zero
// for built-in kinds.
//
// The source registration expression this is modeled on packs the id with
// `xtypeId = xtypeId<<8 + kind`, which left-shifts before the intended OR
// and is ambiguous about which half ends up on top. This resolver takes the
// repaired reading: kind occupies the low 8 bits, user id the high 24.
type TypeID uint32

// ErrUserIDOverflow is returned when a user id does not fit in 24 bits.
var ErrUserIDOverflow = errors.New("typeresolver: user id exceeds 24 bits")

const maxUserID = 1<<24 - 1

// NewTypeID packs kind and userID into a TypeID.
func NewTypeID(kind Kind, userID uint32) (TypeID, error) {
	if userID > maxUserID {
		return 0, ErrUserIDOverflow
	}
	return TypeID(userID)<<8 | TypeID(kind), nil
}

// Kind returns the low-8-bit internal kind.
func (t TypeID) Kind() Kind { return Kind(t & 0xFF) }

// UserID returns the high-24-bit user-assigned id, or 0 for built-in kinds.
func (t TypeID) UserID() uint32 { return uint32(t >> 8) }
