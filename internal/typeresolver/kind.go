// Package typeresolver maps native Go types to wire type ids and back,
// mirroring the class/type resolver of a cross-language object codec:
// registration, default built-in registrations, a one-slot inline cache
// backed by a composite-hash cache for namespaced lookups, and fallback
// synthesis for unregistered container types.
//
// Reference: base spec §4.5. Grounded on the teacher's internal/cache LRU
// (for the composite-hash lookup) and internal/block type-tag conventions
// (for the low-bits-are-a-tag layout of TypeID).
package typeresolver

// Kind is the low-8-bit "internal kind" of a TypeID.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindVarInt32
	KindInt64
	KindVarInt64
	KindSliInt64
	KindFloat16
	KindFloat32
	KindFloat64
	KindString
	KindEnum
	KindNSEnum
	KindStruct
	KindPolymorphicStruct
	KindCompatibleStruct
	KindPolymorphicCompatibleStruct
	KindNSStruct
	KindNSPolymorphicStruct
	KindNSCompatibleStruct
	KindNSPolymorphicCompatibleStruct
	KindExt
	KindPolymorphicExt
	KindNSExt
	KindNSPolymorphicExt
	KindList
	KindSet
	KindMap
	KindDuration
	KindTimestamp
	KindLocalDate
	KindDecimal
	KindBinary
	KindArray
	KindBoolArray
	KindInt16Array
	KindInt32Array
	KindInt64Array
	KindFloat32Array
	KindFloat64Array
	KindArrowRecordBatch
	KindArrowTable
)

var kindNames = [...]string{
	"BOOL", "INT8", "INT16", "INT32", "VAR_INT32", "INT64", "VAR_INT64",
	"SLI_INT64", "FLOAT16", "FLOAT32", "FLOAT64", "STRING", "ENUM", "NS_ENUM",
	"STRUCT", "POLYMORPHIC_STRUCT", "COMPATIBLE_STRUCT",
	"POLYMORPHIC_COMPATIBLE_STRUCT", "NS_STRUCT", "NS_POLYMORPHIC_STRUCT",
	"NS_COMPATIBLE_STRUCT", "NS_POLYMORPHIC_COMPATIBLE_STRUCT", "EXT",
	"POLYMORPHIC_EXT", "NS_EXT", "NS_POLYMORPHIC_EXT", "LIST", "SET", "MAP",
	"DURATION", "TIMESTAMP", "LOCAL_DATE", "DECIMAL", "BINARY", "ARRAY",
	"BOOL_ARRAY", "INT16_ARRAY", "INT32_ARRAY", "INT64_ARRAY",
	"FLOAT32_ARRAY", "FLOAT64_ARRAY", "ARROW_RECORD_BATCH", "ARROW_TABLE",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN_KIND"
}

// IsNamespaced reports whether a kind is identified on the wire by
// namespace+name rather than by numeric id.
func (k Kind) IsNamespaced() bool {
	switch k {
	case KindNSEnum, KindNSStruct, KindNSPolymorphicStruct,
		KindNSCompatibleStruct, KindNSPolymorphicCompatibleStruct,
		KindNSExt, KindNSPolymorphicExt:
		return true
	default:
		return false
	}
}

// IsExt reports whether a kind carries an opaque extension payload that
// cannot be safely skipped without its registered serializer.
func (k Kind) IsExt() bool {
	switch k {
	case KindExt, KindPolymorphicExt, KindNSExt, KindNSPolymorphicExt:
		return true
	default:
		return false
	}
}
