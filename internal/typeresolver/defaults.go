package typeresolver

import (
	"reflect"
	"time"
)

type namedType struct {
	kind Kind
	typ  reflect.Type
}

// registerDefaults bootstraps the built-in registrations every Resolver
// starts with, mirroring base spec §4.5's default-registration table. Each
// entry is keyed by a concrete Go type so LookupByType needs no further
// special-casing for primitives.
func registerDefaults(r *Resolver) {
	entries := []namedType{
		{KindBool, reflect.TypeOf(false)},
		{KindInt8, reflect.TypeOf(int8(0))},
		{KindInt16, reflect.TypeOf(int16(0))},
		{KindInt32, reflect.TypeOf(int32(0))},
		{KindInt64, reflect.TypeOf(int64(0))},
		{KindFloat32, reflect.TypeOf(float32(0))},
		{KindFloat64, reflect.TypeOf(float64(0))},
		{KindString, reflect.TypeOf("")},
		{KindDuration, reflect.TypeOf(time.Duration(0))},
		{KindTimestamp, reflect.TypeOf(time.Time{})},
		{KindBinary, reflect.TypeOf([]byte(nil))},
		{KindBoolArray, reflect.TypeOf([]bool(nil))},
		{KindInt16Array, reflect.TypeOf([]int16(nil))},
		{KindInt32Array, reflect.TypeOf([]int32(nil))},
		{KindInt64Array, reflect.TypeOf([]int64(nil))},
		{KindFloat32Array, reflect.TypeOf([]float32(nil))},
		{KindFloat64Array, reflect.TypeOf([]float64(nil))},
		{KindList, reflect.TypeOf([]any(nil))},
		{KindSet, reflect.TypeOf((*Set)(nil))},
		{KindMap, reflect.TypeOf(map[any]any(nil))},
	}
	for _, e := range entries {
		id, err := NewTypeID(e.kind, 0)
		if err != nil {
			panic(err) // unreachable: userID is always 0 here
		}
		info := &ClassInfo{NativeType: e.typ, TypeID: id}
		r.byType[e.typ] = info
		r.byTypeID[id] = info
	}
}
