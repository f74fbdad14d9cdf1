package serde

import (
	"reflect"

	"github.com/chaokunyang/fury/internal/typeresolver"
)

// install binds a Serializer to the ClassInfo a default registration
// already created for sample's type. It panics if the type was not
// pre-registered, which would indicate a default-registration/serializer
// table mismatch inside this package, a programmer error rather than a
// runtime condition.
func install(r *typeresolver.Resolver, sample any, s typeresolver.Serializer) {
	info, ok := r.LookupByType(reflect.TypeOf(sample))
	if !ok {
		panic("serde: no default registration for " + reflect.TypeOf(sample).String())
	}
	info.Serializer = s
}

// InstallDefaults wires every built-in Serializer onto the ClassInfo
// entries a freshly constructed typeresolver.Resolver already carries.
// dispatch is the Dispatcher built around the same Resolver, needed by the
// container serializers to recurse into element values.
func InstallDefaults(r *typeresolver.Resolver, dispatch typeresolver.Dispatch) {
	RegisterPrimitives(r)
	RegisterStrings(r)
	RegisterBinary(r)
	RegisterArrays(r)
	RegisterContainers(r, dispatch)
}
