package typeresolver

import (
	"reflect"

	"github.com/chaokunyang/fury/internal/metastring"
)

// ClassInfo is everything the resolver knows about one registered, or
// fallback-synthesized, native type.
type ClassInfo struct {
	NativeType    reflect.Type
	Serializer    Serializer
	Namespace     string
	Name          string
	NamespaceMeta metastring.Bytes
	NameMeta      metastring.Bytes
	TypeID        TypeID
	IsArrayOfRefs bool
}

// qualifiedNameParts splits a dotted qualified name into (namespace, name),
// where name is the last path component and namespace is everything before
// it. A name with no separator has an empty namespace.
func qualifiedNameParts(qualified string) (namespace, name string) {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[:i], qualified[i+1:]
		}
	}
	return "", qualified
}

// nativeQualifiedName derives a Go type's qualified name from its package
// path and name, the closest Go analog of a fully-qualified class name.
func nativeQualifiedName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
