package serde

import (
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// newTestDispatcher builds a Resolver with every built-in Serializer
// installed, the same wiring a Fury instance performs at construction:
// the Dispatcher is created first (it only needs the Resolver pointer,
// not a fully populated one) and then handed back to InstallDefaults so
// the container serializers can recurse through it.
func newTestDispatcher() *Dispatcher {
	r := typeresolver.NewResolver(true, nil)
	d := &Dispatcher{Types: r}
	InstallDefaults(r, d)
	return d
}
