package typeresolver

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/logging"
	"github.com/chaokunyang/fury/internal/metastring"
)

// SecurityChecker vets a native type before it is registered or before an
// unregistered type is allowed through as a fallback, the hook a host
// application uses to deny deserializing types it does not trust.
type SecurityChecker func(t reflect.Type) error

// Resolver maps native Go types to ClassInfo and back. One Resolver is
// meant to be built once (at Fury construction) and shared by every
// message; its registration tables are append-only after startup, so a
// RWMutex protects concurrent (de)serialization.
type Resolver struct {
	mu sync.RWMutex

	byType   map[reflect.Type]*ClassInfo
	byTypeID map[TypeID]*ClassInfo
	nsCache  *nsNameCache

	fallback map[reflect.Type]*ClassInfo

	inlineType reflect.Type
	inlineInfo *ClassInfo

	nextUserID uint32

	allowUnexistentClass bool
	security             SecurityChecker
	logger               logging.Logger
}

// firstUserID is where auto-assigned ids start, reserving below it for
// built-in kinds and leaving room for small hand-picked ids.
const firstUserID = 64

// maxExplicitUserID is the largest id an explicit registration may request.
const maxExplicitUserID = 4095

// NewResolver returns a Resolver with the default built-in registrations
// already loaded. allowUnexistentClass controls whether an unknown NS_-kind
// (or, for a numeric id, unknown) type on read is fabricated as a
// skip-only placeholder or raises ErrUnregisteredType.
func NewResolver(allowUnexistentClass bool, security SecurityChecker) *Resolver {
	r := &Resolver{
		byType:               make(map[reflect.Type]*ClassInfo),
		byTypeID:             make(map[TypeID]*ClassInfo),
		nsCache:              newNSNameCache(),
		fallback:             make(map[reflect.Type]*ClassInfo),
		nextUserID:           firstUserID,
		allowUnexistentClass: allowUnexistentClass,
		security:             security,
		logger:               logging.Discard,
	}
	registerDefaults(r)
	return r
}

// SetLogger replaces the resolver's logger, defaulting to logging.Discard.
// A nil or typed-nil logger falls back to logging.Discard rather than
// panicking on the next call.
func (r *Resolver) SetLogger(l logging.Logger) {
	r.logger = logging.OrDefault(l)
}

func (r *Resolver) checkSecurity(t reflect.Type) error {
	if r.security == nil {
		return nil
	}
	if err := r.security(t); err != nil {
		return fmt.Errorf("%w: %w", ErrPolicyViolation, err)
	}
	return nil
}

// Register auto-assigns the next free user id starting at 64. Registering
// the same type twice with no id conflict returns the existing ClassInfo.
func (r *Resolver) Register(t reflect.Type) (*ClassInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byType[t]; ok {
		return existing, nil
	}
	if err := r.checkSecurity(t); err != nil {
		return nil, err
	}
	for {
		id, err := NewTypeID(r.kindFor(t, nil, false), r.nextUserID)
		if err != nil {
			return nil, err
		}
		r.nextUserID++
		if _, taken := r.byTypeID[id]; !taken {
			return r.registerLocked(t, id, "", t.Name(), nil)
		}
	}
}

// RegisterWithID assigns a specific user id (< 4096), deriving namespace
// and simple name from the native type's qualified name.
func (r *Resolver) RegisterWithID(t reflect.Type, userID uint32) (*ClassInfo, error) {
	if userID > maxExplicitUserID {
		return nil, ErrIDTooLarge
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkSecurity(t); err != nil {
		return nil, err
	}
	id, err := NewTypeID(r.kindFor(t, nil, false), userID)
	if err != nil {
		return nil, err
	}
	if existing, ok := r.byTypeID[id]; ok && existing.NativeType != t {
		return nil, ErrIDReused
	}
	namespace, name := qualifiedNameParts(nativeQualifiedName(t))
	return r.registerLocked(t, id, namespace, name, nil)
}

// RegisterNS registers t under an explicit (namespace, name) pair, the
// NS_-kind form that carries no numeric id. name must not contain the
// namespace separator.
func (r *Resolver) RegisterNS(t reflect.Type, namespace, name string) (*ClassInfo, error) {
	if containsDot(name) {
		return nil, ErrNameHasSeparator
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkSecurity(t); err != nil {
		return nil, err
	}
	nsMeta := metastring.NewBytes(namespace)
	nameMeta := metastring.NewBytes(name)
	key := cacheKey{NamespaceHash: nsMeta.Hash, NameHash: nameMeta.Hash}
	if existing, ok := r.nsCache.Lookup(key); ok && existing.NativeType != t {
		return nil, ErrNameConflict
	}
	kind := r.kindFor(t, nil, true)
	id, err := NewTypeID(kind, 0)
	if err != nil {
		return nil, err
	}
	info := &ClassInfo{
		NativeType:    t,
		Namespace:     namespace,
		Name:          name,
		NamespaceMeta: nsMeta,
		NameMeta:      nameMeta,
		TypeID:        id,
	}
	r.byType[t] = info
	r.nsCache.Insert(key, info)
	r.logger.Debugf(logging.NSTypeResolver+"registered %s as %s.%s", t, namespace, name)
	return info, nil
}

// RegisterSerializer overrides the built-in serializer for an already
// registered type, and re-derives its kind from the serializer's shape.
func (r *Resolver) RegisterSerializer(t reflect.Type, s Serializer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.byType[t]
	if !ok {
		return ErrNotRegistered
	}
	info.Serializer = s
	ns := info.TypeID.Kind().IsNamespaced()
	newKind := r.kindFor(t, s, ns)
	newID, err := NewTypeID(newKind, info.TypeID.UserID())
	if err != nil {
		return err
	}
	if !ns {
		delete(r.byTypeID, info.TypeID)
		r.byTypeID[newID] = info
	}
	info.TypeID = newID
	r.logger.Debugf(logging.NSTypeResolver+"attached serializer to %s, kind now %s", t, newKind)
	return nil
}

func (r *Resolver) registerLocked(t reflect.Type, id TypeID, namespace, name string, s Serializer) (*ClassInfo, error) {
	info := &ClassInfo{
		NativeType: t,
		Serializer: s,
		Namespace:  namespace,
		Name:       name,
		TypeID:     id,
	}
	r.byType[t] = info
	r.byTypeID[id] = info
	r.logger.Debugf(logging.NSTypeResolver+"registered %s as id %d", t, id)
	return info, nil
}

// kindFor implements the struct/enum/ext shape selection rule: with a
// serializer, a struct-shaped type is STRUCT, an enum-shaped type is ENUM,
// anything else is EXT; without one, an enum-shaped native type is ENUM and
// everything else is STRUCT. ns selects the namespaced variant of whichever
// kind is chosen.
func (r *Resolver) kindFor(t reflect.Type, s Serializer, ns bool) Kind {
	isEnumShaped := isIntegerKind(t.Kind()) && t.Name() != ""
	isStructShaped := t.Kind() == reflect.Struct || (t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)

	var plain Kind
	switch {
	case s != nil && isStructShaped:
		plain = KindStruct
	case s != nil && isEnumShaped:
		plain = KindEnum
	case s != nil:
		plain = KindExt
	case isEnumShaped:
		plain = KindEnum
	default:
		plain = KindStruct
	}
	if !ns {
		return plain
	}
	switch plain {
	case KindStruct:
		return KindNSStruct
	case KindEnum:
		return KindNSEnum
	default:
		return KindNSExt
	}
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

// LookupByType resolves a native type's ClassInfo through the one-slot
// inline cache before falling back to the full table.
func (r *Resolver) LookupByType(t reflect.Type) (*ClassInfo, bool) {
	r.mu.RLock()
	if r.inlineType == t && r.inlineInfo != nil {
		info := r.inlineInfo
		r.mu.RUnlock()
		return info, true
	}
	info, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		r.mu.Lock()
		r.inlineType, r.inlineInfo = t, info
		r.mu.Unlock()
	}
	return info, ok
}

// WriteClassInfo resolves obj's ClassInfo, falling back to a synthesized
// container ClassInfo for an unregistered slice/map, and writes the wire
// type id (plus namespace+name for NS_-kinds) to buf.
func (r *Resolver) WriteClassInfo(buf *buffer.Buffer, msg *metastring.Resolver, obj any) (*ClassInfo, error) {
	t := reflect.TypeOf(obj)
	info, ok := r.LookupByType(t)
	if !ok {
		var err error
		info, err = r.fallbackFor(t)
		if err != nil {
			return nil, err
		}
	}
	buf.WriteVarUint32(uint32(info.TypeID))
	if info.TypeID.Kind().IsNamespaced() {
		msg.WriteBytes(buf, info.NamespaceMeta)
		msg.WriteBytes(buf, info.NameMeta)
	}
	return info, nil
}

// ReadClassInfo reads a wire type id (and, for NS_-kinds, namespace+name)
// from buf and resolves it to a ClassInfo.
func (r *Resolver) ReadClassInfo(buf *buffer.Buffer, msg *metastring.Resolver) (*ClassInfo, error) {
	raw, err := buf.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	id := TypeID(raw)
	kind := id.Kind()

	if !kind.IsNamespaced() {
		r.mu.RLock()
		info, ok := r.byTypeID[id]
		r.mu.RUnlock()
		if ok {
			return info, nil
		}
		if kind.IsExt() {
			return nil, ErrUnregisteredSerializer
		}
		if r.allowUnexistentClass {
			r.logger.Warnf(logging.NSTypeResolver+"synthesizing placeholder for unregistered id %d", id)
			return r.placeholderByID(id), nil
		}
		return nil, ErrUnregisteredType
	}

	namespace, err := msg.ReadString(buf)
	if err != nil {
		return nil, err
	}
	name, err := msg.ReadString(buf)
	if err != nil {
		return nil, err
	}
	nsMeta := metastring.NewBytes(namespace)
	nameMeta := metastring.NewBytes(name)
	key := cacheKey{NamespaceHash: nsMeta.Hash, NameHash: nameMeta.Hash}
	if info, ok := r.nsCache.Lookup(key); ok {
		return info, nil
	}
	if kind.IsExt() {
		return nil, ErrUnregisteredSerializer
	}
	if !r.allowUnexistentClass {
		return nil, ErrUnregisteredType
	}
	r.logger.Warnf(logging.NSTypeResolver+"synthesizing placeholder for unregistered %s.%s", namespace, name)
	placeholder := &ClassInfo{
		Namespace:     namespace,
		Name:          name,
		NamespaceMeta: nsMeta,
		NameMeta:      nameMeta,
		TypeID:        id,
	}
	r.nsCache.Insert(key, placeholder)
	return placeholder, nil
}

func (r *Resolver) placeholderByID(id TypeID) *ClassInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.byTypeID[id]; ok {
		return info
	}
	info := &ClassInfo{TypeID: id}
	r.byTypeID[id] = info
	return info
}

// fallbackFor synthesizes a transient ClassInfo for an unregistered
// collection or map type. No user id is reserved; the synthesized entry is
// cached only so repeated values of the same unregistered container type
// do not re-derive it.
func (r *Resolver) fallbackFor(t reflect.Type) (*ClassInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.fallback[t]; ok {
		return info, nil
	}
	var kind Kind
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		kind = KindList
	case reflect.Map:
		kind = KindMap
	default:
		return nil, ErrUnregisteredType
	}
	if err := r.checkSecurity(t); err != nil {
		return nil, err
	}
	id, _ := NewTypeID(kind, 0)
	info := &ClassInfo{NativeType: t, TypeID: id}
	r.fallback[t] = info
	r.logger.Debugf(logging.NSTypeResolver+"synthesizing fallback container ClassInfo for %s", t)
	return info, nil
}
