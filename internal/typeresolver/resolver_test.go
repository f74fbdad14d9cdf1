package typeresolver

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
)

type point struct {
	X, Y int32
}

type widget struct {
	Name string
}

func TestDefaultRegistrationsCoverPrimitives(t *testing.T) {
	r := NewResolver(false, nil)
	types := []reflect.Type{
		reflect.TypeOf(false),
		reflect.TypeOf(int8(0)),
		reflect.TypeOf(int32(0)),
		reflect.TypeOf(int64(0)),
		reflect.TypeOf(float64(0)),
		reflect.TypeOf(""),
		reflect.TypeOf([]byte(nil)),
	}
	for _, typ := range types {
		if _, ok := r.LookupByType(typ); !ok {
			t.Errorf("default registration missing for %v", typ)
		}
	}
}

func TestRegisterAutoAssignsStartingAt64(t *testing.T) {
	r := NewResolver(false, nil)
	info, err := r.Register(reflect.TypeOf(point{}))
	if err != nil {
		t.Fatal(err)
	}
	if info.TypeID.UserID() != firstUserID {
		t.Errorf("first auto-assigned user id = %d, want %d", info.TypeID.UserID(), firstUserID)
	}

	info2, err := r.Register(reflect.TypeOf(widget{}))
	if err != nil {
		t.Fatal(err)
	}
	if info2.TypeID.UserID() != firstUserID+1 {
		t.Errorf("second auto-assigned user id = %d, want %d", info2.TypeID.UserID(), firstUserID+1)
	}
}

func TestRegisterWithIDRejectsReuse(t *testing.T) {
	r := NewResolver(false, nil)
	if _, err := r.RegisterWithID(reflect.TypeOf(point{}), 100); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterWithID(reflect.TypeOf(widget{}), 100); err != ErrIDReused {
		t.Fatalf("err = %v, want ErrIDReused", err)
	}
}

func TestRegisterWithIDRejectsOversizedID(t *testing.T) {
	r := NewResolver(false, nil)
	if _, err := r.RegisterWithID(reflect.TypeOf(point{}), 4096); err != ErrIDTooLarge {
		t.Fatalf("err = %v, want ErrIDTooLarge", err)
	}
}

func TestRegisterNSRejectsDottedName(t *testing.T) {
	r := NewResolver(false, nil)
	if _, err := r.RegisterNS(reflect.TypeOf(point{}), "com.example", "bad.name"); err != ErrNameHasSeparator {
		t.Fatalf("err = %v, want ErrNameHasSeparator", err)
	}
}

func TestRegisterNSRejectsConflictingSecondType(t *testing.T) {
	r := NewResolver(false, nil)
	if _, err := r.RegisterNS(reflect.TypeOf(point{}), "com.example", "Shape"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RegisterNS(reflect.TypeOf(widget{}), "com.example", "Shape"); err != ErrNameConflict {
		t.Fatalf("err = %v, want ErrNameConflict", err)
	}
}

// TestNSRoundTrip exercises base spec §8 S4-style registration: write a
// namespaced type id and read it back to the same ClassInfo.
func TestNSRoundTrip(t *testing.T) {
	r := NewResolver(false, nil)
	info, err := r.RegisterNS(reflect.TypeOf(point{}), "com.example", "Point")
	if err != nil {
		t.Fatal(err)
	}

	buf := buffer.New(0)
	msgW := metastring.NewResolver()
	written, err := r.WriteClassInfo(buf, msgW, point{X: 1, Y: 2})
	if err != nil {
		t.Fatal(err)
	}
	if written != info {
		t.Fatalf("WriteClassInfo returned a different ClassInfo than Register")
	}

	buf.SetReaderIndex(0)
	msgR := metastring.NewResolver()
	got, err := r.ReadClassInfo(buf, msgR)
	if err != nil {
		t.Fatal(err)
	}
	if got != info {
		t.Fatalf("ReadClassInfo resolved a different ClassInfo than was registered")
	}
}

func TestUnregisteredNumericTypeIDErrors(t *testing.T) {
	r := NewResolver(false, nil)
	buf := buffer.New(0)
	id, _ := NewTypeID(KindStruct, 9999)
	buf.WriteVarUint32(uint32(id))
	buf.SetReaderIndex(0)
	msg := metastring.NewResolver()
	if _, err := r.ReadClassInfo(buf, msg); err != ErrUnregisteredType {
		t.Fatalf("err = %v, want ErrUnregisteredType", err)
	}
}

func TestUnregisteredNSStructFabricatesPlaceholderWhenAllowed(t *testing.T) {
	r := NewResolver(true, nil)
	buf := buffer.New(0)
	msgW := metastring.NewResolver()

	id, _ := NewTypeID(KindNSStruct, 0)
	buf.WriteVarUint32(uint32(id))
	msgW.WriteString(buf, "com.example")
	msgW.WriteString(buf, "Unknown")

	buf.SetReaderIndex(0)
	msgR := metastring.NewResolver()
	info, err := r.ReadClassInfo(buf, msgR)
	if err != nil {
		t.Fatalf("expected placeholder fabrication, got error: %v", err)
	}
	if info.Namespace != "com.example" || info.Name != "Unknown" {
		t.Errorf("placeholder fields = %q/%q", info.Namespace, info.Name)
	}
}

func TestUnregisteredNSExtAlwaysErrorsUnregisteredSerializer(t *testing.T) {
	r := NewResolver(true, nil)
	buf := buffer.New(0)
	msgW := metastring.NewResolver()

	id, _ := NewTypeID(KindNSExt, 0)
	buf.WriteVarUint32(uint32(id))
	msgW.WriteString(buf, "com.example")
	msgW.WriteString(buf, "Unknown")

	buf.SetReaderIndex(0)
	msgR := metastring.NewResolver()
	if _, err := r.ReadClassInfo(buf, msgR); err != ErrUnregisteredSerializer {
		t.Fatalf("err = %v, want ErrUnregisteredSerializer", err)
	}
}

func TestFallbackForUnregisteredSliceReservesNoID(t *testing.T) {
	r := NewResolver(false, nil)
	buf := buffer.New(0)
	msg := metastring.NewResolver()

	before := r.nextUserID
	info, err := r.WriteClassInfo(buf, msg, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if info.TypeID.Kind() != KindList {
		t.Errorf("fallback kind = %v, want KindList", info.TypeID.Kind())
	}
	if r.nextUserID != before {
		t.Errorf("fallback synthesis consumed a user id: before=%d after=%d", before, r.nextUserID)
	}
}

func TestSecurityCheckerRejectsRegistration(t *testing.T) {
	denied := errors.New("denied")
	r := NewResolver(false, func(reflect.Type) error { return denied })
	if _, err := r.Register(reflect.TypeOf(point{})); !errors.Is(err, ErrPolicyViolation) || !errors.Is(err, denied) {
		t.Fatalf("err = %v, want ErrPolicyViolation wrapping %v", err, denied)
	}
}
