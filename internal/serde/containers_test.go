package serde

import (
	"testing"

	"github.com/chaokunyang/fury/internal/typeresolver"
)

func TestListRoundTripNested(t *testing.T) {
	d := newTestDispatcher()
	want := []any{int32(1), "two", []any{int32(3), "four"}, nil}
	got := writeThenRead(t, d, want).([]any)
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	if got[0] != want[0] || got[1] != want[1] || got[3] != want[3] {
		t.Errorf("got %v, want %v", got, want)
	}
	inner := got[2].([]any)
	if inner[0] != int32(3) || inner[1] != "four" {
		t.Errorf("nested list mismatch: got %v", inner)
	}
}

func TestListRoundTripEmpty(t *testing.T) {
	d := newTestDispatcher()
	got := writeThenRead(t, d, []any{}).([]any)
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestMapRoundTrip(t *testing.T) {
	d := newTestDispatcher()
	want := map[any]any{"a": int32(1), "b": int32(2)}
	got := writeThenRead(t, d, want).(map[any]any)
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %v: got %v, want %v", k, got[k], v)
		}
	}
}

func TestSetRoundTripPreservesInsertionOrderAndUniqueness(t *testing.T) {
	d := newTestDispatcher()
	want := typeresolver.NewSet(int32(3), int32(1), int32(3), int32(2))
	got := writeThenRead(t, d, want).(*typeresolver.Set)
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (duplicate must collapse)", got.Len())
	}
	wantOrder := []any{int32(3), int32(1), int32(2)}
	gotOrder := got.Values()
	for i, v := range wantOrder {
		if gotOrder[i] != v {
			t.Errorf("position %d: got %v, want %v", i, gotOrder[i], v)
		}
	}
}

func TestSetCopyIsIndependent(t *testing.T) {
	src := typeresolver.NewSet(int32(1), int32(2))
	copied := setSerializer{}.Copy(src).(*typeresolver.Set)
	copied.Add(int32(3))
	if src.Contains(int32(3)) {
		t.Error("Copy shares state with the source set")
	}
}

func TestContainerSerializersNeedTracking(t *testing.T) {
	if !(listSerializer{}).NeedsTracking() {
		t.Error("list serializer must need tracking")
	}
	if !(setSerializer{}).NeedsTracking() {
		t.Error("set serializer must need tracking")
	}
	if !(mapSerializer{}).NeedsTracking() {
		t.Error("map serializer must need tracking")
	}
}
