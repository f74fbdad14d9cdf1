package fury

import (
	"bytes"
	"testing"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/serde"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// pointSerializer is the concrete Serializer a caller supplies for its own
// struct type; the framework itself only provides the abstract contract
// (Write/Read/Copy/NeedsTracking), not shape-specific implementations.
type pointSerializer struct{}

func (pointSerializer) Write(buf *buffer.Buffer, v any, _ *refresolver.WriteResolver, _ *metastring.Resolver) error {
	p := v.(point)
	buf.WriteVarInt32(p.X)
	buf.WriteVarInt32(p.Y)
	return nil
}

func (pointSerializer) Read(buf *buffer.Buffer, _ *refresolver.ReadResolver, _ *metastring.Resolver) (any, error) {
	x, err := buf.ReadVarInt32()
	if err != nil {
		return nil, err
	}
	y, err := buf.ReadVarInt32()
	if err != nil {
		return nil, err
	}
	return point{X: x, Y: y}, nil
}

func (pointSerializer) Copy(v any) any { return v }

func (pointSerializer) NeedsTracking() bool { return false }

// TestSerializeNullMatchesS1 reproduces base-spec scenario S1: serializing
// null with track-ref on writes header(4) + 0x00 and decodes back to nil.
func TestSerializeNullMatchesS1(t *testing.T) {
	f := New(DefaultConfig())
	data, err := f.Serialize(nil)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{headerMagic, flagTrackRef | flagCompressInt | flagLongCompressed, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Fatalf("got % x, want % x", data, want)
	}
	v, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if v != nil {
		t.Fatalf("got %v, want nil", v)
	}
}

// TestSerializeInt32MatchesS2 reproduces base-spec scenario S2: int32(300)
// with int-compression on encodes its payload as VarInt32(300) = 0xD8 0x04.
func TestSerializeInt32MatchesS2(t *testing.T) {
	f := New(DefaultConfig())
	data, err := f.Serialize(int32(300))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(data) < 2 {
		t.Fatalf("short output: % x", data)
	}
	tail := data[len(data)-2:]
	want := []byte{0xD8, 0x04}
	if !bytes.Equal(tail, want) {
		t.Fatalf("payload tail = % x, want % x", tail, want)
	}
	v, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if v != int32(300) {
		t.Fatalf("got %v, want int32(300)", v)
	}
}

// TestSerializeRepeatedStringMatchesS3 reproduces base-spec scenario S3: a
// repeated string value within one message writes as a ref tag the second
// time, not as a repeated payload.
func TestSerializeRepeatedStringMatchesS3(t *testing.T) {
	f := New(DefaultConfig())
	list := []any{"a", "a"}
	data, err := f.Serialize(list)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got, ok := v.([]any)
	if !ok || len(got) != 2 || got[0] != "a" || got[1] != "a" {
		t.Fatalf("got %#v", v)
	}
}

type point struct {
	X, Y int32
}

// TestUnregisteredNSStructDecodesAsPlaceholderMatchesS4 reproduces base-spec
// scenario S4: a namespaced struct decoded by a resolver that never
// registered it, with DeserializeUnexistentClass on, yields a placeholder
// preserving its raw field payload.
func TestUnregisteredNSStructDecodesAsPlaceholderMatchesS4(t *testing.T) {
	writer := New(DefaultConfig())
	if _, err := writer.RegisterNS(point{}, "com.example", "Point"); err != nil {
		t.Fatalf("RegisterNS: %v", err)
	}
	if err := writer.RegisterSerializer(point{}, pointSerializer{}); err != nil {
		t.Fatalf("RegisterSerializer: %v", err)
	}
	data, err := writer.Serialize(point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	readerCfg := DefaultConfig()
	readerCfg.RequireClassRegistration = false
	readerCfg.DeserializeUnexistentClass = true
	reader := New(readerCfg)
	v, err := reader.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	raw, ok := v.(serde.RawStruct)
	if !ok {
		t.Fatalf("got %#v, want serde.RawStruct", v)
	}
	if raw.Namespace != "com.example" || raw.Name != "Point" {
		t.Fatalf("got namespace=%q name=%q", raw.Namespace, raw.Name)
	}
	if len(raw.Fields) == 0 {
		t.Fatal("expected raw field payload to be preserved")
	}
}

// TestRegisterNSConflictMatchesS5 reproduces base-spec scenario S5:
// registering a second type under an already-used (namespace, name) pair
// raises a name-conflict error.
func TestRegisterNSConflictMatchesS5(t *testing.T) {
	type otherPoint struct{ A, B int32 }
	f := New(DefaultConfig())
	if _, err := f.RegisterNS(point{}, "com.example", "Point"); err != nil {
		t.Fatalf("first RegisterNS: %v", err)
	}
	_, err := f.RegisterNS(otherPoint{}, "com.example", "Point")
	if err == nil {
		t.Fatal("expected name-conflict error")
	}
	var fe *Error
	if !asError(err, &fe) || fe.Kind != KindNameConflict {
		t.Fatalf("got %v, want KindNameConflict", err)
	}
}

type selfRefNode struct {
	Next *selfRefNode
}

// nodeSerializer is a caller-supplied concrete serializer for selfRefNode,
// recursing into its Next field through the same Dispatch interface the
// built-in container serializers use for their elements.
type nodeSerializer struct {
	dispatch typeresolver.Dispatch
}

func (s nodeSerializer) Write(buf *buffer.Buffer, v any, refs *refresolver.WriteResolver, msg *metastring.Resolver) error {
	var next any
	if n := v.(*selfRefNode).Next; n != nil {
		next = n
	}
	return s.dispatch.WriteValue(buf, refs, msg, next)
}

func (s nodeSerializer) Read(buf *buffer.Buffer, refs *refresolver.ReadResolver, msg *metastring.Resolver) (any, error) {
	next, err := s.dispatch.ReadValue(buf, refs, msg)
	if err != nil {
		return nil, err
	}
	node := &selfRefNode{}
	if n, ok := next.(*selfRefNode); ok {
		node.Next = n
	}
	return node, nil
}

func (nodeSerializer) Copy(v any) any { return v }

func (nodeSerializer) NeedsTracking() bool { return true }

// TestCircularWithoutTrackingMatchesS6 reproduces base-spec scenario S6: a
// self-referential value graph with track-ref off raises
// circular-without-tracking before unwinding the whole recursion budget.
func TestCircularWithoutTrackingMatchesS6(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackRef = false
	f := New(cfg)
	if _, err := f.Register(&selfRefNode{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.RegisterSerializer(&selfRefNode{}, nodeSerializer{dispatch: f.dispatch}); err != nil {
		t.Fatalf("RegisterSerializer: %v", err)
	}
	node := &selfRefNode{}
	node.Next = node

	_, err := f.Serialize(node)
	if err == nil {
		t.Fatal("expected circular-without-tracking error")
	}
	var fe *Error
	if !asError(err, &fe) || fe.Kind != KindCircularWithoutTracking {
		t.Fatalf("got %v, want KindCircularWithoutTracking", err)
	}
}

func asError(err error, target **Error) bool {
	fe, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = fe
	return true
}

func TestRoundTripPrimitives(t *testing.T) {
	f := New(DefaultConfig())
	cases := []any{
		true, false,
		int8(-5), int16(1000), int32(-70000), int64(1) << 40,
		float32(1.5), float64(2.25),
		"hello world",
	}
	for _, c := range cases {
		data, err := f.Serialize(c)
		if err != nil {
			t.Fatalf("Serialize(%v): %v", c, err)
		}
		got, err := f.Deserialize(data)
		if err != nil {
			t.Fatalf("Deserialize(%v): %v", c, err)
		}
		if got != c {
			t.Fatalf("got %v, want %v", got, c)
		}
	}
}

func TestFrameChecksumRoundTripAndMismatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameChecksum = true
	f := New(cfg)
	data, err := f.Serialize(int32(42))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := f.Deserialize(data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xFF
	if _, err := f.Deserialize(corrupt); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestPayloadCompressionRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PayloadCompression = true
	cfg.CompressionThreshold = 4
	f := New(cfg)
	longString := ""
	for i := 0; i < 200; i++ {
		longString += "abcdefgh"
	}
	data, err := f.Serialize(longString)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if v != longString {
		t.Fatal("round trip mismatch")
	}
}

func TestIgnoreStringRefSuppressesDeduplication(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IgnoreStringRef = true
	f := New(cfg)
	data, err := f.Serialize([]any{"a", "a"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	v, err := f.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got := v.([]any)
	if got[0] != "a" || got[1] != "a" {
		t.Fatalf("got %#v", v)
	}
}

func TestCrossLanguageForcesStringRefRegardlessOfIgnoreFlag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IgnoreStringRef = true
	cfg.Language = Cross
	f := New(cfg)
	if f.effectiveIgnoreStringRef() {
		t.Fatal("CROSS language mode must force string ref tracking back on")
	}
}
