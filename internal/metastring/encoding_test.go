package metastring

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"a",
		"com.fury.example",
		"my_package.name$v2",
		"MyType",
		"MyNamespace.InnerType",
		"ALLCAPS",
		"mixedCaseWithNoLeadingCap",
		"has digits 123 and UPPER",
		"日本語", // non-ASCII forces UTF-8 fallback
		// Lengths chosen so a 5-bit alphabet's trailing zero-padding would, if
		// mistaken for data, decode a spurious extra character: 6 chars (30
		// data bits + padding >= 5 bits), 3 and 8 chars likewise.
		"widget",
		"abc",
		"packages",
	}
	for _, s := range cases {
		encoded := Encode(s)
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(Encode(%q)): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q => %q", s, got)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := Encode("com.fury.example.Widget")
	b := Encode("com.fury.example.Widget")
	if string(a) != string(b) {
		t.Errorf("Encode is not deterministic: %x != %x", a, b)
	}
}

func TestEncodePicksCompactAlphabetForLowerSpecial(t *testing.T) {
	encoded := Encode("plain.lower_case$name")
	if Encoding(encoded[0]&0x7) != LowerSpecial {
		t.Errorf("tag = %d, want LowerSpecial", encoded[0]&0x7)
	}
}

func TestEncodeUsesFirstToLowerForLeadingCapital(t *testing.T) {
	encoded := Encode("Widget")
	if Encoding(encoded[0]&0x7) != FirstToLowerSpecial {
		t.Errorf("tag = %d, want FirstToLowerSpecial", encoded[0]&0x7)
	}
	got, err := Decode(encoded)
	if err != nil || got != "Widget" {
		t.Fatalf("Decode() = %q, %v", got, err)
	}
}

func TestEncodeFallsBackToUTF8ForUnrepresentableRunes(t *testing.T) {
	encoded := Encode("café")
	if Encoding(encoded[0]&0x7) != UTF8 {
		t.Errorf("tag = %d, want UTF8", encoded[0]&0x7)
	}
}
