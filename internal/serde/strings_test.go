package serde

import (
	"testing"

	"github.com/chaokunyang/fury/internal/buffer"
)

func TestStringSerializerRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "café", "a long string with spaces and punctuation!"} {
		buf := buffer.New(16)
		if err := (stringSerializer{}).Write(buf, s, nil, nil); err != nil {
			t.Fatalf("Write(%q): %v", s, err)
		}
		buf.SetReaderIndex(0)
		got, err := (stringSerializer{}).Read(buf, nil, nil)
		if err != nil {
			t.Fatalf("Read after Write(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("got %q, want %q", got, s)
		}
	}
}

func TestStringSerializerCopyReturnsEqualValue(t *testing.T) {
	s := stringSerializer{}
	if got := s.Copy("hello"); got != "hello" {
		t.Errorf("Copy returned %v", got)
	}
}

func TestStringSerializerNeedsTracking(t *testing.T) {
	if !(stringSerializer{}).NeedsTracking() {
		t.Error("string serializer must report NeedsTracking() == true: strings are ref-tracked by content")
	}
}
