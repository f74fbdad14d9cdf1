package serde

import (
	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// stringSerializer is invoked only after the dispatch core has already
// resolved a string's ref tag via refs.WriteRef/ReadTag (strings are
// tracked by content there, not by pointer identity). Its job is just the
// wire payload: a length-prefixed UTF-8 byte slice.
type stringSerializer struct{}

func (stringSerializer) Write(buf *buffer.Buffer, v any, _ *refresolver.WriteResolver, _ *metastring.Resolver) error {
	buf.WriteLengthPrefixed([]byte(v.(string)))
	return nil
}

func (stringSerializer) Read(buf *buffer.Buffer, _ *refresolver.ReadResolver, _ *metastring.Resolver) (any, error) {
	b, err := buf.ReadLengthPrefixed()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (stringSerializer) Copy(v any) any { return v }

// NeedsTracking reports true: strings are ref-tracked by content, and
// WriteRef keys them by content whatever trackable value it is given.
func (stringSerializer) NeedsTracking() bool { return true }

// RegisterStrings wires the built-in Serializer for the default string
// registration.
func RegisterStrings(r *typeresolver.Resolver) {
	install(r, "", stringSerializer{})
}

// compressedStringSerializer is the compress_string=true path: it reuses
// the meta-string alphabet packer (base spec §4.3) for the string payload
// itself rather than only for namespace/type-name tokens, shrinking
// ASCII-alphabet-and-digit content and falling back to its UTF_8 tag
// transparently for anything else.
type compressedStringSerializer struct{}

func (compressedStringSerializer) Write(buf *buffer.Buffer, v any, _ *refresolver.WriteResolver, _ *metastring.Resolver) error {
	buf.WriteLengthPrefixed(metastring.Encode(v.(string)))
	return nil
}

func (compressedStringSerializer) Read(buf *buffer.Buffer, _ *refresolver.ReadResolver, _ *metastring.Resolver) (any, error) {
	b, err := buf.ReadLengthPrefixed()
	if err != nil {
		return nil, err
	}
	return metastring.Decode(b)
}

func (compressedStringSerializer) Copy(v any) any { return v }

func (compressedStringSerializer) NeedsTracking() bool { return true }

// InstallCompressedStrings overrides the default string serializer with the
// meta-string-encoded one, called once at Resolver construction when
// Config.CompressString is set.
func InstallCompressedStrings(r *typeresolver.Resolver) {
	install(r, "", compressedStringSerializer{})
}
