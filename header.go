package fury

import "github.com/chaokunyang/fury/internal/buffer"

// headerMagic is the leading byte of every message (base spec §6).
const headerMagic = 0x80 | 0x3D // 0xBD

// headerSize is the fixed 4-byte header length: magic, flags, and two
// reserved bytes left zero by this implementation.
const headerSize = 4

// Flag bit positions within the header's second byte. Bits 0-4 are base
// spec §4.7's; bits 5-6 are this repo's reserved-bit extensions (SPEC_FULL
// §6); bit 7 is unused.
const (
	flagLanguageCross     = 1 << 0
	flagTrackRef          = 1 << 1
	flagCompressInt       = 1 << 2
	flagLongCompressed    = 1 << 3
	flagMetaContextShared = 1 << 4
	flagFrameChecksum     = 1 << 5
	flagPayloadCompressed = 1 << 6
)

// header is the decoded form of a message's 4-byte preamble.
type header struct {
	language           Language
	trackRef           bool
	compressInt        bool
	longCompressed     bool
	metaContextShared  bool
	frameChecksum      bool
	payloadCompression bool
}

func headerFromConfig(c *Config) header {
	return header{
		language:           c.Language,
		trackRef:           c.TrackRef,
		compressInt:        c.CompressInt,
		longCompressed:     c.LongEncoding != LongEncodingRaw,
		metaContextShared:  c.ShareMetaContext,
		frameChecksum:      c.FrameChecksum,
		payloadCompression: c.PayloadCompression,
	}
}

func (h header) flags() byte {
	var f byte
	if h.language == Cross {
		f |= flagLanguageCross
	}
	if h.trackRef {
		f |= flagTrackRef
	}
	if h.compressInt {
		f |= flagCompressInt
	}
	if h.longCompressed {
		f |= flagLongCompressed
	}
	if h.metaContextShared {
		f |= flagMetaContextShared
	}
	if h.frameChecksum {
		f |= flagFrameChecksum
	}
	if h.payloadCompression {
		f |= flagPayloadCompressed
	}
	return f
}

// writeHeader appends the 4-byte header to buf.
func writeHeader(buf *buffer.Buffer, h header) {
	buf.WriteByte(headerMagic)
	buf.WriteByte(h.flags())
	buf.WriteByte(0)
	buf.WriteByte(0)
}

// readHeader consumes and decodes the 4-byte header from buf.
func readHeader(buf *buffer.Buffer) (header, error) {
	magic, err := buf.ReadByte()
	if err != nil {
		return header{}, err
	}
	if magic != headerMagic {
		return header{}, ErrBadHeader
	}
	flags, err := buf.ReadByte()
	if err != nil {
		return header{}, err
	}
	if _, err := buf.ReadByte(); err != nil {
		return header{}, err
	}
	if _, err := buf.ReadByte(); err != nil {
		return header{}, err
	}
	h := header{
		trackRef:           flags&flagTrackRef != 0,
		compressInt:        flags&flagCompressInt != 0,
		longCompressed:     flags&flagLongCompressed != 0,
		metaContextShared:  flags&flagMetaContextShared != 0,
		frameChecksum:      flags&flagFrameChecksum != 0,
		payloadCompression: flags&flagPayloadCompressed != 0,
	}
	if flags&flagLanguageCross != 0 {
		h.language = Cross
	} else {
		h.language = SameRuntime
	}
	return h, nil
}
