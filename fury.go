// Package fury implements a cross-language binary object-serialization
// codec: a type resolver mapping native Go types onto wire type ids, a
// reference resolver for identity sharing and cycles, a meta-string pool
// for compact namespace/name interning, and the Serializer dispatch core
// tying them together around a growable memory buffer.
//
// # Usage
//
//	f := fury.New(fury.DefaultConfig())
//	f.Register(MyStruct{})
//	f.RegisterSerializer(MyStruct{}, myStructSerializer)
//	data, err := f.Serialize(MyStruct{...})
//	v, err := f.Deserialize(data)
//
// # Concurrency
//
// A *Fury registers types once at startup and is safe for concurrent
// Serialize/Deserialize calls afterward; registering a new type
// concurrently with in-flight (de)serialization is not.
//
// # Compatibility
//
// DefaultConfig reproduces every wire example this format's base
// specification documents byte-for-byte. Enabling FrameChecksum or
// PayloadCompression uses two of the wire header's reserved flag bits and
// is only readable by a decoder that also enables them.
package fury

import (
	"io"
	"reflect"
	"sync"

	"github.com/chaokunyang/fury/internal/buffer"
	"github.com/chaokunyang/fury/internal/checksum"
	"github.com/chaokunyang/fury/internal/compression"
	"github.com/chaokunyang/fury/internal/logging"
	"github.com/chaokunyang/fury/internal/metastring"
	"github.com/chaokunyang/fury/internal/refresolver"
	"github.com/chaokunyang/fury/internal/serde"
	"github.com/chaokunyang/fury/internal/stream"
	"github.com/chaokunyang/fury/internal/typeresolver"
)

// Fury is the entry point: one instance owns a type resolver, dispatch
// core, and (optionally) a shared meta-string pool, built once from a
// Config and then reused across many Serialize/Deserialize calls.
type Fury struct {
	cfg      Config
	resolver *typeresolver.Resolver
	dispatch *serde.Dispatcher
	logger   Logger

	sharedMeta   *metastring.Resolver
	sharedMetaMu sync.Mutex
}

// New builds a Fury from cfg, wiring every registration and codec swap its
// fields name. A nil cfg is equivalent to DefaultConfig().
func New(cfg *Config) *Fury {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg

	logger := logging.OrDefault(c.Logger)

	allowUnexistent := !c.RequireClassRegistration && c.DeserializeUnexistentClass
	resolver := typeresolver.NewResolver(allowUnexistent, c.Security)
	resolver.SetLogger(logger)
	dispatch := &serde.Dispatcher{Types: resolver}
	serde.InstallDefaults(resolver, dispatch)
	serde.InstallIntCodecs(resolver, c.CompressInt, toSerdeLongEncoding(c.LongEncoding))
	if c.CompressString {
		serde.InstallCompressedStrings(resolver)
	}

	f := &Fury{
		cfg:      c,
		resolver: resolver,
		dispatch: dispatch,
		logger:   logger,
	}
	if c.ShareMetaContext {
		f.sharedMeta = metastring.NewResolver()
	}
	return f
}

// toSerdeLongEncoding maps the façade's LongEncoding onto the internal
// serde package's identically-shaped but independently declared type: the
// two packages describe the same base-spec concept at different layers and
// are not meant to share a type, so the conversion is explicit here rather
// than aliased.
func toSerdeLongEncoding(l LongEncoding) serde.LongEncoding {
	switch l {
	case LongEncodingRaw:
		return serde.LongEncodingRaw
	case LongEncodingPVL:
		return serde.LongEncodingPVL
	default:
		return serde.LongEncodingSLI
	}
}

// Register auto-assigns t the next free user id.
func (f *Fury) Register(v any) (*typeresolver.ClassInfo, error) {
	info, err := f.resolver.Register(reflect.TypeOf(v))
	return info, wrapErr(err)
}

// RegisterWithID registers t under an explicit numeric id (< 4096).
func (f *Fury) RegisterWithID(v any, userID uint32) (*typeresolver.ClassInfo, error) {
	info, err := f.resolver.RegisterWithID(reflect.TypeOf(v), userID)
	return info, wrapErr(err)
}

// RegisterNS registers t under an explicit (namespace, name) pair, the
// NS_-kind form that carries no numeric id.
func (f *Fury) RegisterNS(v any, namespace, name string) (*typeresolver.ClassInfo, error) {
	info, err := f.resolver.RegisterNS(reflect.TypeOf(v), namespace, name)
	return info, wrapErr(err)
}

// RegisterSerializer overrides the built-in Serializer for an already
// registered type with a caller-supplied one, for EXT-kind values this
// codec has no generic encoding for.
func (f *Fury) RegisterSerializer(v any, s typeresolver.Serializer) error {
	return wrapErr(f.resolver.RegisterSerializer(reflect.TypeOf(v), s))
}

// metaResolver returns the meta-string pool to use for one message: the
// shared one (reset only when not configured to persist across messages)
// or a fresh one.
func (f *Fury) metaResolver() (*metastring.Resolver, func()) {
	if f.sharedMeta != nil {
		f.sharedMetaMu.Lock()
		return f.sharedMeta, f.sharedMetaMu.Unlock
	}
	return metastring.NewResolver(), func() {}
}

// effectiveIgnoreStringRef applies the base-spec rule that CROSS language
// mode forces string reference tracking back on regardless of
// IgnoreStringRef.
func (f *Fury) effectiveIgnoreStringRef() bool {
	return f.cfg.IgnoreStringRef && f.cfg.Language != Cross
}

// Serialize encodes v into a new byte slice: a 4-byte header, followed by
// v's ref tag, wire type id, and payload, followed by an optional trailing
// checksum.
func (f *Fury) Serialize(v any) ([]byte, error) {
	f.logger.Debugf(logging.NSCodec + "serialize starting")
	buf := buffer.New(64)
	h := headerFromConfig(&f.cfg)
	writeHeader(buf, h)

	refs := refresolver.NewWriteResolver(f.cfg.TrackRef)
	refs.SetSuppressStringRef(f.effectiveIgnoreStringRef())
	meta, done := f.metaResolver()
	defer done()

	payloadStart := buf.Size()
	if err := f.dispatch.WriteValue(buf, refs, meta, v); err != nil {
		f.logger.Errorf(logging.NSCodec+"serialize failed: %v", err)
		return nil, wrapErr(err)
	}

	out := buf.Bytes()
	if f.cfg.PayloadCompression {
		out = f.maybeCompress(out, payloadStart)
	}
	if f.cfg.FrameChecksum {
		out = f.appendChecksum(out)
	}
	f.logger.Debugf(logging.NSCodec+"serialize wrote %d bytes", len(out))
	return out, nil
}

// maybeCompress replaces the payload portion (everything after
// payloadStart) with its compressed form when it meets
// CompressionThreshold, prefixing the replacement with its own uncompressed
// length so Deserialize knows how large a buffer to decompress into. When
// the payload is left uncompressed (below the threshold, or compression
// failed) it clears the header's payload-compression bit (flags byte, out[1])
// so Deserialize reads the payload as is.
func (f *Fury) maybeCompress(out []byte, payloadStart int) []byte {
	payload := out[payloadStart:]
	if len(payload) < f.cfg.CompressionThreshold {
		out[1] &^= flagPayloadCompressed
		return out
	}
	compressed, err := compression.Compress(f.cfg.CompressionType, payload)
	if err != nil {
		f.logger.Warnf(logging.NSCodec+"payload compression failed, writing uncompressed: %v", err)
		out[1] &^= flagPayloadCompressed
		return out
	}
	rebuilt := buffer.New(payloadStart + len(compressed) + 10)
	rebuilt.WriteBytes(out[:payloadStart])
	rebuilt.WriteVarUint32(uint32(len(payload)))
	rebuilt.WriteBytes(compressed)
	return rebuilt.Bytes()
}

// appendChecksum appends a 4-byte masked checksum computed over the entire
// frame produced so far.
func (f *Fury) appendChecksum(out []byte) []byte {
	sum := checksum.ComputeChecksum(f.cfg.ChecksumType, out, 0x00)
	buf := buffer.New(len(out) + 4)
	buf.WriteBytes(out)
	buf.WriteUint32LE(sum)
	return buf.Bytes()
}

// Deserialize decodes a single value from data, as written by Serialize.
func (f *Fury) Deserialize(data []byte) (any, error) {
	if f.cfg.FrameChecksum {
		var err error
		data, err = f.verifyAndStripChecksum(data)
		if err != nil {
			return nil, err
		}
	}

	buf := buffer.Wrap(data)
	h, err := readHeader(buf)
	if err != nil {
		return nil, wrapErr(err)
	}

	payload := buf.Bytes()[buf.ReaderIndex():]
	if h.payloadCompression {
		decompressed, err := f.decompressPayload(payload)
		if err != nil {
			return nil, wrapErr(err)
		}
		buf = buffer.Wrap(decompressed)
	}

	refs := refresolver.NewReadResolver()
	meta, done := f.metaResolver()
	defer done()

	v, err := f.dispatch.ReadValue(buf, refs, meta)
	if err != nil {
		f.logger.Errorf(logging.NSCodec+"deserialize failed: %v", err)
		return nil, wrapErr(err)
	}
	return v, nil
}

func (f *Fury) verifyAndStripChecksum(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, wrapErr(buffer.ErrBufferTooSmall)
	}
	frame := data[:len(data)-4]
	trailer := buffer.Wrap(data[len(data)-4:])
	want, err := trailer.ReadUint32LE()
	if err != nil {
		return nil, wrapErr(err)
	}
	got := checksum.ComputeChecksum(f.cfg.ChecksumType, frame, 0x00)
	if got != want {
		return nil, wrapErr(ErrChecksumMismatch)
	}
	return frame, nil
}

func (f *Fury) decompressPayload(payload []byte) ([]byte, error) {
	src := buffer.Wrap(payload)
	size, err := src.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	compressed := src.Bytes()[src.ReaderIndex():]
	return compression.DecompressWithSize(f.cfg.CompressionType, compressed, int(size))
}

// DeserializeFrom decodes a single value read incrementally from r. Frame
// checksum and payload compression, which need the complete frame bytes up
// front, are not supported on this path; use Deserialize for those.
func (f *Fury) DeserializeFrom(r io.Reader) (any, error) {
	buf := buffer.New(64).WithStream(stream.New(r, 4096))
	if err := buf.FillBuffer(headerSize); err != nil {
		return nil, wrapErr(err)
	}
	h, err := readHeader(buf)
	if err != nil {
		return nil, wrapErr(err)
	}
	if h.frameChecksum || h.payloadCompression {
		return nil, wrapErr(ErrBadHeader)
	}

	refs := refresolver.NewReadResolver()
	meta, done := f.metaResolver()
	defer done()

	v, err := f.dispatch.ReadValue(buf, refs, meta)
	if err != nil {
		return nil, wrapErr(err)
	}
	return v, nil
}
