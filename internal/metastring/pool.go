package metastring

import (
	"github.com/zeebo/xxh3"

	"github.com/chaokunyang/fury/internal/buffer"
)

// Bytes is an interned, encoded representation of a namespace or type-name
// string: the packed payload produced by Encode, plus its content hash used
// both as the composite-hash cache key in the type resolver and as the
// dedup key in Resolver's intern table.
type Bytes struct {
	Data []byte
	Hash uint64
}

// NewBytes encodes s and computes its hash. Two calls with the same s always
// produce a Bytes with an identical Data slice and Hash.
func NewBytes(s string) Bytes {
	data := Encode(s)
	return Bytes{Data: data, Hash: xxh3.Hash(data)}
}

// Resolver's WriteBytes/WriteString and ReadString implement the per-stream
// interning protocol: the
// first time a given Bytes crosses the wire in a message it is written in
// full and assigned the next sequential token; every later occurrence in the
// same message writes only the token.
const (
	newEntryFlag = 1
)

// Resolver tracks which Bytes have already been written to, or read from,
// the current message, assigning and resolving per-stream tokens. It is not
// safe for concurrent use; callers hold one per in-flight (de)serialization.
type Resolver struct {
	writeIndex map[uint64]uint32 // hash -> token, for strings seen on write
	writeSeen  []Bytes
	readSeen   []string
}

// NewResolver returns a Resolver with empty per-message state.
func NewResolver() *Resolver {
	return &Resolver{writeIndex: make(map[uint64]uint32)}
}

// Reset clears per-message interning state so the Resolver can be reused
// across independent messages without re-allocating.
func (r *Resolver) Reset() {
	for k := range r.writeIndex {
		delete(r.writeIndex, k)
	}
	r.writeSeen = r.writeSeen[:0]
	r.readSeen = r.readSeen[:0]
}

// WriteString writes s to buf using the interning token protocol: on first
// occurrence, a VarUint32 with bit0 set, then the VarUint32-prefixed encoded
// payload; on repeat occurrence, a single VarUint32 with bit0 clear carrying
// the previously assigned token.
func (r *Resolver) WriteString(buf *buffer.Buffer, s string) {
	ms := NewBytes(s)
	r.WriteBytes(buf, ms)
}

// WriteBytes is WriteString for a caller that has already encoded the
// string, avoiding a redundant Encode call when the same Bytes is written
// many times across one process lifetime.
func (r *Resolver) WriteBytes(buf *buffer.Buffer, ms Bytes) {
	if token, ok := r.writeIndex[ms.Hash]; ok {
		buf.WriteVarUint32(token << 1)
		return
	}
	token := uint32(len(r.writeSeen))
	r.writeIndex[ms.Hash] = token
	r.writeSeen = append(r.writeSeen, ms)

	buf.WriteVarUint32((token << 1) | newEntryFlag)
	buf.WriteVarUint32(uint32(len(ms.Data)))
	buf.WriteBytes(ms.Data)
}

// ReadString is the inverse of WriteString: it consumes one token from buf
// and returns the decoded string, resolving repeat tokens against what this
// Resolver has already read in the current message.
func (r *Resolver) ReadString(buf *buffer.Buffer) (string, error) {
	header, err := buf.ReadVarUint32()
	if err != nil {
		return "", err
	}
	token := header >> 1
	if header&newEntryFlag == 0 {
		if int(token) >= len(r.readSeen) {
			return "", ErrUnknownToken
		}
		return r.readSeen[token], nil
	}
	length, err := buf.ReadVarUint32()
	if err != nil {
		return "", err
	}
	payload, err := buf.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	s, err := Decode(payload)
	if err != nil {
		return "", err
	}
	r.readSeen = append(r.readSeen, s)
	return s, nil
}
