// Package stream adapts an external chunked byte source (file, socket,
// framed channel) to the buffer package's on-demand backfill contract.
//
// Reference: the teacher's internal/vfs sequential-file reading pattern,
// generalized from disk files to any io.Reader.
package stream

import (
	"errors"
	"io"
)

// ErrTruncated is returned when the upstream source is exhausted before a
// required fill could be satisfied.
var ErrTruncated = errors.New("stream: truncated input")

// Reader wraps an io.Reader, pulling chunks on demand to satisfy
// buffer.Buffer.FillBuffer requests. Any byte it ever returns is read from
// the upstream at most once.
type Reader struct {
	src    io.Reader
	chunk  int
	greedy bool
	pulled int64
}

// New creates a Reader over src. chunkSize is how far ahead a Fill reads
// when greedy prefetch is on; it is not otherwise used, and a Fill asks a
// single underlying Read for as many bytes as it still needs. By default
// Fill never pulls more than
// the caller's min, so a Reader can be reused across several framed
// messages on one io.Reader (a socket, a framed channel) without one
// message's Fill call consuming bytes that belong to the next. Call
// SetGreedyPrefetch to opt into over-reading up to chunkSize per Fill, which
// trades that multi-message safety for fewer syscalls when the Reader is
// known to be consumed by exactly one Fill-driven decode over its lifetime.
func New(src io.Reader, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	return &Reader{src: src, chunk: chunkSize}
}

// SetGreedyPrefetch enables or disables pulling up to chunkSize bytes ahead
// of what a Fill call strictly needs. Default: disabled.
func (r *Reader) SetGreedyPrefetch(greedy bool) { r.greedy = greedy }

// BytesPulled reports the total number of bytes ever pulled from the
// upstream source, for idempotence checks in tests.
func (r *Reader) BytesPulled() int64 { return r.pulled }

// Fill appends at least min additional bytes to dst (which already holds the
// buffer's current contents) and returns the extended slice. With greedy
// prefetch off (the default), it never reads past min bytes beyond dst's
// current length. It loops with blocking reads until min bytes have been
// appended or the source signals exhaustion, in which case it returns
// ErrTruncated.
func (r *Reader) Fill(dst []byte, min int) ([]byte, error) {
	want := min
	if r.greedy && want < r.chunk {
		want = r.chunk
	}
	got := 0
	for got < min {
		start := len(dst)
		room := want - got
		dst = append(dst, make([]byte, room)...)
		n, err := r.src.Read(dst[start:])
		dst = dst[:start+n]
		r.pulled += int64(n)
		got += n
		if err != nil {
			if got >= min {
				return dst, nil
			}
			if errors.Is(err, io.EOF) {
				return dst, ErrTruncated
			}
			return dst, err
		}
	}
	return dst, nil
}
