package http11

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// ChunkedFramer frames an outbound response body as HTTP/1.1 chunked
// transfer-coding (RFC 7230 §4.1). Inbound chunked request bodies are never
// decoded by this engine (see ErrChunkedRequestBody) — chunked framing is an
// output-only concern here, mirroring nxt_h1p_chunk_create: each call writes
// one buffer as "SIZE\r\n" + data + "\r\n", and Finish writes the
// "0\r\n\r\n" last-chunk marker. An empty chunk writes nothing, matching
// nxt_h1p_chunk_create's "size == 0 returns the buffer chain unchanged".
//
// The hex-size prefix is built in a pooled scratch buffer (bytebufferpool)
// rather than with strconv+allocation per chunk.
type ChunkedFramer struct {
	scratch *bytebufferpool.ByteBuffer
}

// NewChunkedFramer returns a ready-to-use framer backed by a pooled scratch
// buffer. Callers must call Release when done with the framer.
func NewChunkedFramer() *ChunkedFramer {
	return &ChunkedFramer{scratch: bytebufferpool.Get()}
}

// Release returns the framer's scratch buffer to the pool. The framer must
// not be used afterward.
func (f *ChunkedFramer) Release() {
	bytebufferpool.Put(f.scratch)
	f.scratch = nil
}

// WriteChunk frames data as one chunk and writes it to w. A zero-length
// chunk is a no-op (the final chunk is always written by Finish, never by an
// empty WriteChunk call).
func (f *ChunkedFramer) WriteChunk(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	f.scratch.Reset()
	f.scratch.B = appendHexUint(f.scratch.B, uint64(len(data)))
	f.scratch.B = append(f.scratch.B, '\r', '\n')

	if _, err := w.Write(f.scratch.B); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(crlfBytes)
	return err
}

// Finish writes the last-chunk marker ("0\r\n\r\n") that terminates a
// chunked body. Call exactly once after all WriteChunk calls.
func (f *ChunkedFramer) Finish(w io.Writer) error {
	_, err := w.Write(lastChunkBytes)
	return err
}

var lastChunkBytes = []byte("0\r\n\r\n")

// appendHexUint appends the lowercase hexadecimal representation of n to buf
// without an intermediate allocation (strconv.FormatUint would allocate the
// returned string).
func appendHexUint(buf []byte, n uint64) []byte {
	if n == 0 {
		return append(buf, '0')
	}

	const hexDigits = "0123456789abcdef"
	var tmp [16]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = hexDigits[n&0xF]
		n >>= 4
	}
	return append(buf, tmp[i:]...)
}
