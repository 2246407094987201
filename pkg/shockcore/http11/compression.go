package http11

import (
	"bytes"
	"strconv"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/valyala/bytebufferpool"
)

// Compression selects the codec applied to a response body in Send-Header.
// It is a supplemental, opt-in filter: nginx unit itself ships gzip/brotli
// as a separate module layered on top of the core request/response path,
// never required by any H1 state-machine invariant.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBrotli
)

var (
	encodingGzipBytes     = []byte("gzip")
	encodingBrotliBytes   = []byte("br")
	headerContentEncoding = []byte("Content-Encoding")
)

// NegotiateCompression picks the codec to apply given the socket's configured
// mode and the request's Accept-Encoding field. With CompressionBrotli
// configured it returns brotli if the client advertises "br", and otherwise
// falls back to gzip if the client advertises "gzip". With CompressionGzip
// configured it returns gzip only if the client advertises it. In every other
// case it returns CompressionNone, leaving the response uncompressed rather
// than using a codec the client did not list.
func NegotiateCompression(configured Compression, acceptEncoding []byte) Compression {
	if configured == CompressionNone || len(acceptEncoding) == 0 {
		return CompressionNone
	}
	switch configured {
	case CompressionBrotli:
		if bytes.Contains(acceptEncoding, encodingBrotliBytes) {
			return CompressionBrotli
		}
		if bytes.Contains(acceptEncoding, encodingGzipBytes) {
			return CompressionGzip
		}
	case CompressionGzip:
		if bytes.Contains(acceptEncoding, encodingGzipBytes) {
			return CompressionGzip
		}
	}
	return CompressionNone
}

// EnableCompression arms body compression for the current response. It must
// be called before the first Write/WriteHeader of the response. Connection.Serve
// calls it with the codec NegotiateCompression picks from the request's
// Accept-Encoding before invoking the handler. Once armed, Write accumulates into a scratch buffer
// instead of going straight to the wire: the codec needs the full body to
// produce an exact Content-Length, which also pins the response's framing
// to Content-Length rather than the auto-chunked default writeHeaders
// otherwise picks for a Content-Length-less response (see writeHeaders).
func (rw *ResponseWriter) EnableCompression(c Compression) {
	if rw.headerWritten || c == CompressionNone {
		return
	}
	rw.compression = c
	if rw.rawBody == nil {
		rw.rawBody = bytebufferpool.Get()
	}
}

// compressBody runs the configured codec over rw.rawBody and replaces it with
// the compressed form, setting Content-Encoding and Content-Length. Called
// once from writeHeaders when compression was armed.
func (rw *ResponseWriter) compressBody() error {
	out := bytebufferpool.Get()
	switch rw.compression {
	case CompressionGzip:
		gz := getGzipWriter(out)
		if _, err := gz.Write(rw.rawBody.B); err != nil {
			putGzipWriter(gz)
			bytebufferpool.Put(out)
			return err
		}
		if err := gz.Close(); err != nil {
			putGzipWriter(gz)
			bytebufferpool.Put(out)
			return err
		}
		putGzipWriter(gz)
		rw.header.Set(headerContentEncoding, encodingGzipBytes)
	case CompressionBrotli:
		br := brotli.NewWriterLevel(out, brotli.DefaultCompression)
		if _, err := br.Write(rw.rawBody.B); err != nil {
			br.Close()
			bytebufferpool.Put(out)
			return err
		}
		if err := br.Close(); err != nil {
			bytebufferpool.Put(out)
			return err
		}
		rw.header.Set(headerContentEncoding, encodingBrotliBytes)
	default:
		bytebufferpool.Put(out)
		return nil
	}

	bytebufferpool.Put(rw.rawBody)
	rw.rawBody = out
	rw.header.Set(headerContentLength, []byte(strconv.Itoa(len(out.B))))
	return nil
}

// gzipWriterPool reuses *gzip.Writer across requests; klauspost/compress's
// Writer supports Reset, matching the pooling idiom this package already
// uses for Parser/ResponseWriter/bufio objects (see pool.go).
var gzipWriterPool = newGzipPool()

type gzipPool struct{ pool chan *gzip.Writer }

func newGzipPool() *gzipPool {
	return &gzipPool{pool: make(chan *gzip.Writer, 64)}
}

func getGzipWriter(w *bytebufferpool.ByteBuffer) *gzip.Writer {
	select {
	case gz := <-gzipWriterPool.pool:
		gz.Reset(w)
		return gz
	default:
		return gzip.NewWriter(w)
	}
}

func putGzipWriter(gz *gzip.Writer) {
	select {
	case gzipWriterPool.pool <- gz:
	default:
	}
}
