// Package gzippedhttp provides the HTTP middleware that inflates gzip
// request bodies and compresses responses for clients accepting gzip.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// compressedReader inflates a gzip request body and closes both streams.
type compressedReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func newCompressedReader(body io.ReadCloser) (*compressedReader, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &compressedReader{
		body: body,
		zr:   zr,
	}, nil
}

func (c *compressedReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

func (c *compressedReader) Close() error {
	if err := c.zr.Close(); err != nil {
		return err
	}
	return c.body.Close()
}

// compressedResponseWriter deflates the body and announces it in the
// headers right before they are sent, whatever the status code.
type compressedResponseWriter struct {
	w           http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func newCompressedResponseWriter(w http.ResponseWriter) *compressedResponseWriter {
	zw := gzipWriterPool.Get().(*gzip.Writer)
	zw.Reset(w)

	return &compressedResponseWriter{
		w:  w,
		zw: zw,
	}
}

func (c *compressedResponseWriter) Header() http.Header {
	return c.w.Header()
}

func (c *compressedResponseWriter) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.wroteHeader = true

	header := c.w.Header()
	header.Del("Content-Length")
	header.Set("Content-Encoding", "gzip")
	header.Add("Vary", "Accept-Encoding")

	c.w.WriteHeader(statusCode)
}

func (c *compressedResponseWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		if c.w.Header().Get("Content-Type") == "" {
			c.w.Header().Set("Content-Type", http.DetectContentType(p))
		}
		c.WriteHeader(http.StatusOK)
	}
	return c.zw.Write(p)
}

// Close flushes the gzip stream. Nothing is written when the handler
// never produced a response.
func (c *compressedResponseWriter) Close() error {
	defer gzipWriterPool.Put(c.zw)

	if !c.wroteHeader {
		c.zw.Reset(io.Discard)
		return nil
	}
	return c.zw.Close()
}

// Middleware decompresses gzip request bodies (Content-Encoding: gzip) and
// compresses responses when the client sends Accept-Encoding: gzip.
// A body that is not valid gzip is answered with 400.
func Middleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			body, err := newCompressedReader(request.Body)
			if err != nil {
				http.Error(response, "invalid gzip body", http.StatusBadRequest)
				return
			}
			request.Body = body
			request.Header.Del("Content-Encoding")
			request.ContentLength = -1
			defer body.Close()
		}

		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		compressed := newCompressedResponseWriter(response)
		defer compressed.Close()

		h.ServeHTTP(compressed, request)
	}

	return http.HandlerFunc(middleware)
}
