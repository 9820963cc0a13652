package collyfetcher

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodingTransport decodes br, gzip and deflate bodies. Fingerprints set
// Accept-Encoding explicitly, which turns off net/http's transparent gzip.
type decodingTransport struct {
	base http.RoundTripper
}

func newDecodingTransport(base http.RoundTripper) *decodingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &decodingTransport{base: base}
}

func (t *decodingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err //nolint:wrapcheck // RoundTripper errors pass through unchanged.
	}
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	if encoding == "" || encoding == "identity" {
		return resp, nil
	}
	body, err := decodeBody(encoding, resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	resp.Body = body
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

func decodeBody(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch encoding {
	case "br":
		return &wrappedBody{Reader: brotli.NewReader(body), closer: body}, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &wrappedBody{Reader: zr, closer: body}, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("deflate reader: %w", err)
		}
		return &wrappedBody{Reader: zr, closer: body}, nil
	default:
		return body, nil
	}
}

// wrappedBody reads decoded bytes and closes the underlying body.
type wrappedBody struct {
	io.Reader
	closer io.Closer
}

func (b *wrappedBody) Close() error {
	if c, ok := b.Reader.(io.Closer); ok {
		_ = c.Close()
	}
	return b.closer.Close() //nolint:wrapcheck // body close errors pass through unchanged.
}
