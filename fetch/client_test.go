package fetch

import (
	"bytes"
	"context"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

func TestFetchBytesReturnsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("X-Custom", "yes")
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	resp, err := client.FetchBytes(context.Background(), RequestContext{URL: srv.URL})
	if err != nil {
		t.Fatalf("FetchBytes: %v", err)
	}
	if string(resp.Body) != "hello world" {
		t.Errorf("Body = %q, want %q", resp.Body, "hello world")
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	if got := resp.Headers["X-Custom"]; len(got) != 1 || got[0] != "yes" {
		t.Errorf("Headers[X-Custom] = %v, want [yes]", got)
	}
}

func TestFetchBytesReturnsBadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	_, err = client.FetchBytes(context.Background(), RequestContext{URL: srv.URL})
	var badStatus *BadStatusError
	if !isBadStatus(err, &badStatus) {
		t.Fatalf("got %T (%v), want *BadStatusError", err, err)
	}
	if badStatus.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", badStatus.Status)
	}
}

func TestFetchBytesRejectsInvalidScheme(t *testing.T) {
	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	_, err = client.FetchBytes(context.Background(), RequestContext{URL: "ftp://example.com/file"})
	if _, ok := err.(*InvalidURLError); !ok {
		t.Fatalf("got %T, want *InvalidURLError", err)
	}
}

// TestFetchBytesSucceedsAgainstHTTP1OnlyTLSBackend guards against the
// accelerated transport's TLSClientConfig.NextProtos regressing to an
// h2-only ALPN offer: an HTTP/1.1-only origin would answer that with a
// fatal no_application_protocol alert instead of completing the handshake.
func TestFetchBytesSucceedsAgainstHTTP1OnlyTLSBackend(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	client.accelerated.Transport.(*http.Transport).TLSClientConfig.RootCAs = pool

	resp, err := client.FetchBytes(context.Background(), RequestContext{URL: srv.URL})
	if err != nil {
		t.Fatalf("FetchBytes against HTTP/1.1-only TLS backend: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("Body = %q, want %q", resp.Body, "ok")
	}
}

func TestFetchBytesOpensCircuitAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = client.FetchBytes(context.Background(), RequestContext{URL: srv.URL})
	}
	if lastErr == nil {
		t.Fatal("expected an error after repeated failures, got nil")
	}
	var netErr *NetworkError
	if e, ok := lastErr.(*NetworkError); ok {
		netErr = e
	}
	if netErr == nil || netErr.Stage != "circuit-open" {
		t.Fatalf("got %T (%v), want a circuit-open NetworkError after repeated failures", lastErr, lastErr)
	}
}

func TestFetchTextDecodesUTF8Body(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>café</body></html>"))
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	text, err := client.FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if text == "" {
		t.Error("expected non-empty text")
	}
}

func TestFetchBytesDecodesBrotliBody(t *testing.T) {
	var compressed bytes.Buffer
	w := brotli.NewWriter(&compressed)
	if _, err := w.Write([]byte("hello brotli world")); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Encoding", "br")
		w.Write(compressed.Bytes())
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	resp, err := client.FetchBytes(context.Background(), RequestContext{URL: srv.URL})
	if err != nil {
		t.Fatalf("FetchBytes: %v", err)
	}
	if string(resp.Body) != "hello brotli world" {
		t.Errorf("Body = %q, want %q", resp.Body, "hello brotli world")
	}
	if _, ok := resp.Headers["Content-Encoding"]; ok {
		t.Error("Content-Encoding header should be stripped once the body is decoded")
	}
}

func TestFetchBytesDecodesZstdBody(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	compressed := enc.EncodeAll([]byte("hello zstd world"), nil)
	enc.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Encoding", "zstd")
		w.Write(compressed)
	}))
	defer srv.Close()

	client, err := NewAcceleratedClient(Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	resp, err := client.FetchBytes(context.Background(), RequestContext{URL: srv.URL})
	if err != nil {
		t.Fatalf("FetchBytes: %v", err)
	}
	if string(resp.Body) != "hello zstd world" {
		t.Errorf("Body = %q, want %q", resp.Body, "hello zstd world")
	}
}
