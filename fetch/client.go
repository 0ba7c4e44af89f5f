// Package fetch implements the accelerated HTTP client: protocol
// negotiation across HTTP/1.1, HTTP/2, and HTTP/3, connection pooling,
// transparent decompression, and browser-fingerprint-realistic headers.
package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/http2"

	"github.com/MikkoParkkola/nab/fingerprint"
	"github.com/MikkoParkkola/nab/resilience"
	"github.com/MikkoParkkola/nab/safeurl"
)

// Config configures an AcceleratedClient. A zero-value Config is usable;
// defaults() fills in every unset field.
type Config struct {
	ConnectTimeout   time.Duration
	TotalTimeout     time.Duration
	MaxRedirects     int
	PoolIdleTimeout  time.Duration
	PoolPerOriginCap int
	EnableHTTP3      bool
	ProfileKind      fingerprint.Kind
	Logger           *slog.Logger
	MaxBodyBytes     int64
	AutoReferer      bool
}

func (c Config) defaults() Config {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.TotalTimeout == 0 {
		c.TotalTimeout = 60 * time.Second
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = 10
	}
	if c.PoolIdleTimeout == 0 {
		c.PoolIdleTimeout = 90 * time.Second
	}
	if c.PoolPerOriginCap == 0 {
		c.PoolPerOriginCap = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = safeurl.DefaultMaxBody
	}
	return c
}

// Client is the AcceleratedClient described by the spec: one shared,
// internally synchronized handle backing every fetch in a process.
type Client struct {
	cfg     Config
	profile fingerprint.Profile

	accelerated *http.Client // ALPN offers h2 then http/1.1: the "fast path".
	plain       *http.Client // ALPN negotiates h2 and http/1.1: for provider APIs.
	h3          *h3RoundTripper

	altSvc sync.Map // host -> bool, learned from Alt-Svc response headers

	breakersMu sync.Mutex
	breakers   map[string]*resilience.CircuitBreaker // keyed by host, lazily created
}

// NewAcceleratedClient builds a Client with two sub-transports: an
// accelerated path that offers h2 then http/1.1 over ALPN and, when
// cfg.EnableHTTP3 is set, an HTTP/3 transport attempted first for origins
// known to support it. The plain path (see NewPlainHTTPClient) negotiates
// ALPN the same way over a separately pooled transport; the Reddit provider
// uses it through FetchNegotiated.
func NewAcceleratedClient(cfg Config) (*Client, error) {
	cfg = cfg.defaults()
	profile := fingerprint.Random(cfg.ProfileKind)

	acceleratedTransport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS13,
			// h3 is attempted separately via h3.go's dedicated QUIC round
			// tripper; offering only h2/http1.1 here means an HTTP/1.1-only
			// origin still completes its ALPN handshake instead of getting a
			// fatal no_application_protocol alert.
			NextProtos:         []string{"h2", "http/1.1"},
			ClientSessionCache: tls.NewLRUClientSessionCache(64),
		},
		MaxIdleConnsPerHost:   cfg.PoolPerOriginCap,
		IdleConnTimeout:       cfg.PoolIdleTimeout,
		DisableCompression:    true,
		ResponseHeaderTimeout: cfg.TotalTimeout,
	}
	if err := http2.ConfigureTransport(acceleratedTransport); err != nil {
		return nil, fmt.Errorf("fetch: configuring h2 transport: %w", err)
	}
	accelerated := &http.Client{
		Transport:     acceleratedTransport,
		Timeout:       cfg.TotalTimeout,
		CheckRedirect: redirectPolicy(cfg),
	}

	c := &Client{
		cfg:         cfg,
		profile:     profile,
		accelerated: accelerated,
		plain:       NewPlainHTTPClient(cfg),
		breakers:    make(map[string]*resilience.CircuitBreaker),
	}
	if cfg.EnableHTTP3 {
		c.h3 = newH3RoundTripper(cfg)
	}
	return c, nil
}

// NewPlainHTTPClient builds a standalone client that negotiates ALPN
// normally (offering both h2 and http/1.1, the same offer as the
// accelerated path), for callers — such as the Reddit provider — that want
// an independently pooled connection without the accelerated transport's
// TLS session cache.
func NewPlainHTTPClient(cfg Config) *http.Client {
	cfg = cfg.defaults()
	t := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS13,
			NextProtos: []string{"h2", "http/1.1"},
		},
		ForceAttemptHTTP2:     true,
		DisableCompression:    true,
		IdleConnTimeout:       cfg.PoolIdleTimeout,
		MaxIdleConnsPerHost:   cfg.PoolPerOriginCap,
		ResponseHeaderTimeout: cfg.TotalTimeout,
	}
	return &http.Client{
		Transport:     t,
		Timeout:       cfg.TotalTimeout,
		CheckRedirect: redirectPolicy(cfg),
	}
}

func redirectPolicy(cfg Config) func(req *http.Request, via []*http.Request) error {
	cfg = cfg.defaults()
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return &TooManyRedirectsError{URL: req.URL.String(), Limit: cfg.MaxRedirects}
		}
		prev := via[len(via)-1]
		if prev.URL.Scheme == "https" && req.URL.Scheme == "http" {
			req.Header.Del("Authorization")
			req.Header.Del("Cookie")
		}
		return nil
	}
}

// Profile returns the browser fingerprint pinned at construction.
func (c *Client) Profile() fingerprint.Profile { return c.profile }

func (c *Client) buildHeaders(rc RequestContext) http.Header {
	h := c.profile.Headers()
	h.Set("Accept-Encoding", "br, zstd, gzip, deflate")
	for _, kv := range rc.ExtraHeaders {
		h.Add(kv.Name, kv.Value)
	}
	if len(rc.Cookies) > 0 {
		var sb strings.Builder
		for i, ck := range rc.Cookies {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(ck.Name)
			sb.WriteByte('=')
			sb.WriteString(ck.Value)
		}
		h.Set("Cookie", sb.String())
	}
	if c.cfg.AutoReferer && h.Get("Referer") == "" {
		if u, err := url.Parse(rc.URL); err == nil {
			h.Set("Referer", u.Scheme+"://"+u.Host+"/")
		}
	}
	return h
}

// FetchBytes performs rc against origin over the accelerated path: HTTP/3
// is attempted first when enabled and the origin is known (via a cached
// Alt-Svc observation) to support it, falling back to the h2/http/1.1
// transport on any H3 failure.
func (c *Client) FetchBytes(ctx context.Context, rc RequestContext) (Response, error) {
	u, err := url.Parse(rc.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Response{}, &InvalidURLError{URL: rc.URL, Cause: err}
	}

	if c.h3 != nil && u.Scheme == "https" && c.supportsH3(u.Host) {
		resp, err := c.fetchVia(ctx, rc, c.h3.client(), ProtoH3)
		if err == nil {
			return resp, nil
		}
		c.cfg.Logger.WarnContext(ctx, "http/3 attempt failed, falling back to h2", "url", rc.URL, "error", err)
		c.altSvc.Store(u.Host, false)
	}

	proto := ProtoH2
	if u.Scheme != "https" {
		proto = ProtoH1
	}
	return c.fetchVia(ctx, rc, c.accelerated, proto)
}

// FetchNegotiated is identical to FetchBytes but always uses the plain
// path, a separately pooled client with the same h2/http/1.1 ALPN offer,
// and never attempts HTTP/3.
func (c *Client) FetchNegotiated(ctx context.Context, rc RequestContext) (Response, error) {
	return c.fetchVia(ctx, rc, c.plain, ProtoH2)
}

func (c *Client) fetchVia(ctx context.Context, rc RequestContext, hc *http.Client, proto Protocol) (Response, error) {
	u, err := url.Parse(rc.URL)
	if err != nil {
		return Response{}, &InvalidURLError{URL: rc.URL, Cause: err}
	}

	var resp Response
	err = c.breakerFor(u.Host).GuardContext(ctx, func(ctx context.Context) error {
		var fetchErr error
		resp, fetchErr = c.doFetch(ctx, rc, hc, proto)
		return fetchErr
	})
	var openErr *resilience.ErrCircuitOpen
	if errors.As(err, &openErr) {
		return Response{}, &NetworkError{URL: rc.URL, Stage: "circuit-open", Cause: err}
	}
	return resp, err
}

// breakerFor returns the per-host circuit breaker, creating it on first use.
// Breakers are keyed by host rather than shared across the client so one
// misbehaving origin cannot stall fetches to every other host.
func (c *Client) breakerFor(host string) *resilience.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()
	cb, ok := c.breakers[host]
	if !ok {
		cb = resilience.NewCircuitBreaker(host,
			resilience.WithBreakerThreshold(3),
			resilience.WithBreakerResetTimeout(time.Minute),
			resilience.WithBreakerLogger(c.cfg.Logger))
		c.breakers[host] = cb
	}
	return cb
}

func (c *Client) doFetch(ctx context.Context, rc RequestContext, hc *http.Client, proto Protocol) (Response, error) {
	requestID := uuid.NewString()
	start := time.Now()
	method := rc.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(rc.Body) > 0 {
		body = strings.NewReader(string(rc.Body))
	}
	req, err := http.NewRequestWithContext(ctx, method, rc.URL, body)
	if err != nil {
		return Response{}, &InvalidURLError{URL: rc.URL, Cause: err}
	}
	req.Header = c.buildHeaders(rc)
	c.cfg.Logger.DebugContext(ctx, "fetch: request started", "request_id", requestID, "url", rc.URL, "protocol", proto)

	httpResp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, &TimeoutError{URL: rc.URL, Stage: "round-trip"}
		}
		return Response{}, classifyTransportError(rc.URL, err)
	}
	defer httpResp.Body.Close()

	if altSvc := httpResp.Header.Get("Alt-Svc"); altSvc != "" && strings.Contains(altSvc, "h3") {
		c.altSvc.Store(req.URL.Host, true)
	}

	raw, err := safeurl.LimitedReadAll(httpResp.Body, c.cfg.MaxBodyBytes)
	if err != nil {
		return Response{}, &NetworkError{URL: rc.URL, Stage: "body", Cause: err}
	}

	encoding := httpResp.Header.Get("Content-Encoding")
	decoded, err := decodeBody(raw, encoding)
	if err != nil {
		return Response{}, &DecodeError{URL: rc.URL, Scheme: encoding, Cause: err}
	}

	headers := map[string][]string{}
	for k, v := range httpResp.Header {
		if strings.EqualFold(k, "Content-Encoding") {
			continue
		}
		headers[k] = v
	}

	resp := Response{
		Status:      httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Headers:     headers,
		Body:        decoded,
		ElapsedMs:   float64(time.Since(start).Microseconds()) / 1000.0,
		Protocol:    proto,
		FinalURL:    httpResp.Request.URL.String(),
		RequestID:   requestID,
	}
	if resp.Status >= 400 {
		return resp, &BadStatusError{URL: rc.URL, Status: resp.Status}
	}
	return resp, nil
}

func classifyTransportError(rawURL string, err error) error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &TimeoutError{URL: rawURL, Stage: "connect"}
	}
	if _, ok := err.(*tls.CertificateVerificationError); ok {
		return &TLSError{URL: rawURL, Cause: err}
	}
	if strings.Contains(err.Error(), "tls:") || strings.Contains(err.Error(), "x509:") {
		return &TLSError{URL: rawURL, Cause: err}
	}
	return &NetworkError{URL: rawURL, Stage: "connect", Cause: err}
}

func decodeBody(raw []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip":
		r, err := gzip.NewReader(strings.NewReader(string(raw)))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "deflate":
		r := flate.NewReader(strings.NewReader(string(raw)))
		defer r.Close()
		return io.ReadAll(r)
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	case "zstd":
		r, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unsupported content-encoding %q", encoding)
	}
}

// FetchText decodes the body of a GET as text, honoring the response's
// charset (via the HTTP/meta charset declared in the body) and falling back
// to UTF-8 lossy decoding.
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.FetchBytes(ctx, RequestContext{URL: rawURL, Method: http.MethodGet, Fingerprint: c.profile})
	if err != nil {
		var bad *BadStatusError
		if !isBadStatus(err, &bad) {
			return "", err
		}
	}
	r, err := charset.NewReader(strings.NewReader(string(resp.Body)), resp.ContentType)
	if err != nil {
		return string(resp.Body), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(resp.Body), nil
	}
	return string(decoded), nil
}

func isBadStatus(err error, target **BadStatusError) bool {
	if b, ok := err.(*BadStatusError); ok {
		*target = b
		return true
	}
	return false
}

// Warmup performs a GET purely for its side effects on connection pooling
// and cookie exchange. Failures are logged, never surfaced.
func (c *Client) Warmup(ctx context.Context, rawURL string) {
	if rawURL == "" {
		return
	}
	if _, err := c.FetchBytes(ctx, RequestContext{URL: rawURL, Method: http.MethodGet, Fingerprint: c.profile}); err != nil {
		c.cfg.Logger.WarnContext(ctx, "warmup failed", "url", rawURL, "error", err)
	}
}

// WarmupConditional is Warmup with conditional-GET headers, useful for
// repeated warmups of the same origin without re-transferring an unchanged
// body.
func (c *Client) WarmupConditional(ctx context.Context, rawURL, etag, lastModified string) {
	if rawURL == "" {
		return
	}
	var headers []OrderedHeader
	if etag != "" {
		headers = append(headers, OrderedHeader{Name: "If-None-Match", Value: etag})
	}
	if lastModified != "" {
		headers = append(headers, OrderedHeader{Name: "If-Modified-Since", Value: lastModified})
	}
	rc := RequestContext{URL: rawURL, Method: http.MethodGet, ExtraHeaders: headers, Fingerprint: c.profile}
	if _, err := c.FetchBytes(ctx, rc); err != nil {
		var bad *BadStatusError
		if isBadStatus(err, &bad) && bad.Status == http.StatusNotModified {
			return
		}
		c.cfg.Logger.WarnContext(ctx, "conditional warmup failed", "url", rawURL, "error", err)
	}
}

func (c *Client) supportsH3(host string) bool {
	v, ok := c.altSvc.Load(host)
	if !ok {
		return false
	}
	supports, _ := v.(bool)
	return supports
}

// CloseIdleConnections releases pooled connections on both sub-clients.
func (c *Client) CloseIdleConnections() {
	c.accelerated.CloseIdleConnections()
	c.plain.CloseIdleConnections()
	if c.h3 != nil {
		c.h3.Close()
	}
}

func parseContentLength(h http.Header) int64 {
	n, _ := strconv.ParseInt(h.Get("Content-Length"), 10, 64)
	return n
}
