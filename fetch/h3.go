package fetch

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// h3RoundTripper wraps quic-go's HTTP/3 transport with the timeouts and
// TLS/QUIC configuration the accelerated client needs: TLS 1.3 only, ALPN
// restricted to h3, 0-RTT allowed, and an http.Client timeout of 2 seconds
// that bounds the whole H3 attempt (handshake, request and body), so a
// stalled attempt falls back to h2 quickly.
type h3RoundTripper struct {
	rt *http3.Transport
	hc *http.Client
}

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  5 * time.Minute,
		KeepAlivePeriod: 30 * time.Second,
		Allow0RTT:       true,
	}
}

func newH3RoundTripper(cfg Config) *h3RoundTripper {
	rt := &http3.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS13,
			NextProtos:         []string{"h3"},
			ClientSessionCache: tls.NewLRUClientSessionCache(64),
		},
		QUICConfig: quicConfig(),
	}
	return &h3RoundTripper{
		rt: rt,
		hc: &http.Client{
			Transport:     rt,
			Timeout:       2 * time.Second,
			CheckRedirect: redirectPolicy(cfg),
		},
	}
}

func (h *h3RoundTripper) client() *http.Client { return h.hc }

func (h *h3RoundTripper) Close() error { return h.rt.Close() }
