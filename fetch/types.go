package fetch

import (
	"github.com/MikkoParkkola/nab/cookiejar"
	"github.com/MikkoParkkola/nab/fingerprint"
)

// Protocol identifies which HTTP version actually carried a request.
type Protocol string

const (
	ProtoH1 Protocol = "H1"
	ProtoH2 Protocol = "H2"
	ProtoH3 Protocol = "H3"
)

// OrderedHeader is a single header entry. RequestContext uses a slice
// rather than a map so duplicate keys keep insertion order, per the
// ExtraHeaders invariant.
type OrderedHeader struct {
	Name  string
	Value string
}

// RequestContext describes one outbound request.
type RequestContext struct {
	URL          string
	Method       string
	Cookies      []cookiejar.Cookie
	ExtraHeaders []OrderedHeader
	Body         []byte
	WarmupURL    string
	Fingerprint  fingerprint.Profile
}

// Response is the artifact returned by FetchBytes.
type Response struct {
	Status      int
	ContentType string
	Headers     map[string][]string
	Body        []byte
	ElapsedMs   float64
	Protocol    Protocol
	FinalURL    string

	// RequestID correlates this response with its request-scoped log lines.
	RequestID string
}
