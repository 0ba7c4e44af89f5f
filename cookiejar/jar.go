package cookiejar

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Config configures cookie extraction.
type Config struct {
	Logger *slog.Logger
	// Now is an injectable clock for expiry comparisons in tests.
	Now func() time.Time
}

func (c Config) defaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Jar is a read-only, concurrency-safe collection of cookies loaded once
// from a browser's cookie store.
type Jar struct {
	cfg     Config
	source  Source
	cookies []Cookie
}

// autoDetectOrder is the order browsers are probed when the caller asks for
// automatic selection: first non-empty store wins.
var autoDetectOrder = []Source{SourceDia, SourceBrave, SourceChrome, SourceFirefox, SourceSafari, SourceEdge}

// FromBrowser loads cookies from the named browser. Passing SourceNone
// yields an always-empty Jar (the CLI's "--cookies none").
func FromBrowser(source Source, cfg Config) (*Jar, error) {
	cfg = cfg.defaults()
	if source == SourceNone {
		return &Jar{cfg: cfg, source: source}, nil
	}
	cookies, err := extractFromSource(source, cfg)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, &StoreMissingError{Source: source}
	}
	return &Jar{cfg: cfg, source: source, cookies: cookies}, nil
}

// AutoDetect tries each browser in autoDetectOrder, returning the first
// with a non-empty cookie store. If none has cookies, it returns an empty
// Jar together with the last extraction error encountered, or with a
// StoreMissingError for SourceNone when no extraction failed; callers
// should log at INFO and continue with the empty jar, per the error
// taxonomy.
func AutoDetect(cfg Config) (*Jar, error) {
	cfg = cfg.defaults()
	var lastErr error
	for _, src := range autoDetectOrder {
		cookies, err := extractFromSource(src, cfg)
		if err != nil {
			lastErr = err
			continue
		}
		if len(cookies) > 0 {
			return &Jar{cfg: cfg, source: src, cookies: cookies}, nil
		}
	}
	if lastErr == nil {
		lastErr = &StoreMissingError{Source: SourceNone}
	}
	return &Jar{cfg: cfg, source: SourceNone}, lastErr
}

func extractFromSource(source Source, cfg Config) ([]Cookie, error) {
	switch source {
	case SourceChrome, SourceBrave, SourceDia, SourceEdge:
		return extractChromiumFamily(source, cfg)
	case SourceFirefox:
		return extractFirefox(cfg)
	case SourceSafari:
		return extractSafari(cfg)
	default:
		return nil, fmt.Errorf("cookiejar: unknown source %v", source)
	}
}

// Source reports which browser this Jar was loaded from.
func (j *Jar) Source() Source { return j.source }

// Len reports how many cookies are held.
func (j *Jar) Len() int { return len(j.cookies) }

// CookiesFor returns the cookies applicable to rawURL, per the matching
// algorithm in the spec: domain match, path match, secure/scheme
// consistency, and non-expiry. The jar is immutable after construction so
// concurrent callers need no synchronization.
func (j *Jar) CookiesFor(rawURL string) ([]Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cookiejar: invalid url: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	path := u.Path
	if path == "" {
		path = "/"
	}
	now := j.cfg.Now()

	var out []Cookie
	for _, c := range j.cookies {
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if !domainMatch(c.Domain, host) {
			continue
		}
		if !pathMatch(c.Path, path) {
			continue
		}
		if c.Expires != nil && c.Expires.Before(now) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
