// Package nab is a token-optimized HTTP fetching library: it turns a URL
// into clean, LLM-friendly markdown, using platform-specific APIs where one
// exists and falling back to an accelerated fetch plus content-type-aware
// conversion otherwise.
package nab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikkoParkkola/nab/batch"
	"github.com/MikkoParkkola/nab/content"
	"github.com/MikkoParkkola/nab/cookiejar"
	"github.com/MikkoParkkola/nab/fetch"
	"github.com/MikkoParkkola/nab/providers"
)

// Config configures a Nab instance. A zero-value Config is usable;
// defaults() fills in every unset field.
type Config struct {
	Fetch fetch.Config
	// EnablePDF turns on PDF-to-markdown conversion; off by default the way
	// donor's docpipe gates format support per pipeline instance.
	EnablePDF bool
	// CookieSource selects which browser's cookie store backs requests.
	// Zero value (SourceNone) means no cookies are attached.
	CookieSource cookiejar.Source
	CookieConfig cookiejar.Config

	BatchConcurrency   int
	BatchPerURLTimeout time.Duration

	Logger *slog.Logger
}

func (c Config) defaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = 5
	}
	return c
}

// Document is the result of fetching and converting one URL.
type Document struct {
	URL         string
	FinalURL    string
	Markdown    string
	ContentType string
	Protocol    fetch.Protocol
	ElapsedMs   float64

	// Provider is the platform short-circuit that produced this document,
	// or "" when generic fetch+convert was used.
	Provider string
	Metadata *providers.Metadata

	// Quality is populated only when the document came from the PDF
	// handler; nil otherwise.
	Quality *content.ExtractionQuality
}

// Nab wires the accelerated client, cookie jar, site-provider router, and
// content router into one Fetch/FetchBatch surface, the way docpipe.Pipeline
// wires format-specific extractors behind a single Extract method.
type Nab struct {
	cfg     Config
	client  *fetch.Client
	jar     *cookiejar.Jar
	sites   *providers.Router
	content *content.Router
}

// New builds a Nab instance. If cfg.CookieSource is SourceNone (the zero
// value), requests carry no cookies; otherwise the named browser's store is
// loaded eagerly. A StoreMissingError is logged at INFO and requests then
// carry no cookies; any other cookie-loading error fails New.
func New(cfg Config) (*Nab, error) {
	cfg = cfg.defaults()

	client, err := fetch.NewAcceleratedClient(cfg.Fetch)
	if err != nil {
		return nil, fmt.Errorf("nab: building client: %w", err)
	}

	var jar *cookiejar.Jar
	if cfg.CookieSource != cookiejar.SourceNone {
		jar, err = cookiejar.FromBrowser(cfg.CookieSource, cfg.CookieConfig)
		var missing *cookiejar.StoreMissingError
		if errors.As(err, &missing) {
			cfg.Logger.Info("nab: no cookie store found, continuing without cookies", "source", cfg.CookieSource.String())
			jar, err = cookiejar.FromBrowser(cookiejar.SourceNone, cfg.CookieConfig)
		}
		if err != nil {
			return nil, fmt.Errorf("nab: loading cookies: %w", err)
		}
	} else {
		jar, _ = cookiejar.FromBrowser(cookiejar.SourceNone, cfg.CookieConfig)
	}

	return &Nab{
		cfg:     cfg,
		client:  client,
		jar:     jar,
		sites:   providers.NewRouter(providers.Config{Logger: cfg.Logger}),
		content: content.NewRouter(content.Config{Logger: cfg.Logger, EnablePDF: cfg.EnablePDF}),
	}, nil
}

// Fetch converts one URL to markdown. It first offers the URL to the
// site-provider router; a match short-circuits the generic fetch+convert
// path entirely. On no match (or on the provider swallowing its own
// failure), it falls through to a cookie-attached accelerated fetch and
// content-type dispatch.
func (n *Nab) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if site, ok := n.sites.TryExtract(ctx, rawURL, n.client); ok {
		return &Document{
			URL:      rawURL,
			FinalURL: site.Metadata.CanonicalURL,
			Markdown: site.Markdown,
			Provider: site.Metadata.Platform,
			Metadata: &site.Metadata,
		}, nil
	}

	cookies, err := n.jar.CookiesFor(rawURL)
	if err != nil {
		n.cfg.Logger.WarnContext(ctx, "nab: cookie matching failed", "url", rawURL, "error", err)
	}

	resp, err := n.client.FetchBytes(ctx, fetch.RequestContext{
		URL:     rawURL,
		Method:  http.MethodGet,
		Cookies: cookies,
	})
	if err != nil {
		return nil, fmt.Errorf("nab: fetching %s: %w", rawURL, err)
	}

	result, err := n.content.Convert(resp.Body, resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("nab: converting %s: %w", rawURL, err)
	}

	return &Document{
		URL:         rawURL,
		FinalURL:    resp.FinalURL,
		Markdown:    result.Markdown,
		ContentType: result.ContentType,
		Protocol:    resp.Protocol,
		ElapsedMs:   resp.ElapsedMs,
		Quality:     result.Quality,
	}, nil
}

// FetchBatch fetches every URL with bounded parallelism over the shared
// client, preserving urls' order in the returned slice. It fails only on
// invalid input (an empty urls list, or a negative BatchConcurrency); a
// failure to fetch an individual URL is reported through that URL's
// batch.Item.Err instead.
func (n *Nab) FetchBatch(ctx context.Context, urls []string) ([]batch.Item[*Document], error) {
	exec := batch.NewExecutor(batch.Config{
		Concurrency:   n.cfg.BatchConcurrency,
		PerURLTimeout: n.cfg.BatchPerURLTimeout,
		Logger:        n.cfg.Logger,
	}, n.Fetch)
	return exec.Run(ctx, urls)
}

// Close releases pooled connections held by the underlying client.
func (n *Nab) Close() {
	n.client.CloseIdleConnections()
}
