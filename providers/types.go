// Package providers implements the platform-specific short-circuit
// extractors: URL pattern matchers paired with API calls that produce
// structured markdown directly, bypassing generic HTML fetch+convert for
// sites that expose cleaner data through an API.
package providers

import (
	"context"

	"github.com/MikkoParkkola/nab/fetch"
)

// Engagement holds social-media-style counters. Fields are nil when the
// underlying API omits them.
type Engagement struct {
	Likes   *int64
	Reposts *int64
	Replies *int64
	Views   *int64
}

// Metadata describes extracted content independent of its rendered markdown.
type Metadata struct {
	Author       *string
	Title        *string
	Published    *string
	Platform     string
	CanonicalURL string
	MediaURLs    []string
	Engagement   *Engagement
}

// SiteContent is what a Provider produces on a successful match.
type SiteContent struct {
	Markdown string
	Metadata Metadata
}

// Provider extracts structured content from one platform's URLs via that
// platform's API rather than by parsing its HTML.
type Provider interface {
	Name() string
	Matches(rawURL string) bool
	Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int64Ptr(n int64) *int64 {
	return &n
}
