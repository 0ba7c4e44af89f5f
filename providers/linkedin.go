package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

type linkedInOEmbed struct {
	Title        *string `json:"title"`
	AuthorName   *string `json:"author_name"`
	AuthorURL    *string `json:"author_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	HTML         *string `json:"html"`
}

type linkedInProvider struct{}

func newLinkedInProvider() *linkedInProvider { return &linkedInProvider{} }

func (p *linkedInProvider) Name() string { return "linkedin" }

func (p *linkedInProvider) Matches(rawURL string) bool {
	lower := strings.ToLower(beforeQuery(rawURL))
	if !strings.Contains(lower, "linkedin.com/") {
		return false
	}
	return strings.Contains(lower, "/posts/") || strings.Contains(lower, "/pulse/") || strings.Contains(lower, "/feed/update/")
}

func (p *linkedInProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	apiURL := "https://www.linkedin.com/oembed?url=" + url.QueryEscape(rawURL) + "&format=json"

	var oembed linkedInOEmbed
	if _, err := fetchJSON(ctx, client, apiURL, nil, &oembed); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching linkedin oembed: %w", err)
	}

	return SiteContent{
		Markdown: formatLinkedInMarkdown(oembed, rawURL),
		Metadata: Metadata{
			Author:       oembed.AuthorName,
			Title:        oembed.Title,
			Platform:     "linkedin",
			CanonicalURL: rawURL,
			MediaURLs:    mediaURLList(derefOr(oembed.ThumbnailURL, "")),
		},
	}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func formatLinkedInMarkdown(oembed linkedInOEmbed, rawURL string) string {
	var b strings.Builder
	if title := derefOr(oembed.Title, ""); title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if author := derefOr(oembed.AuthorName, ""); author != "" {
		fmt.Fprintf(&b, "by %s\n\n", author)
	}
	if thumb := derefOr(oembed.ThumbnailURL, ""); thumb != "" {
		fmt.Fprintf(&b, "![](%s)\n\n", thumb)
	}
	if html := derefOr(oembed.HTML, ""); html != "" {
		b.WriteString(stripHTML(html))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[View on LinkedIn](%s)\n", rawURL)
	return b.String()
}
