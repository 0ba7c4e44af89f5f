package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/MikkoParkkola/nab/fetch"
)

type instagramOEmbed struct {
	AuthorName   string  `json:"author_name"`
	Title        *string `json:"title"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

type ogMeta struct {
	Title       *string
	Description *string
	Image       *string
}

type instagramProvider struct{}

func newInstagramProvider() *instagramProvider { return &instagramProvider{} }

func (p *instagramProvider) Name() string { return "instagram" }

func (p *instagramProvider) Matches(rawURL string) bool {
	lower := strings.ToLower(beforeQuery(rawURL))
	if !strings.Contains(lower, "instagram.com/") {
		return false
	}
	return strings.Contains(lower, "/p/") || strings.Contains(lower, "/reel/")
}

// Extract tries the oEmbed endpoint first; Instagram's oEmbed access has
// grown increasingly restricted, so on failure it falls back to scraping
// og:* meta tags from the page itself.
func (p *instagramProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	content, err := tryInstagramOEmbed(ctx, client, rawURL)
	if err == nil {
		return content, nil
	}

	content, ogErr := tryInstagramOGMeta(ctx, client, rawURL)
	if ogErr != nil {
		return SiteContent{}, fmt.Errorf("providers: instagram oembed failed (%v) and og:meta fallback failed: %w", err, ogErr)
	}
	return content, nil
}

func tryInstagramOEmbed(ctx context.Context, client *fetch.Client, rawURL string) (SiteContent, error) {
	apiURL := "https://api.instagram.com/oembed?url=" + url.QueryEscape(rawURL)
	var oembed instagramOEmbed
	if _, err := fetchJSON(ctx, client, apiURL, nil, &oembed); err != nil {
		return SiteContent{}, err
	}

	title := ""
	if oembed.Title != nil {
		title = *oembed.Title
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## @%s\n\n", oembed.AuthorName)
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	if oembed.ThumbnailURL != "" {
		fmt.Fprintf(&b, "![](%s)\n\n", oembed.ThumbnailURL)
	}
	fmt.Fprintf(&b, "[View on Instagram](%s)\n", rawURL)

	return SiteContent{
		Markdown: b.String(),
		Metadata: Metadata{
			Author:       strPtr(oembed.AuthorName),
			Title:        strPtr(title),
			Platform:     "instagram",
			CanonicalURL: rawURL,
			MediaURLs:    mediaURLList(oembed.ThumbnailURL),
		},
	}, nil
}

func tryInstagramOGMeta(ctx context.Context, client *fetch.Client, rawURL string) (SiteContent, error) {
	body, err := fetchText(ctx, client, rawURL, nil)
	if err != nil {
		return SiteContent{}, err
	}
	meta := parseOGMeta(body)
	if meta.Title == nil && meta.Description == nil {
		return SiteContent{}, fmt.Errorf("providers: no og:meta tags found on %s", rawURL)
	}

	author := extractHandleFromTitle(derefOr(meta.Title, ""))

	var b strings.Builder
	if author != "" {
		fmt.Fprintf(&b, "## %s\n\n", author)
	}
	if meta.Title != nil {
		b.WriteString(*meta.Title)
		b.WriteString("\n\n")
	}
	if meta.Description != nil {
		b.WriteString(*meta.Description)
		b.WriteString("\n\n")
	}
	if meta.Image != nil {
		fmt.Fprintf(&b, "![](%s)\n\n", *meta.Image)
	}
	fmt.Fprintf(&b, "[View on Instagram](%s)\n", rawURL)

	return SiteContent{
		Markdown: b.String(),
		Metadata: Metadata{
			Author:       strPtr(author),
			Title:        meta.Title,
			Platform:     "instagram",
			CanonicalURL: rawURL,
			MediaURLs:    mediaURLList(derefOr(meta.Image, "")),
		},
	}, nil
}

func parseOGMeta(body string) ogMeta {
	var meta ogMeta
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return meta
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property":
					property = attr.Val
				case "content":
					content = attr.Val
				}
			}
			switch property {
			case "og:title":
				meta.Title = strPtr(content)
			case "og:description":
				meta.Description = strPtr(content)
			case "og:image":
				meta.Image = strPtr(content)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

// extractHandleFromTitle pulls an "@handle" token out of an Instagram page
// title, which conventionally embeds the poster's handle.
func extractHandleFromTitle(title string) string {
	i := strings.IndexByte(title, '@')
	if i < 0 {
		return ""
	}
	rest := title[i:]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r == ' ' || r == ')' || r == ','
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}
