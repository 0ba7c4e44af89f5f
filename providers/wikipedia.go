package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

type wikipediaSummary struct {
	Title       string                  `json:"title"`
	Description *string                 `json:"description"`
	Extract     *string                 `json:"extract"`
	Timestamp   *string                 `json:"timestamp"`
	Thumbnail   *wikipediaThumbnail     `json:"thumbnail"`
	ContentUrls *wikipediaContentURLs   `json:"content_urls"`
}

type wikipediaThumbnail struct {
	Source string `json:"source"`
}

type wikipediaContentURLs struct {
	Desktop *wikipediaDesktopURL `json:"desktop"`
}

type wikipediaDesktopURL struct {
	Page string `json:"page"`
}

type wikipediaProvider struct{}

func newWikipediaProvider() *wikipediaProvider { return &wikipediaProvider{} }

func (p *wikipediaProvider) Name() string { return "wikipedia" }

func (p *wikipediaProvider) Matches(rawURL string) bool {
	return strings.Contains(strings.ToLower(beforeQuery(rawURL)), ".wikipedia.org/wiki/")
}

func (p *wikipediaProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	lang, title, err := parseWikipediaURL(rawURL)
	if err != nil {
		return SiteContent{}, err
	}

	apiURL := fmt.Sprintf("https://%s.wikipedia.org/api/rest_v1/page/summary/%s", lang, url.PathEscape(title))
	headers := []fetch.OrderedHeader{
		header("User-Agent", "nab/0.3.0 (https://github.com/MikkoParkkola/nab)"),
	}
	var summary wikipediaSummary
	if _, err := fetchJSON(ctx, client, apiURL, headers, &summary); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching wikipedia summary for %s: %w", title, err)
	}

	articleURL := rawURL
	if summary.ContentUrls != nil && summary.ContentUrls.Desktop != nil && summary.ContentUrls.Desktop.Page != "" {
		articleURL = summary.ContentUrls.Desktop.Page
	}

	return SiteContent{
		Markdown: formatWikipediaMarkdown(summary, articleURL),
		Metadata: Metadata{
			Title:        strPtr(summary.Title),
			Platform:     "wikipedia",
			CanonicalURL: articleURL,
			Published:    summary.Timestamp,
			MediaURLs:    thumbnailURL(summary.Thumbnail),
		},
	}, nil
}

func thumbnailURL(t *wikipediaThumbnail) []string {
	if t == nil || t.Source == "" {
		return nil
	}
	return []string{t.Source}
}

func parseWikipediaURL(rawURL string) (lang, title string, err error) {
	stripped := beforeFragment(beforeQuery(rawURL))
	u, parseErr := url.Parse(stripped)
	if parseErr != nil {
		return "", "", fmt.Errorf("providers: invalid wikipedia URL %q: %w", rawURL, parseErr)
	}
	host := strings.ToLower(u.Host)
	lang = strings.TrimSuffix(host, ".wikipedia.org")
	const marker = "/wiki/"
	i := strings.Index(u.Path, marker)
	if i < 0 || lang == host {
		return "", "", fmt.Errorf("providers: could not parse wikipedia URL %q", rawURL)
	}
	title = strings.TrimPrefix(u.Path[i:], marker)
	if title == "" {
		return "", "", fmt.Errorf("providers: no article title in wikipedia URL %q", rawURL)
	}
	return lang, title, nil
}

func formatWikipediaMarkdown(summary wikipediaSummary, articleURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", summary.Title)
	if summary.Description != nil && *summary.Description != "" {
		fmt.Fprintf(&b, "*%s*\n\n", *summary.Description)
	}
	if summary.Thumbnail != nil && summary.Thumbnail.Source != "" {
		fmt.Fprintf(&b, "![](%s)\n\n", summary.Thumbnail.Source)
	}
	if summary.Extract != nil && *summary.Extract != "" {
		b.WriteString(*summary.Extract)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[Read full article on Wikipedia](%s)\n", articleURL)
	return b.String()
}
