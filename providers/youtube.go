package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

type youtubeOEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type youtubeProvider struct{}

func newYouTubeProvider() *youtubeProvider { return &youtubeProvider{} }

func (p *youtubeProvider) Name() string { return "youtube" }

func (p *youtubeProvider) Matches(rawURL string) bool {
	lower := strings.ToLower(beforeQuery(rawURL))
	return strings.Contains(lower, "youtube.com/watch") || strings.Contains(lower, "youtu.be/")
}

func (p *youtubeProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	apiURL := "https://www.youtube.com/oembed?url=" + url.QueryEscape(rawURL) + "&format=json"

	var oembed youtubeOEmbed
	if _, err := fetchJSON(ctx, client, apiURL, nil, &oembed); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching youtube oembed: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", oembed.Title)
	fmt.Fprintf(&b, "by %s\n\n", oembed.AuthorName)
	if oembed.ThumbnailURL != "" {
		fmt.Fprintf(&b, "![](%s)\n\n", oembed.ThumbnailURL)
	}
	fmt.Fprintf(&b, "[Watch on YouTube](%s)\n", rawURL)

	return SiteContent{
		Markdown: b.String(),
		Metadata: Metadata{
			Author:       strPtr(oembed.AuthorName),
			Title:        strPtr(oembed.Title),
			Platform:     "youtube",
			CanonicalURL: rawURL,
			MediaURLs:    mediaURLList(oembed.ThumbnailURL),
		},
	}, nil
}

func mediaURLList(urls ...string) []string {
	var out []string
	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}
