package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

// redditListing mirrors Reddit's /r/.../comments/....json response shape: a
// two-element array, the first listing holding the post, the second holding
// its comment tree.
type redditListing struct {
	Data redditListingData `json:"data"`
}

type redditListingData struct {
	Children []redditChild `json:"children"`
}

type redditChild struct {
	Data redditPost `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Score       int64   `json:"score"`
	NumComments int64   `json:"num_comments"`
	CreatedUtc  float64 `json:"created_utc"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	IsSelf      bool    `json:"is_self"`
	Body        string  `json:"body"`
}

type redditProvider struct{}

func newRedditProvider() *redditProvider { return &redditProvider{} }

func (p *redditProvider) Name() string { return "reddit" }

func (p *redditProvider) Matches(rawURL string) bool {
	lower := strings.ToLower(beforeQuery(rawURL))
	hasSub := strings.Contains(lower, "reddit.com/r/") || strings.Contains(lower, "old.reddit.com/r/")
	return hasSub && strings.Contains(lower, "/comments/")
}

// Extract uses the client's plain path (FetchNegotiated) rather than the
// accelerated one: a separately pooled connection that offers h2 and
// http/1.1 over ALPN and never attempts HTTP/3.
func (p *redditProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	apiURL := redditJSONURL(rawURL)

	var listings []redditListing
	headers := []fetch.OrderedHeader{
		header("User-Agent", "nab/0.3.0 (by /u/nab-cli)"),
		header("Accept", "application/json"),
	}
	if _, err := fetchJSONNegotiated(ctx, client, apiURL, headers, &listings); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching reddit thread: %w", err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return SiteContent{}, fmt.Errorf("providers: reddit response had no post data")
	}

	post := listings[0].Data.Children[0].Data
	var comments []redditPost
	if len(listings) > 1 {
		for _, child := range listings[1].Data.Children {
			comments = append(comments, child.Data)
		}
	}

	return SiteContent{
		Markdown: formatRedditMarkdown(post, comments),
		Metadata: Metadata{
			Author:       strPtr(post.Author),
			Title:        strPtr(post.Title),
			Platform:     "reddit",
			CanonicalURL: rawURL,
			Engagement: &Engagement{
				Likes:   int64Ptr(post.Score),
				Replies: int64Ptr(post.NumComments),
			},
		},
	}, nil
}

func redditJSONURL(rawURL string) string {
	trimmed := beforeFragment(beforeQuery(rawURL))
	trimmed = strings.TrimRight(trimmed, "/")
	if strings.HasSuffix(trimmed, ".json") {
		return trimmed
	}
	return trimmed + ".json"
}

func formatRedditMarkdown(post redditPost, comments []redditPost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", post.Title)
	fmt.Fprintf(&b, "by u/%s · %s points · %d comments\n\n", post.Author, formatScore(post.Score), post.NumComments)

	if post.Selftext != "" {
		b.WriteString(post.Selftext)
		b.WriteString("\n\n")
	}
	if !post.IsSelf && post.URL != "" {
		fmt.Fprintf(&b, "🔗 %s\n\n", post.URL)
	}

	if len(comments) > 0 {
		b.WriteString("### Top Comments\n\n")
		limit := len(comments)
		if limit > 10 {
			limit = 10
		}
		for _, c := range comments[:limit] {
			if c.Body == "" {
				continue
			}
			fmt.Fprintf(&b, "**%s**:\n\n%s\n\n---\n\n", c.Author, c.Body)
		}
	}
	return b.String()
}

func formatScore(score int64) string {
	if score < 0 {
		return "-" + formatNumber(-score)
	}
	return formatNumber(score)
}
