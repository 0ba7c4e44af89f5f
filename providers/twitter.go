package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

// fxTwitterResponse mirrors the fxtwitter.com bridge API, which re-serves
// X/Twitter status data as plain JSON without requiring API credentials.
type fxTwitterResponse struct {
	Tweet fxTweet `json:"tweet"`
}

type fxTweet struct {
	URL       string        `json:"url"`
	Text      string        `json:"text"`
	Author    fxAuthor      `json:"author"`
	Likes     *int64        `json:"likes"`
	Retweets  *int64        `json:"retweets"`
	Replies   *int64        `json:"replies"`
	Views     *int64        `json:"views"`
	CreatedAt string        `json:"created_at"`
	Article   *fxArticle    `json:"article"`
	Media     *fxMedia      `json:"media"`
}

type fxAuthor struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

type fxArticle struct {
	Content *fxArticleContent `json:"content"`
}

type fxArticleContent struct {
	Blocks []fxBlock `json:"blocks"`
}

type fxBlock struct {
	Text string `json:"text"`
}

type fxMedia struct {
	All []fxMediaItem `json:"all"`
}

type fxMediaItem struct {
	URL string `json:"url"`
}

type twitterProvider struct{}

func newTwitterProvider() *twitterProvider { return &twitterProvider{} }

func (p *twitterProvider) Name() string { return "twitter" }

// Matches accepts x.com and twitter.com status permalinks, e.g.
// https://x.com/user/status/12345.
func (p *twitterProvider) Matches(rawURL string) bool {
	stripped := beforeQuery(rawURL)
	lower := strings.ToLower(stripped)
	hasHost := strings.Contains(lower, "x.com/") || strings.Contains(lower, "twitter.com/")
	return hasHost && strings.Contains(lower, "/status/")
}

func (p *twitterProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	user, id, err := parseTwitterURL(rawURL)
	if err != nil {
		return SiteContent{}, err
	}

	apiURL := fmt.Sprintf("https://api.fxtwitter.com/%s/status/%s", user, id)
	var resp fxTwitterResponse
	if _, err := fetchJSON(ctx, client, apiURL, nil, &resp); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching tweet %s/%s: %w", user, id, err)
	}

	return SiteContent{
		Markdown: formatTweetMarkdown(resp.Tweet),
		Metadata: Metadata{
			Author:       strPtr(resp.Tweet.Author.Name),
			Platform:     "twitter",
			CanonicalURL: resp.Tweet.URL,
			MediaURLs:    tweetMediaURLs(resp.Tweet),
			Published:    strPtr(resp.Tweet.CreatedAt),
			Engagement: &Engagement{
				Likes:   resp.Tweet.Likes,
				Reposts: resp.Tweet.Retweets,
				Replies: resp.Tweet.Replies,
				Views:   resp.Tweet.Views,
			},
		},
	}, nil
}

func parseTwitterURL(rawURL string) (user, id string, err error) {
	stripped := beforeFragment(beforeQuery(rawURL))
	u, parseErr := url.Parse(stripped)
	if parseErr != nil {
		return "", "", fmt.Errorf("providers: invalid twitter URL %q: %w", rawURL, parseErr)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, part := range parts {
		if part == "status" {
			idx = i
			break
		}
	}
	if idx <= 0 || idx+1 >= len(parts) {
		return "", "", fmt.Errorf("providers: could not parse twitter status URL %q", rawURL)
	}
	return parts[idx-1], parts[idx+1], nil
}

// formatTweetMarkdown prefers the long-form article body when present, since
// that carries the full text of Twitter Articles rather than the truncated
// tweet.text summary.
func formatTweetMarkdown(tweet fxTweet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (@%s)\n\n", tweet.Author.Name, tweet.Author.ScreenName)

	if body := articleText(tweet.Article); body != "" {
		b.WriteString(body)
	} else {
		b.WriteString(tweet.Text)
	}
	b.WriteString("\n\n")

	if eng := formatTweetEngagement(tweet); eng != "" {
		b.WriteString(eng)
		b.WriteString("\n\n")
	}
	if tweet.CreatedAt != "" {
		fmt.Fprintf(&b, "*%s*\n\n", tweet.CreatedAt)
	}
	fmt.Fprintf(&b, "[View on X](%s)\n", tweet.URL)
	return b.String()
}

func articleText(article *fxArticle) string {
	if article == nil || article.Content == nil {
		return ""
	}
	var parts []string
	for _, block := range article.Content.Blocks {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func formatTweetEngagement(tweet fxTweet) string {
	var parts []string
	if tweet.Likes != nil {
		parts = append(parts, formatNumber(*tweet.Likes)+" likes")
	}
	if tweet.Retweets != nil {
		parts = append(parts, formatNumber(*tweet.Retweets)+" reposts")
	}
	if tweet.Replies != nil {
		parts = append(parts, formatNumber(*tweet.Replies)+" replies")
	}
	if tweet.Views != nil {
		parts = append(parts, formatNumber(*tweet.Views)+" views")
	}
	return strings.Join(parts, " · ")
}

func tweetMediaURLs(tweet fxTweet) []string {
	if tweet.Media == nil {
		return nil
	}
	urls := make([]string, 0, len(tweet.Media.All))
	for _, m := range tweet.Media.All {
		if m.URL != "" {
			urls = append(urls, m.URL)
		}
	}
	return urls
}
