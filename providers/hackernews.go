package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

// hnItem mirrors the Algolia HN API's item shape, which nests the full
// comment tree inline rather than requiring per-comment fetches.
type hnItem struct {
	ID        int64        `json:"id"`
	Title     *string      `json:"title"`
	Author    *string      `json:"author"`
	URL       *string      `json:"url"`
	Text      *string      `json:"text"`
	CreatedAt *string      `json:"created_at"`
	Points    *int64       `json:"points"`
	Children  []hnComment  `json:"children"`
}

type hnComment struct {
	Author *string `json:"author"`
	Text   *string `json:"text"`
}

type hackerNewsProvider struct{}

func newHackerNewsProvider() *hackerNewsProvider { return &hackerNewsProvider{} }

func (p *hackerNewsProvider) Name() string { return "hackernews" }

func (p *hackerNewsProvider) Matches(rawURL string) bool {
	return strings.Contains(strings.ToLower(beforeQuery(rawURL)), "news.ycombinator.com/item")
}

func (p *hackerNewsProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	id, err := parseHNID(rawURL)
	if err != nil {
		return SiteContent{}, err
	}

	apiURL := fmt.Sprintf("https://hn.algolia.com/api/v1/items/%s", id)
	var item hnItem
	if _, err := fetchJSON(ctx, client, apiURL, nil, &item); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching hn item %s: %w", id, err)
	}

	var title, author string
	if item.Title != nil {
		title = *item.Title
	}
	if item.Author != nil {
		author = *item.Author
	}

	return SiteContent{
		Markdown: formatHNMarkdown(item),
		Metadata: Metadata{
			Author:       strPtr(author),
			Title:        strPtr(title),
			Platform:     "hackernews",
			CanonicalURL: rawURL,
			Published:    item.CreatedAt,
			Engagement: &Engagement{
				Likes:   item.Points,
				Replies: int64Ptr(int64(len(item.Children))),
			},
		},
	}, nil
}

func parseHNID(rawURL string) (string, error) {
	stripped := beforeFragment(rawURL)
	u, err := url.Parse(stripped)
	if err != nil {
		return "", fmt.Errorf("providers: invalid hacker news URL %q: %w", rawURL, err)
	}
	id := u.Query().Get("id")
	if id == "" {
		return "", fmt.Errorf("providers: no item id in hacker news URL %q", rawURL)
	}
	return id, nil
}

func formatHNMarkdown(item hnItem) string {
	var b strings.Builder
	title := ""
	if item.Title != nil {
		title = *item.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	author := ""
	if item.Author != nil {
		author = *item.Author
	}
	points := int64(0)
	if item.Points != nil {
		points = *item.Points
	}
	fmt.Fprintf(&b, "by %s · %s points · %d comments\n\n", author, formatNumber(points), len(item.Children))

	if item.URL != nil && *item.URL != "" {
		fmt.Fprintf(&b, "🔗 %s\n\n", *item.URL)
	}
	if item.Text != nil && *item.Text != "" {
		b.WriteString(stripHTML(*item.Text))
		b.WriteString("\n\n")
	}

	if len(item.Children) > 0 {
		b.WriteString("### Top Comments\n\n")
		limit := len(item.Children)
		if limit > 10 {
			limit = 10
		}
		for _, c := range item.Children[:limit] {
			if c.Text == nil || *c.Text == "" {
				continue
			}
			commentAuthor := ""
			if c.Author != nil {
				commentAuthor = *c.Author
			}
			fmt.Fprintf(&b, "**%s**:\n\n%s\n\n---\n\n", commentAuthor, stripHTML(*c.Text))
		}
	}
	return b.String()
}
