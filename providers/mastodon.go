package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

// apNote mirrors the subset of the ActivityPub Note object fetched directly
// from a status's canonical URL, rather than through any single instance's
// own REST API — this lets one provider serve any Mastodon-compatible
// instance without a hardcoded list of known hosts.
type apNote struct {
	Content      string         `json:"content"`
	Published    string         `json:"published"`
	AttributedTo string         `json:"attributedTo"`
	Attachment   []apAttachment `json:"attachment"`
	Likes        *apCollection  `json:"likes"`
	Shares       *apCollection  `json:"shares"`
	Replies      *apCollection  `json:"replies"`
}

type apAttachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type apCollection struct {
	TotalItems int64 `json:"totalItems"`
}

type mastodonProvider struct{}

func newMastodonProvider() *mastodonProvider { return &mastodonProvider{} }

func (p *mastodonProvider) Name() string { return "mastodon" }

// Matches accepts any host's /users/<name>/statuses/<id> permalink, the
// canonical ActivityPub object URL every Mastodon-compatible instance
// exposes, so no per-instance allowlist is needed.
func (p *mastodonProvider) Matches(rawURL string) bool {
	lower := strings.ToLower(beforeQuery(rawURL))
	return strings.Contains(lower, "/users/") && strings.Contains(lower, "/statuses/")
}

func (p *mastodonProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	headers := []fetch.OrderedHeader{header("Accept", "application/activity+json")}
	var note apNote
	if _, err := fetchJSON(ctx, client, beforeFragment(rawURL), headers, &note); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching mastodon status object: %w", err)
	}

	username := usernameFromActor(note.AttributedTo)

	return SiteContent{
		Markdown: formatMastodonMarkdown(note, username, rawURL),
		Metadata: Metadata{
			Author:       strPtr(username),
			Platform:     "mastodon",
			CanonicalURL: rawURL,
			Published:    strPtr(note.Published),
			MediaURLs:    attachmentURLs(note.Attachment),
			Engagement:   mastodonEngagement(note),
		},
	}, nil
}

func usernameFromActor(actorURL string) string {
	u, err := url.Parse(actorURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "users" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func attachmentURLs(attachments []apAttachment) []string {
	urls := make([]string, 0, len(attachments))
	for _, a := range attachments {
		if a.URL != "" {
			urls = append(urls, a.URL)
		}
	}
	return urls
}

func mastodonEngagement(note apNote) *Engagement {
	eng := &Engagement{}
	if note.Likes != nil {
		eng.Likes = int64Ptr(note.Likes.TotalItems)
	}
	if note.Shares != nil {
		eng.Reposts = int64Ptr(note.Shares.TotalItems)
	}
	if note.Replies != nil {
		eng.Replies = int64Ptr(note.Replies.TotalItems)
	}
	return eng
}

func formatMastodonMarkdown(note apNote, username, rawURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## @%s\n\n", username)
	b.WriteString(stripHTML(note.Content))
	b.WriteString("\n\n")

	for _, a := range note.Attachment {
		fmt.Fprintf(&b, "![%s](%s)\n\n", a.Name, a.URL)
	}

	if eng := formatMastodonEngagement(note); eng != "" {
		b.WriteString(eng)
		b.WriteString("\n\n")
	}
	if note.Published != "" {
		fmt.Fprintf(&b, "*%s*\n\n", note.Published)
	}
	fmt.Fprintf(&b, "[View on Mastodon](%s)\n", rawURL)
	return b.String()
}

func formatMastodonEngagement(note apNote) string {
	var parts []string
	if note.Likes != nil {
		parts = append(parts, formatNumber(note.Likes.TotalItems)+" favourites")
	}
	if note.Shares != nil {
		parts = append(parts, formatNumber(note.Shares.TotalItems)+" boosts")
	}
	if note.Replies != nil {
		parts = append(parts, formatNumber(note.Replies.TotalItems)+" replies")
	}
	return strings.Join(parts, " · ")
}
