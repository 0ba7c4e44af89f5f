package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

type githubIssue struct {
	HTMLURL      string        `json:"html_url"`
	Title        string        `json:"title"`
	State        string        `json:"state"`
	User         githubUser    `json:"user"`
	Body         *string       `json:"body"`
	Comments     int64         `json:"comments"`
	CommentsURL  string        `json:"comments_url"`
	CreatedAt    string        `json:"created_at"`
	Labels       []githubLabel `json:"labels"`
}

type githubUser struct {
	Login string `json:"login"`
}

type githubLabel struct {
	Name string `json:"name"`
}

type githubComment struct {
	User githubUser `json:"user"`
	Body string     `json:"body"`
}

type githubProvider struct{}

func newGitHubProvider() *githubProvider { return &githubProvider{} }

func (p *githubProvider) Name() string { return "github" }

func (p *githubProvider) Matches(rawURL string) bool {
	lower := strings.ToLower(beforeQuery(rawURL))
	if !strings.Contains(lower, "github.com/") {
		return false
	}
	return strings.Contains(lower, "/issues/") || strings.Contains(lower, "/pull/")
}

var githubHeaders = []fetch.OrderedHeader{
	header("User-Agent", "nab/0.3.0"),
	header("Accept", "application/vnd.github+json"),
}

// Extract fetches an issue or pull request via the issues API, which the
// GitHub API also serves pull requests through, then a separate call for up
// to ten comments. GitHub's rate-limit headers are honored: a 403/429 with
// X-RateLimit-Remaining: 0 is surfaced as a RateLimitError rather than a
// generic bad-status error, so callers can distinguish "rate limited" from
// "not found".
func (p *githubProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	owner, repo, number, err := parseGitHubURL(rawURL)
	if err != nil {
		return SiteContent{}, err
	}

	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s/issues/%s", owner, repo, number)
	var issue githubIssue
	resp, err := fetchJSON(ctx, client, apiURL, githubHeaders, &issue)
	if err != nil {
		if rlErr := rateLimitFromResponse(resp); rlErr != nil {
			return SiteContent{}, rlErr
		}
		return SiteContent{}, fmt.Errorf("providers: fetching github issue %s/%s#%s: %w", owner, repo, number, err)
	}

	var comments []githubComment
	if issue.CommentsURL != "" && issue.Comments > 0 {
		if _, err := fetchJSON(ctx, client, issue.CommentsURL, githubHeaders, &comments); err != nil {
			comments = nil
		}
	}
	limit := len(comments)
	if limit > 10 {
		limit = 10
	}
	comments = comments[:limit]

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.Name)
	}

	return SiteContent{
		Markdown: formatGitHubMarkdown(issue, comments, labels),
		Metadata: Metadata{
			Author:       strPtr(issue.User.Login),
			Title:        strPtr(issue.Title),
			Platform:     "github",
			CanonicalURL: issue.HTMLURL,
			Published:    strPtr(issue.CreatedAt),
			Engagement: &Engagement{
				Replies: int64Ptr(issue.Comments),
			},
		},
	}, nil
}

func rateLimitFromResponse(resp fetch.Response) error {
	if resp.Status != 403 && resp.Status != 429 {
		return nil
	}
	remaining := headerValue(resp.Headers, "X-RateLimit-Remaining")
	if remaining != "0" {
		return nil
	}
	retry, _ := strconv.Atoi(headerValue(resp.Headers, "Retry-After"))
	return &RateLimitError{Platform: "github", Retry: retry}
}

func headerValue(headers map[string][]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func parseGitHubURL(rawURL string) (owner, repo, number string, err error) {
	stripped := beforeFragment(beforeQuery(rawURL))
	u, parseErr := url.Parse(stripped)
	if parseErr != nil {
		return "", "", "", fmt.Errorf("providers: invalid github URL %q: %w", rawURL, parseErr)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	idx := -1
	for i, part := range parts {
		if part == "issues" || part == "pull" {
			idx = i
			break
		}
	}
	if idx < 2 || idx+1 >= len(parts) {
		return "", "", "", fmt.Errorf("providers: could not parse github URL %q", rawURL)
	}
	return parts[idx-2], parts[idx-1], parts[idx+1], nil
}

func formatGitHubMarkdown(issue githubIssue, comments []githubComment, labels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s [%s]\n\n", issue.Title, strings.ToUpper(issue.State))

	line := fmt.Sprintf("by @%s · %d comments", issue.User.Login, issue.Comments)
	if len(labels) > 0 {
		line += " · Labels: " + strings.Join(labels, ", ")
	}
	b.WriteString(line)
	b.WriteString("\n\n")

	if issue.Body != nil && *issue.Body != "" {
		b.WriteString(*issue.Body)
		b.WriteString("\n\n")
	}

	if len(comments) > 0 {
		b.WriteString("### Comments\n\n")
		for _, c := range comments {
			fmt.Fprintf(&b, "**@%s**:\n\n%s\n\n---\n\n", c.User.Login, c.Body)
		}
	}
	return b.String()
}
