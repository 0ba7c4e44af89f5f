package providers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/MikkoParkkola/nab/fetch"
)

type seResponse struct {
	Items []seQuestion `json:"items"`
}

type seQuestion struct {
	Title        string   `json:"title"`
	Body         *string  `json:"body"`
	Score        int64    `json:"score"`
	AnswerCount  int64    `json:"answer_count"`
	ViewCount    int64    `json:"view_count"`
	Link         string   `json:"link"`
	CreationDate int64    `json:"creation_date"`
	Tags         []string `json:"tags"`
	Owner        seOwner  `json:"owner"`
}

type seAnswerResponse struct {
	Items []seAnswer `json:"items"`
}

type seAnswer struct {
	Body       *string `json:"body"`
	Score      int64   `json:"score"`
	IsAccepted bool    `json:"is_accepted"`
	Owner      seOwner `json:"owner"`
}

type seOwner struct {
	DisplayName string `json:"display_name"`
}

var stackOverflowQuestionRe = regexp.MustCompile(`stackoverflow\.com/questions/(\d+)`)

type stackOverflowProvider struct{}

func newStackOverflowProvider() *stackOverflowProvider { return &stackOverflowProvider{} }

func (p *stackOverflowProvider) Name() string { return "stackoverflow" }

func (p *stackOverflowProvider) Matches(rawURL string) bool {
	return stackOverflowQuestionRe.MatchString(strings.ToLower(beforeQuery(rawURL)))
}

var stackOverflowHeaders = []fetch.OrderedHeader{header("User-Agent", "nab/0.3.0")}

func (p *stackOverflowProvider) Extract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, error) {
	matches := stackOverflowQuestionRe.FindStringSubmatch(strings.ToLower(beforeQuery(rawURL)))
	if matches == nil {
		return SiteContent{}, fmt.Errorf("providers: could not parse stack overflow URL %q", rawURL)
	}
	id := matches[1]

	questionURL := fmt.Sprintf("https://api.stackexchange.com/2.3/questions/%s?site=stackoverflow&filter=withbody&order=desc&sort=votes", id)
	var qResp seResponse
	if _, err := fetchJSON(ctx, client, questionURL, stackOverflowHeaders, &qResp); err != nil {
		return SiteContent{}, fmt.Errorf("providers: fetching stack overflow question %s: %w", id, err)
	}
	if len(qResp.Items) == 0 {
		return SiteContent{}, fmt.Errorf("providers: no stack overflow question found for %s", id)
	}
	question := qResp.Items[0]

	answersURL := fmt.Sprintf("https://api.stackexchange.com/2.3/questions/%s/answers?site=stackoverflow&filter=withbody&order=desc&sort=votes&pagesize=3", id)
	var aResp seAnswerResponse
	if _, err := fetchJSON(ctx, client, answersURL, stackOverflowHeaders, &aResp); err != nil {
		aResp.Items = nil
	}

	return SiteContent{
		Markdown: formatStackOverflowMarkdown(question, aResp.Items),
		Metadata: Metadata{
			Author:       strPtr(question.Owner.DisplayName),
			Title:        strPtr(htmlDecode(question.Title)),
			Platform:     "stackoverflow",
			CanonicalURL: question.Link,
			Engagement: &Engagement{
				Likes:   int64Ptr(question.Score),
				Replies: int64Ptr(question.AnswerCount),
				Views:   int64Ptr(question.ViewCount),
			},
		},
	}, nil
}

func formatStackOverflowMarkdown(question seQuestion, answers []seAnswer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", htmlDecode(question.Title))
	fmt.Fprintf(&b, "Asked by %s · %d votes · %d answers · %d views\n\n",
		question.Owner.DisplayName, question.Score, question.AnswerCount, question.ViewCount)
	if len(question.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(question.Tags, ", "))
	}

	b.WriteString("### Question\n\n")
	if question.Body != nil {
		b.WriteString(stripHTML(*question.Body))
		b.WriteString("\n\n")
	}

	if len(answers) > 0 {
		b.WriteString("### Top Answers\n\n")
		for _, a := range answers {
			accepted := ""
			if a.IsAccepted {
				accepted = " [ACCEPTED]"
			}
			fmt.Fprintf(&b, "**%s** (%d votes)%s\n\n", a.Owner.DisplayName, a.Score, accepted)
			if a.Body != nil {
				b.WriteString(stripHTML(*a.Body))
				b.WriteString("\n\n")
			}
		}
	}

	fmt.Fprintf(&b, "[View on Stack Overflow](%s)\n", question.Link)
	return b.String()
}
