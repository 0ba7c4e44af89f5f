package providers

import "testing"

func TestLinkedInMatchesPostsPulseAndFeedUpdate(t *testing.T) {
	p := newLinkedInProvider()
	cases := map[string]bool{
		"https://www.linkedin.com/posts/someone_activity-123":       true,
		"https://www.linkedin.com/pulse/some-article-someone":       true,
		"https://www.linkedin.com/feed/update/urn:li:activity:123":  true,
		"https://www.linkedin.com/in/someone":                       false,
	}
	for url, want := range cases {
		if got := p.Matches(url); got != want {
			t.Errorf("Matches(%q) = %v, want %v", url, got, want)
		}
	}
}
