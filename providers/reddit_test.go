package providers

import "testing"

func TestRedditMatchesCommentThreads(t *testing.T) {
	p := newRedditProvider()
	cases := map[string]bool{
		"https://www.reddit.com/r/golang/comments/abc123/title/": true,
		"https://old.reddit.com/r/golang/comments/abc123/title/": true,
		"https://www.reddit.com/r/golang/":                       false,
		"https://www.reddit.com/user/someone":                    false,
	}
	for url, want := range cases {
		if got := p.Matches(url); got != want {
			t.Errorf("Matches(%q) = %v, want %v", url, got, want)
		}
	}
}

func TestRedditJSONURLAppendsSuffix(t *testing.T) {
	got := redditJSONURL("https://www.reddit.com/r/golang/comments/abc123/title/")
	want := "https://www.reddit.com/r/golang/comments/abc123/title.json"
	if got != want {
		t.Errorf("redditJSONURL = %q, want %q", got, want)
	}
}

func TestRedditJSONURLIdempotent(t *testing.T) {
	got := redditJSONURL("https://www.reddit.com/r/golang/comments/abc123/title.json")
	want := "https://www.reddit.com/r/golang/comments/abc123/title.json"
	if got != want {
		t.Errorf("redditJSONURL = %q, want %q", got, want)
	}
}

func TestFormatScoreHandlesNegative(t *testing.T) {
	if got := formatScore(-5); got != "-5" {
		t.Errorf("formatScore(-5) = %q, want -5", got)
	}
	if got := formatScore(1500); got != "1.5K" {
		t.Errorf("formatScore(1500) = %q, want 1.5K", got)
	}
}
