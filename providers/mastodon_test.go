package providers

import "testing"

func TestMastodonMatchesAnyInstanceStatusURL(t *testing.T) {
	p := newMastodonProvider()
	cases := []string{
		"https://mastodon.social/users/gargron/statuses/12345",
		"https://fosstodon.org/users/someone/statuses/999999",
		"https://self-hosted.example/users/anyone/statuses/1",
	}
	for _, url := range cases {
		if !p.Matches(url) {
			t.Errorf("expected match for %q", url)
		}
	}
}

func TestMastodonRejectsNonStatusURL(t *testing.T) {
	p := newMastodonProvider()
	if p.Matches("https://mastodon.social/@gargron") {
		t.Error("expected no match for profile URL without /statuses/")
	}
}

func TestUsernameFromActorExtractsHandle(t *testing.T) {
	got := usernameFromActor("https://mastodon.social/users/gargron")
	if got != "gargron" {
		t.Errorf("got %q, want gargron", got)
	}
}
