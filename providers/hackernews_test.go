package providers

import "testing"

func TestHackerNewsMatchesItemURLs(t *testing.T) {
	p := newHackerNewsProvider()
	if !p.Matches("https://news.ycombinator.com/item?id=123") {
		t.Error("expected match on item URL")
	}
	if p.Matches("https://news.ycombinator.com/") {
		t.Error("expected no match on front page")
	}
}

func TestParseHNIDExtractsQueryParam(t *testing.T) {
	id, err := parseHNID("https://news.ycombinator.com/item?id=38123456#comment")
	if err != nil {
		t.Fatalf("parseHNID: %v", err)
	}
	if id != "38123456" {
		t.Errorf("got %q, want 38123456", id)
	}
}

func TestParseHNIDRejectsMissingID(t *testing.T) {
	if _, err := parseHNID("https://news.ycombinator.com/item"); err == nil {
		t.Error("expected error for missing id")
	}
}
