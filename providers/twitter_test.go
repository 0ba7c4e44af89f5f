package providers

import "testing"

func TestTwitterMatchesStatusURLs(t *testing.T) {
	p := newTwitterProvider()
	cases := map[string]bool{
		"https://x.com/jack/status/20":            true,
		"https://twitter.com/jack/status/20":      true,
		"https://x.com/jack/status/20?s=20":       true,
		"https://x.com/jack":                      false,
		"https://example.com/status/20":           false,
	}
	for url, want := range cases {
		if got := p.Matches(url); got != want {
			t.Errorf("Matches(%q) = %v, want %v", url, got, want)
		}
	}
}

func TestParseTwitterURLExtractsUserAndID(t *testing.T) {
	user, id, err := parseTwitterURL("https://x.com/jack/status/20?s=20")
	if err != nil {
		t.Fatalf("parseTwitterURL: %v", err)
	}
	if user != "jack" || id != "20" {
		t.Errorf("got user=%q id=%q, want user=jack id=20", user, id)
	}
}

func TestParseTwitterURLRejectsNonStatus(t *testing.T) {
	if _, _, err := parseTwitterURL("https://x.com/jack"); err == nil {
		t.Error("expected error for non-status URL")
	}
}

func TestFormatNumberUsesKAndMSuffix(t *testing.T) {
	cases := map[int64]string{
		500:      "500",
		1500:     "1.5K",
		2500000:  "2.5M",
		-1500:    "-1.5K",
	}
	for n, want := range cases {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
