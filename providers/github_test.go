package providers

import "testing"

func TestGitHubMatchesIssuesAndPulls(t *testing.T) {
	p := newGitHubProvider()
	cases := map[string]bool{
		"https://github.com/golang/go/issues/123": true,
		"https://github.com/golang/go/pull/456":   true,
		"https://github.com/golang/go":            false,
		"https://gitlab.com/golang/go/issues/123": false,
	}
	for url, want := range cases {
		if got := p.Matches(url); got != want {
			t.Errorf("Matches(%q) = %v, want %v", url, got, want)
		}
	}
}

func TestParseGitHubURLExtractsOwnerRepoNumber(t *testing.T) {
	owner, repo, number, err := parseGitHubURL("https://github.com/golang/go/issues/123")
	if err != nil {
		t.Fatalf("parseGitHubURL: %v", err)
	}
	if owner != "golang" || repo != "go" || number != "123" {
		t.Errorf("got owner=%q repo=%q number=%q", owner, repo, number)
	}
}

func TestRateLimitFromResponseDetectsExhaustedLimit(t *testing.T) {
	resp := fakeResponse(403, map[string][]string{
		"X-RateLimit-Remaining": {"0"},
		"Retry-After":           {"60"},
	})
	err := rateLimitFromResponse(resp)
	if err == nil {
		t.Fatal("expected a RateLimitError")
	}
	rlErr, ok := err.(*RateLimitError)
	if !ok {
		t.Fatalf("got %T, want *RateLimitError", err)
	}
	if rlErr.Retry != 60 {
		t.Errorf("Retry = %d, want 60", rlErr.Retry)
	}
}

func TestRateLimitFromResponseIgnoresOrdinaryForbidden(t *testing.T) {
	resp := fakeResponse(403, map[string][]string{
		"X-RateLimit-Remaining": {"10"},
	})
	if err := rateLimitFromResponse(resp); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
