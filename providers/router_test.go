package providers

import (
	"context"
	"testing"
)

func TestRouterMatchesFirstRegisteredProvider(t *testing.T) {
	r := NewRouter(Config{})
	if len(r.providers) != 10 {
		t.Fatalf("got %d providers, want 10", len(r.providers))
	}
	// Twitter is registered first; a twitter status URL must not be
	// swallowed by a later provider's broader match.
	if !r.providers[0].Matches("https://x.com/jack/status/20") {
		t.Error("expected first provider (twitter) to match a status URL")
	}
}

func TestRouterTryExtractReturnsFalseWhenNoProviderMatches(t *testing.T) {
	r := NewRouter(Config{})
	_, ok := r.TryExtract(context.Background(), "https://example.com/some/page", nil)
	if ok {
		t.Error("expected no provider to match an arbitrary URL")
	}
}
