package fingerprint

import "testing"

func TestRandomChromeHasSecChUa(t *testing.T) {
	p := chromeProfile(Windows)
	if p.SecChUa == "" || p.SecChUaPlatform == "" {
		t.Fatalf("chrome profile missing Sec-CH-UA headers: %+v", p)
	}
	h := p.Headers()
	if h.Get("Sec-CH-UA") == "" {
		t.Fatalf("expected Sec-CH-UA header to be set")
	}
	if h.Get("User-Agent") == "" {
		t.Fatalf("expected User-Agent header to be set")
	}
}

func TestFirefoxProfileOmitsSecChUa(t *testing.T) {
	p := firefoxProfile(Linux)
	if p.SecChUa != "" || p.SecFetchDest != "" {
		t.Fatalf("firefox profile should not carry Sec-CH-UA/Sec-Fetch headers: %+v", p)
	}
	h := p.Headers()
	if h.Get("Sec-CH-UA") != "" {
		t.Fatalf("expected no Sec-CH-UA header for firefox")
	}
}

func TestSafariProfile(t *testing.T) {
	p := safariProfile()
	if p.UserAgent == "" || p.SecChUa != "" {
		t.Fatalf("unexpected safari profile: %+v", p)
	}
}

func TestRandomDistributesPlatforms(t *testing.T) {
	seen := map[Platform]bool{}
	for i := 0; i < 200; i++ {
		seen[randomPlatform()] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected multiple platforms across 200 draws, got %v", seen)
	}
}
