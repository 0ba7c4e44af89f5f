package cookiejar

import (
	"testing"
	"time"
)

func TestCookiesForParentDomain(t *testing.T) {
	jar := &Jar{
		cfg: Config{Now: time.Now},
		cookies: []Cookie{
			{Name: "sess", Value: "abc", Domain: ".yle.fi", Path: "/"},
		},
	}
	got, err := jar.CookiesFor("https://areena.yle.fi/watch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Value != "abc" {
		t.Fatalf("expected parent-domain cookie to match, got %v", got)
	}
}

func TestCookiesForSecureSchemeMismatch(t *testing.T) {
	jar := &Jar{
		cfg: Config{Now: time.Now},
		cookies: []Cookie{
			{Name: "sess", Value: "abc", Domain: "example.com", Path: "/", Secure: true},
		},
	}
	got, _ := jar.CookiesFor("http://example.com/")
	if len(got) != 0 {
		t.Fatalf("secure cookie must not be sent over plain http, got %v", got)
	}
	got, _ = jar.CookiesFor("https://example.com/")
	if len(got) != 1 {
		t.Fatalf("secure cookie should be sent over https, got %v", got)
	}
}

func TestCookiesForExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	jar := &Jar{
		cfg: Config{Now: time.Now},
		cookies: []Cookie{
			{Name: "sess", Value: "abc", Domain: "example.com", Path: "/", Expires: &past},
		},
	}
	got, _ := jar.CookiesFor("https://example.com/")
	if len(got) != 0 {
		t.Fatalf("expired cookie must be excluded, got %v", got)
	}
}

func TestCookiesForUnrelatedDomainExcluded(t *testing.T) {
	jar := &Jar{
		cfg: Config{Now: time.Now},
		cookies: []Cookie{
			{Name: "sess", Value: "abc", Domain: ".yle.fi", Path: "/"},
		},
	}
	got, _ := jar.CookiesFor("https://notyle.fi/")
	if len(got) != 0 {
		t.Fatalf("cookie for .yle.fi must not leak to notyle.fi, got %v", got)
	}
}
