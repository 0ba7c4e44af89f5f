package cookiejar

import (
	"reflect"
	"testing"
)

func TestDomainMatchHostOnly(t *testing.T) {
	if !domainMatch("areena.yle.fi", "areena.yle.fi") {
		t.Fatalf("expected exact host-only match")
	}
	if domainMatch("areena.yle.fi", "www.areena.yle.fi") {
		t.Fatalf("host-only cookie must not match a subdomain")
	}
}

func TestDomainMatchParentDomain(t *testing.T) {
	if !domainMatch(".yle.fi", "areena.yle.fi") {
		t.Fatalf("parent-domain cookie should match subdomain")
	}
	if !domainMatch(".yle.fi", "yle.fi") {
		t.Fatalf("parent-domain cookie should match bare parent")
	}
	if domainMatch(".yle.fi", "notyle.fi") {
		t.Fatalf("parent-domain cookie must not match an unrelated domain sharing a suffix")
	}
}

func TestCandidateDomainsExpandsExplicitly(t *testing.T) {
	got := candidateDomains("a.b.c.tld")
	want := []string{"a.b.c.tld", ".a.b.c.tld", ".b.c.tld", ".c.tld", ".tld"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPathMatch(t *testing.T) {
	cases := []struct {
		cookiePath, requestPath string
		want                    bool
	}{
		{"/", "/anything", true},
		{"/docs", "/docs", true},
		{"/docs", "/docs/page", true},
		{"/docs", "/docset", false},
		{"/docs/", "/docs/page", true},
	}
	for _, c := range cases {
		if got := pathMatch(c.cookiePath, c.requestPath); got != c.want {
			t.Errorf("pathMatch(%q,%q) = %v, want %v", c.cookiePath, c.requestPath, got, c.want)
		}
	}
}
