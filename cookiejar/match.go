package cookiejar

import "strings"

// domainMatch implements RFC 6265 §5.1.3. A host-only cookie domain (no
// leading dot) matches only an identical host. A parent-domain cookie
// (leading dot) matches the bare parent itself or any subdomain of it.
func domainMatch(cookieDomain, host string) bool {
	host = strings.ToLower(host)
	cookieDomain = strings.ToLower(cookieDomain)
	if !strings.HasPrefix(cookieDomain, ".") {
		return host == cookieDomain
	}
	parent := cookieDomain[1:]
	return host == parent || strings.HasSuffix(host, cookieDomain)
}

// pathMatch implements RFC 6265 §5.1.4.
func pathMatch(cookiePath, requestPath string) bool {
	if cookiePath == "" {
		cookiePath = "/"
	}
	if requestPath == "" {
		requestPath = "/"
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	if cookiePath == requestPath {
		return true
	}
	if strings.HasSuffix(cookiePath, "/") {
		return true
	}
	return requestPath[len(cookiePath)] == '/'
}

// candidateDomains enumerates the explicit parent-domain chain for host, as
// the spec's "critical bug class" requires: for a.b.c.tld it returns
// {a.b.c.tld, .a.b.c.tld, .b.c.tld, .c.tld, .tld}. A naive substring check
// (host.Contains(cookieDomain)) is wrong — it wrongly matches unrelated
// domains sharing a suffix — so callers must never use it; this function is
// the one place that expands the labels explicitly.
func candidateDomains(host string) []string {
	labels := strings.Split(strings.ToLower(host), ".")
	if len(labels) == 0 {
		return nil
	}
	candidates := make([]string, 0, len(labels)*2)
	candidates = append(candidates, host)
	for i := 0; i < len(labels); i++ {
		suffix := strings.Join(labels[i:], ".")
		candidates = append(candidates, "."+suffix)
	}
	return candidates
}
