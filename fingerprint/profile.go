// Package fingerprint builds browser-realistic HTTP header sets used by the
// accelerated client so outbound requests resemble ordinary browser traffic
// rather than a bare Go HTTP client.
package fingerprint

import (
	"math/rand"
	"net/http"
)

// Kind identifies which browser family a Profile impersonates.
type Kind int

const (
	Chrome Kind = iota
	Firefox
	Safari
)

// Platform is the impersonated operating system.
type Platform int

const (
	Windows Platform = iota
	MacOS
	Linux
)

// Profile is the immutable set of headers a Client attaches to every
// outbound request. It is chosen once at client construction time.
type Profile struct {
	UserAgent       string
	SecChUa         string
	SecChUaMobile   string
	SecChUaPlatform string
	Accept          string
	AcceptLanguage  string
	AcceptEncoding  string

	// SecFetchDest/Mode/Site/User are sent by Chromium-family browsers only;
	// Firefox omits them, so a Firefox Profile leaves these empty.
	SecFetchDest string
	SecFetchMode string
	SecFetchSite string
	SecFetchUser string
}

var chromeVersions = []string{"120.0.0.0", "121.0.0.0", "122.0.0.0", "123.0.0.0", "124.0.0.0"}
var firefoxVersions = []string{"121.0", "122.0", "123.0", "124.0"}
var safariVersions = []string{"16.6", "17.0", "17.1", "17.2"}

// platformWeights approximates real-world desktop browser share: Windows
// dominant, macOS second, Linux a long tail.
type platformWeight struct {
	p Platform
	w int
}

var platformWeights = []platformWeight{
	{Windows, 65},
	{MacOS, 20},
	{Linux, 15},
}

func randomPlatform() Platform {
	total := 0
	for _, pw := range platformWeights {
		total += pw.w
	}
	n := rand.Intn(total)
	for _, pw := range platformWeights {
		if n < pw.w {
			return pw.p
		}
		n -= pw.w
	}
	return Windows
}

func (p Platform) osString() string {
	switch p {
	case MacOS:
		return "Macintosh; Intel Mac OS X 10_15_7"
	case Linux:
		return "X11; Linux x86_64"
	default:
		return "Windows NT 10.0; Win64; x64"
	}
}

func (p Platform) secChPlatform() string {
	switch p {
	case MacOS:
		return `"macOS"`
	case Linux:
		return `"Linux"`
	default:
		return `"Windows"`
	}
}

func pick(versions []string) string {
	return versions[rand.Intn(len(versions))]
}

// Random selects a Profile for kind, choosing a realistic version and
// platform at random. Firefox and Safari profiles omit the Sec-CH-UA and
// Sec-Fetch-* families they do not send in practice.
func Random(kind Kind) Profile {
	platform := randomPlatform()
	switch kind {
	case Firefox:
		return firefoxProfile(platform)
	case Safari:
		return safariProfile()
	default:
		return chromeProfile(platform)
	}
}

func chromeProfile(platform Platform) Profile {
	ver := pick(chromeVersions)
	major := ver[:3]
	ua := "Mozilla/5.0 (" + platform.osString() + ") AppleWebKit/537.36 (KHTML, like Gecko) Chrome/" + ver + " Safari/537.36"
	secChUa := `"Not_A Brand";v="8", "Chromium";v="` + major + `", "Google Chrome";v="` + major + `"`
	mobile := "?0"
	return Profile{
		UserAgent:       ua,
		SecChUa:         secChUa,
		SecChUaMobile:   mobile,
		SecChUaPlatform: platform.secChPlatform(),
		Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		AcceptLanguage:  "en-US,en;q=0.9",
		AcceptEncoding:  "gzip, deflate, br, zstd",
		SecFetchDest:    "document",
		SecFetchMode:    "navigate",
		SecFetchSite:    "none",
		SecFetchUser:    "?1",
	}
}

func firefoxProfile(platform Platform) Profile {
	ver := pick(firefoxVersions)
	ua := "Mozilla/5.0 (" + platform.osString() + "; rv:" + ver + ") Gecko/20100101 Firefox/" + ver
	return Profile{
		UserAgent:      ua,
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.5",
		AcceptEncoding: "gzip, deflate, br",
	}
}

func safariProfile() Profile {
	ver := pick(safariVersions)
	ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/" + ver + " Safari/605.1.15"
	return Profile{
		UserAgent:      ua,
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		AcceptEncoding: "gzip, deflate, br",
	}
}

// Headers renders the profile as an http.Header (a map, so it carries no
// header order). Empty fields (e.g. Sec-CH-UA on Firefox) are omitted.
func (p Profile) Headers() http.Header {
	h := make(http.Header, 10)
	set := func(k, v string) {
		if v != "" {
			h.Set(k, v)
		}
	}
	set("User-Agent", p.UserAgent)
	set("Accept", p.Accept)
	set("Accept-Language", p.AcceptLanguage)
	set("Accept-Encoding", p.AcceptEncoding)
	set("Sec-CH-UA", p.SecChUa)
	set("Sec-CH-UA-Mobile", p.SecChUaMobile)
	set("Sec-CH-UA-Platform", p.SecChUaPlatform)
	set("Sec-Fetch-Dest", p.SecFetchDest)
	set("Sec-Fetch-Mode", p.SecFetchMode)
	set("Sec-Fetch-Site", p.SecFetchSite)
	set("Sec-Fetch-User", p.SecFetchUser)
	return h
}
