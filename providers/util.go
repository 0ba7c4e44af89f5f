package providers

import (
	"strconv"
	"strings"
)

// beforeQuery drops a trailing "?..." (and, where noted, "#...") suffix
// the way every provider's matcher and URL parser does before inspecting
// path segments.
func beforeQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

func beforeFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// formatNumber renders large counters with K/M suffixes.
func formatNumber(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000.0, 'f', 1, 64) + "M"
	case abs >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000.0, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// stripHTML removes tags and decodes the handful of entities providers'
// API bodies commonly carry.
func stripHTML(html string) string {
	var b strings.Builder
	b.Grow(len(html))
	inTag := false
	for _, ch := range html {
		switch {
		case ch == '<':
			inTag = true
		case ch == '>':
			inTag = false
		case !inTag:
			b.WriteRune(ch)
		}
	}
	return htmlDecode(b.String())
}

var htmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func htmlDecode(s string) string {
	return htmlEntityReplacer.Replace(s)
}
