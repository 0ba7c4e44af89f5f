package providers

import "testing"

func TestWikipediaMatchesWikiPaths(t *testing.T) {
	p := newWikipediaProvider()
	if !p.Matches("https://en.wikipedia.org/wiki/Go_(programming_language)") {
		t.Error("expected match")
	}
	if p.Matches("https://en.wikipedia.org/w/index.php?title=Go") {
		t.Error("expected no match on non-wiki path")
	}
}

func TestParseWikipediaURLExtractsLangAndTitle(t *testing.T) {
	lang, title, err := parseWikipediaURL("https://en.wikipedia.org/wiki/Go_(programming_language)")
	if err != nil {
		t.Fatalf("parseWikipediaURL: %v", err)
	}
	if lang != "en" || title != "Go_(programming_language)" {
		t.Errorf("got lang=%q title=%q", lang, title)
	}
}

func TestParseWikipediaURLPreservesNonEnglishLanguage(t *testing.T) {
	lang, _, err := parseWikipediaURL("https://de.wikipedia.org/wiki/Go_(Programmiersprache)")
	if err != nil {
		t.Fatalf("parseWikipediaURL: %v", err)
	}
	if lang != "de" {
		t.Errorf("got lang=%q, want de", lang)
	}
}
