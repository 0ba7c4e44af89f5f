package providers

import "testing"

func TestStackOverflowMatchesQuestionURLs(t *testing.T) {
	p := newStackOverflowProvider()
	if !p.Matches("https://stackoverflow.com/questions/12345/how-do-i-x") {
		t.Error("expected match")
	}
	if p.Matches("https://stackoverflow.com/users/12345/someone") {
		t.Error("expected no match on user profile URL")
	}
}

func TestStackOverflowQuestionRegexExtractsID(t *testing.T) {
	m := stackOverflowQuestionRe.FindStringSubmatch("stackoverflow.com/questions/12345/how-do-i-x")
	if m == nil || m[1] != "12345" {
		t.Fatalf("got %v, want id 12345", m)
	}
}

func TestStripHTMLDecodesEntities(t *testing.T) {
	got := stripHTML("<p>Tom &amp; Jerry &lt;3</p>")
	want := "Tom & Jerry <3"
	if got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}
