package content

import (
	"strings"
	"testing"
)

func TestFilterBoilerplateDropsCookieBanner(t *testing.T) {
	input := "We use cookies to improve your experience.\nReal article content here.\n"
	got := filterBoilerplate(input)
	if got == input {
		t.Fatalf("expected boilerplate line to be dropped")
	}
	if !strings.Contains(got, "Real article content here.") {
		t.Errorf("expected real content preserved, got %q", got)
	}
}

func TestIsBoilerplateLinePunctuationHeavy(t *testing.T) {
	if !isBoilerplateLine("*** --- *** --- ***") {
		t.Error("expected punctuation-heavy line to be classified as boilerplate")
	}
	if isBoilerplateLine("This is a normal sentence with punctuation, like commas.") {
		t.Error("did not expect normal prose to be classified as boilerplate")
	}
}

func TestIsBoilerplateLineEmptyIsNotBoilerplate(t *testing.T) {
	if isBoilerplateLine("   ") {
		t.Error("blank lines should not be treated as boilerplate")
	}
}

func TestHtmlHandlerConvertsBasicDocument(t *testing.T) {
	h := NewHtmlHandler(HtmlConfig{})
	body := []byte(`<html><head><style>.x{color:red}</style></head><body>
<script>alert(1)</script>
<h1>Title</h1>
<p>Hello world.</p>
</body></html>`)

	result, err := h.ToMarkdown(body, "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if !strings.Contains(result.Markdown, "Title") || !strings.Contains(result.Markdown, "Hello world") {
		t.Errorf("expected converted markdown to retain visible text, got %q", result.Markdown)
	}
	if strings.Contains(result.Markdown, "alert(1)") {
		t.Errorf("expected script contents to be stripped, got %q", result.Markdown)
	}
}
