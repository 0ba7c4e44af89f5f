package content

import (
	"strings"
	"testing"
)

func TestRouterDispatchesHTML(t *testing.T) {
	r := NewRouter(Config{})
	result, err := r.Convert([]byte("<html><body><h1>Hi</h1></body></html>"), "text/html")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(result.Markdown, "Hi") {
		t.Errorf("expected markdown to contain heading text, got %q", result.Markdown)
	}
}

func TestRouterFallsBackOnUnknownType(t *testing.T) {
	r := NewRouter(Config{})
	result, err := r.Convert([]byte("just some bytes"), "application/octet-stream")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Markdown != "just some bytes" {
		t.Errorf("expected plain passthrough, got %q", result.Markdown)
	}
}

func TestRouterSniffsHTMLWithoutContentType(t *testing.T) {
	r := NewRouter(Config{})
	result, err := r.Convert([]byte("<!DOCTYPE html><html><body><p>Sniffed</p></body></html>"), "application/octet-stream")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(result.Markdown, "Sniffed") {
		t.Errorf("expected HTML byte-sniff fallback to convert to markdown, got %q", result.Markdown)
	}
}

func TestRouterSkipsPDFWhenDisabled(t *testing.T) {
	r := NewRouter(Config{EnablePDF: false})
	result, err := r.Convert([]byte("%PDF-1.4 fake"), "application/pdf")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Markdown != "%PDF-1.4 fake" {
		t.Errorf("expected plain passthrough when PDF handler disabled, got %q", result.Markdown)
	}
}

func TestBareMIME(t *testing.T) {
	cases := map[string]string{
		"text/html; charset=utf-8": "text/html",
		"APPLICATION/JSON":         "application/json",
		"  text/plain  ":           "text/plain",
	}
	for in, want := range cases {
		if got := bareMIME(in); got != want {
			t.Errorf("bareMIME(%q) = %q, want %q", in, got, want)
		}
	}
}
