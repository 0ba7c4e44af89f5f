package nab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewBuildsWithZeroConfig(t *testing.T) {
	n, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Close()
}

func TestFetchConvertsGenericHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><h1>Hello</h1><p>World</p></body></html>"))
	}))
	defer srv.Close()

	n, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Close()

	doc, err := n.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(doc.Markdown, "Hello") || !strings.Contains(doc.Markdown, "World") {
		t.Errorf("Markdown = %q", doc.Markdown)
	}
	if doc.Provider != "" {
		t.Errorf("Provider = %q, want empty for generic fetch", doc.Provider)
	}
}

func TestFetchBatchPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok:" + r.URL.Path))
	}))
	defer srv.Close()

	n, err := New(Config{BatchConcurrency: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Close()

	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}
	results, err := n.FetchBatch(context.Background(), urls)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(results) != len(urls) {
		t.Fatalf("got %d results, want %d", len(results), len(urls))
	}
	for i, u := range urls {
		if results[i].URL != u {
			t.Errorf("results[%d].URL = %q, want %q", i, results[i].URL, u)
		}
		if results[i].Err != nil {
			t.Errorf("results[%d].Err = %v", i, results[i].Err)
		}
	}
}
