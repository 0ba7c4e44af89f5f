package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MikkoParkkola/nab/fetch"
)

func TestFetchJSONRetriesOnServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := fetch.NewAcceleratedClient(fetch.Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	var out struct {
		OK bool `json:"ok"`
	}
	if _, err := fetchJSON(context.Background(), client, srv.URL, nil, &out); err != nil {
		t.Fatalf("fetchJSON: %v", err)
	}
	if !out.OK {
		t.Error("out.OK = false, want true")
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("server hit %d times, want 3 (2 failures + 1 success)", got)
	}
}

func TestFetchJSONDoesNotRetryOnClientError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := fetch.NewAcceleratedClient(fetch.Config{})
	if err != nil {
		t.Fatalf("NewAcceleratedClient: %v", err)
	}
	defer client.CloseIdleConnections()

	var out struct{}
	_, err = fetchJSON(context.Background(), client, srv.URL, nil, &out)
	if err == nil {
		t.Fatal("expected an error for a 404 response, got nil")
	}
	var bad *fetch.BadStatusError
	if !errors.As(err, &bad) {
		t.Fatalf("got %T, want *fetch.BadStatusError", err)
	}
	if bad.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", bad.Status, http.StatusNotFound)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("server hit %d times, want 1 (no retry on 4xx)", got)
	}
}
