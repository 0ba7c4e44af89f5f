package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MikkoParkkola/nab/fetch"
	"github.com/MikkoParkkola/nab/resilience"
)

// providerRetries and providerRetryBackoff bound the exponential backoff
// applied to a provider's outbound API call: transient 5xx/network failures
// (GitHub/Reddit hiccups) get a couple of retries, while a 4xx response is
// never retried since the request itself, not the origin, is at fault.
const (
	providerRetries      = 2
	providerRetryBackoff = 150 * time.Millisecond
)

func withRetry(ctx context.Context, fn func(context.Context) error) error {
	return resilience.Do(ctx, providerRetries, providerRetryBackoff, nil, func(ctx context.Context) error {
		err := fn(ctx)
		var bad *fetch.BadStatusError
		if errors.As(err, &bad) && bad.Status < 500 {
			return &resilience.NonRetryableError{Cause: err}
		}
		return err
	})
}

// fetchJSON performs a GET against rawURL over the accelerated path and
// decodes the JSON body into out, retrying transient failures.
func fetchJSON(ctx context.Context, client *fetch.Client, rawURL string, headers []fetch.OrderedHeader, out any) (fetch.Response, error) {
	var resp fetch.Response
	err := withRetry(ctx, func(ctx context.Context) error {
		var fetchErr error
		resp, fetchErr = client.FetchBytes(ctx, fetch.RequestContext{
			URL:          rawURL,
			Method:       http.MethodGet,
			ExtraHeaders: headers,
		})
		return fetchErr
	})
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, fmt.Errorf("providers: decoding response from %s: %w", rawURL, err)
	}
	return resp, nil
}

// fetchJSONNegotiated is fetchJSON but over the client's plain path
// (fetch.Client.FetchNegotiated), a separately pooled connection.
func fetchJSONNegotiated(ctx context.Context, client *fetch.Client, rawURL string, headers []fetch.OrderedHeader, out any) (fetch.Response, error) {
	var resp fetch.Response
	err := withRetry(ctx, func(ctx context.Context) error {
		var fetchErr error
		resp, fetchErr = client.FetchNegotiated(ctx, fetch.RequestContext{
			URL:          rawURL,
			Method:       http.MethodGet,
			ExtraHeaders: headers,
		})
		return fetchErr
	})
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, fmt.Errorf("providers: decoding response from %s: %w", rawURL, err)
	}
	return resp, nil
}

func fetchText(ctx context.Context, client *fetch.Client, rawURL string, headers []fetch.OrderedHeader) (string, error) {
	var resp fetch.Response
	err := withRetry(ctx, func(ctx context.Context) error {
		var fetchErr error
		resp, fetchErr = client.FetchBytes(ctx, fetch.RequestContext{
			URL:          rawURL,
			Method:       http.MethodGet,
			ExtraHeaders: headers,
		})
		return fetchErr
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func header(name, value string) fetch.OrderedHeader {
	return fetch.OrderedHeader{Name: name, Value: value}
}
