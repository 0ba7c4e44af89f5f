// Package batch runs many independent fetches against one shared client
// with bounded parallelism, preserving input order in the result slice.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Config configures an Executor. A zero-value Config is usable; defaults()
// fills in every unset field.
type Config struct {
	Concurrency   int
	PerURLTimeout time.Duration
	Logger        *slog.Logger
}

func (c Config) defaults() Config {
	if c.Concurrency == 0 {
		c.Concurrency = 5
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Item is one URL's outcome. Err is set, and Value left at its zero value,
// when the fetch for URL failed.
type Item[T any] struct {
	URL       string
	Value     T
	Err       error
	ElapsedMs float64
}

// FetchFunc performs one fetch. Executor is agnostic to what T is; the
// caller supplies the function that does the actual work.
type FetchFunc[T any] func(ctx context.Context, url string) (T, error)

// Executor bounds how many FetchFunc calls run concurrently, the way
// horos47's job worker bounds concurrent job handlers with a channel
// semaphore, refined here to a context-aware weighted semaphore so a
// cancelled Run stops handing out new slots immediately.
type Executor[T any] struct {
	cfg Config
	fn  FetchFunc[T]
}

// NewExecutor builds an Executor that calls fn for each URL passed to Run.
func NewExecutor[T any](cfg Config, fn FetchFunc[T]) *Executor[T] {
	return &Executor[T]{cfg: cfg.defaults(), fn: fn}
}

// Run fetches every URL, at most cfg.Concurrency at a time, and returns one
// Item per URL in the same order urls was given. A per-URL timeout, if
// configured, bounds each individual fetch without affecting the others.
// If ctx is cancelled while URLs are still waiting for a semaphore slot,
// those URLs' Items carry ctx.Err() rather than blocking forever.
//
// Run itself fails only on invalid input — an empty urls list or a negative
// Concurrency — before any fetch is attempted; individual fetch failures are
// reported per-item via Item.Err, never as Run's error.
func (e *Executor[T]) Run(ctx context.Context, urls []string) ([]Item[T], error) {
	if len(urls) == 0 {
		return nil, &InvalidBatchError{Reason: "urls is empty"}
	}
	if e.cfg.Concurrency < 0 {
		return nil, &InvalidBatchError{Reason: fmt.Sprintf("concurrency %d is negative", e.cfg.Concurrency)}
	}

	batchID := uuid.NewString()
	e.cfg.Logger.DebugContext(ctx, "batch: run started", "batch_id", batchID, "urls", len(urls), "concurrency", e.cfg.Concurrency)

	results := make([]Item[T], len(urls))
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency))
	var wg sync.WaitGroup

	for i, u := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Item[T]{URL: u, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = e.runOne(ctx, batchID, u)
		}(i, u)
	}
	wg.Wait()
	return results, nil
}

func (e *Executor[T]) runOne(ctx context.Context, batchID, url string) Item[T] {
	itemCtx := ctx
	if e.cfg.PerURLTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, e.cfg.PerURLTimeout)
		defer cancel()
	}

	start := time.Now()
	value, err := e.fn(itemCtx, url)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		e.cfg.Logger.WarnContext(ctx, "batch: fetch failed", "batch_id", batchID, "url", url, "error", err)
		return Item[T]{URL: url, Err: err, ElapsedMs: elapsed}
	}
	return Item[T]{URL: url, Value: value, ElapsedMs: elapsed}
}
