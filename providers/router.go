package providers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MikkoParkkola/nab/fetch"
	"github.com/MikkoParkkola/nab/resilience"
)

// Config configures a Router.
type Config struct {
	Logger *slog.Logger
}

func (c Config) defaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Router dispatches URLs to the first matching Provider, in registration
// order. Registration order follows the donor site router: Twitter, Reddit,
// HackerNews, GitHub, Instagram, YouTube, Wikipedia, StackOverflow,
// Mastodon, LinkedIn.
type Router struct {
	cfg       Config
	providers []Provider

	mu       sync.Mutex
	breakers map[string]*resilience.CircuitBreaker
}

// NewRouter builds a Router with all ten site providers registered.
func NewRouter(cfg Config) *Router {
	cfg = cfg.defaults()
	return &Router{
		cfg: cfg,
		providers: []Provider{
			newTwitterProvider(),
			newRedditProvider(),
			newHackerNewsProvider(),
			newGitHubProvider(),
			newInstagramProvider(),
			newYouTubeProvider(),
			newWikipediaProvider(),
			newStackOverflowProvider(),
			newMastodonProvider(),
			newLinkedInProvider(),
		},
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
}

func (r *Router) breakerFor(name string) *resilience.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.breakers[name]
	if !ok {
		cb = resilience.NewCircuitBreaker(name, resilience.WithBreakerLogger(r.cfg.Logger))
		r.breakers[name] = cb
	}
	return cb
}

// TryExtract returns the matching provider's content, or (zero, false) if
// no provider matches or the matching provider's extraction failed.
// Failures are logged at WARN and never propagated: callers fall back to
// generic fetch.
func (r *Router) TryExtract(ctx context.Context, rawURL string, client *fetch.Client) (SiteContent, bool) {
	for _, p := range r.providers {
		if !p.Matches(rawURL) {
			continue
		}
		r.cfg.Logger.Debug("providers: matched", "provider", p.Name(), "url", rawURL)

		var content SiteContent
		err := r.breakerFor(p.Name()).GuardContext(ctx, func(ctx context.Context) error {
			var extractErr error
			content, extractErr = p.Extract(ctx, rawURL, client)
			return extractErr
		})
		if err != nil {
			r.cfg.Logger.Warn("providers: extraction failed", "provider", p.Name(), "url", rawURL, "error", err)
			return SiteContent{}, false
		}
		return content, true
	}
	return SiteContent{}, false
}
