package content

import (
	"bytes"
	"log/slog"
	"strings"
	"time"
)

// Handler converts one MIME family's bytes into markdown.
type Handler interface {
	SupportedTypes() []string
	ToMarkdown(body []byte, contentType string) (ConversionResult, error)
}

// Config configures a Router.
type Config struct {
	Logger *slog.Logger
	// EnablePDF disables the PDF handler when false, matching the donor's
	// own feature-gated PDF support.
	EnablePDF bool
}

func (c Config) defaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Router dispatches response bytes to the first Handler whose
// SupportedTypes contains the bare MIME type.
type Router struct {
	cfg      Config
	handlers []Handler
	plain    *PlainHandler
}

// NewRouter builds a Router with the HTML and (unless disabled) PDF
// handlers registered, ending with the plain-passthrough fallback.
func NewRouter(cfg Config) *Router {
	cfg = cfg.defaults()
	plain := &PlainHandler{}
	r := &Router{cfg: cfg, plain: plain}
	r.handlers = append(r.handlers, NewHtmlHandler(HtmlConfig{Logger: cfg.Logger}))
	if cfg.EnablePDF {
		r.handlers = append(r.handlers, NewPdfHandler(PdfConfig{Logger: cfg.Logger}))
	}
	r.handlers = append(r.handlers, plain)
	return r
}

// bareMIME strips a ";charset=..." (or any other parameter) suffix and
// lowercases the result.
func bareMIME(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	prefixes := [][]byte{[]byte("<!"), []byte("<html"), []byte("<HTML")}
	for _, p := range prefixes {
		if bytes.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// Convert maps body+contentType to a ConversionResult. When no handler
// declares support for the bare MIME type, an HTML byte-sniff is tried
// before ultimately falling back to the plain handler.
func (r *Router) Convert(body []byte, contentType string) (ConversionResult, error) {
	start := time.Now()
	mime := bareMIME(contentType)

	for _, h := range r.handlers {
		for _, supported := range h.SupportedTypes() {
			if supported == mime {
				result, err := h.ToMarkdown(body, contentType)
				if err != nil {
					r.cfg.Logger.Warn("content: handler failed, downgrading to plain", "content_type", contentType, "error", err)
					return r.plain.ToMarkdown(body, contentType)
				}
				result.ElapsedMs = elapsedMs(start)
				return result, nil
			}
		}
	}

	if looksLikeHTML(body) {
		for _, h := range r.handlers {
			if hh, ok := h.(*HtmlHandler); ok {
				result, err := hh.ToMarkdown(body, contentType)
				if err != nil {
					return r.plain.ToMarkdown(body, contentType)
				}
				result.ElapsedMs = elapsedMs(start)
				return result, nil
			}
		}
	}

	result, err := r.plain.ToMarkdown(body, contentType)
	result.ElapsedMs = elapsedMs(start)
	return result, err
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
