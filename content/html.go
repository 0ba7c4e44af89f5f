package content

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"
)

// HtmlConfig configures an HtmlHandler.
type HtmlConfig struct {
	Logger *slog.Logger
}

func (c HtmlConfig) defaults() HtmlConfig {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// HtmlHandler converts HTML to markdown: it strips script/style/noscript
// and comments, resolves the document's charset, converts the remaining
// structure to markdown, and filters boilerplate lines (cookie banners,
// nav artifacts, punctuation-heavy separators) from the result.
type HtmlHandler struct {
	cfg    HtmlConfig
	policy *bluemonday.Policy
	conv   *converter.Converter
}

func NewHtmlHandler(cfg HtmlConfig) *HtmlHandler {
	cfg = cfg.defaults()
	// UGCPolicy allows the structural elements markdown conversion needs
	// (headings, lists, tables, links, images, blockquotes, code) while
	// never allowing script/style/noscript or comments through.
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &HtmlHandler{cfg: cfg, policy: policy, conv: conv}
}

func (h *HtmlHandler) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (h *HtmlHandler) ToMarkdown(body []byte, contentType string) (ConversionResult, error) {
	decoded := decodeHTMLCharset(body, contentType)
	sanitized := h.policy.SanitizeBytes([]byte(decoded))

	rendered, err := h.conv.ConvertString(string(sanitized), converter.WithDomain(""))
	if err != nil {
		return ConversionResult{}, &ConversionError{ContentType: contentType, Cause: err}
	}

	filtered := filterBoilerplate(rendered)
	return ConversionResult{
		Markdown:    filtered,
		ContentType: "text/html",
	}, nil
}

// decodeHTMLCharset resolves the document's character encoding through
// charset.NewReader, which follows the WHATWG sniffing order: a byte-order
// mark, then the Content-Type header's charset parameter, then a <meta>
// declaration in the first 1024 bytes, then UTF-8 when those bytes are
// valid UTF-8, otherwise windows-1252. A <meta> charset does not override a
// charset given in the header, and undeclared non-UTF-8 bytes are decoded
// as windows-1252 rather than as UTF-8 with replacement characters.
func decodeHTMLCharset(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := readAllString(r)
	if err != nil {
		return string(body)
	}
	return decoded
}

func readAllString(r interface{ Read([]byte) (int, error) }) (string, error) {
	var buf bytes.Buffer
	tmp := make([]byte, 32*1024)
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil {
			if err.Error() == "EOF" {
				return buf.String(), nil
			}
			return buf.String(), err
		}
	}
}

// boilerplatePhrases are matched case-insensitively against a normalized
// (lowercased, trimmed) line.
var boilerplatePhrases = []string{
	"accept cookies",
	"we use cookies",
	"skip to content",
	"jump to navigation",
}

// filterBoilerplate drops lines the spec classifies as boilerplate: cookie
// banners, nav artifacts, and short punctuation-heavy separator lines.
func filterBoilerplate(markdown string) string {
	lines := strings.Split(markdown, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isBoilerplateLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isBoilerplateLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if len(trimmed) > 0 && len(trimmed) < 80 {
		punct := 0
		total := 0
		for _, r := range trimmed {
			total++
			if isPunctRune(r) {
				punct++
			}
		}
		if total > 0 && float64(punct)/float64(total) >= 0.5 {
			return true
		}
	}
	return false
}

func isPunctRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
		return false
	default:
		return true
	}
}
