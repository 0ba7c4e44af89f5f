package content

import "strings"

// PlainHandler is the ultimate fallback: it returns the body verbatim,
// decoded as UTF-8 (lossily, since arbitrary bytes may not be valid UTF-8).
type PlainHandler struct{}

func (h *PlainHandler) SupportedTypes() []string {
	return []string{"text/plain"}
}

func (h *PlainHandler) ToMarkdown(body []byte, contentType string) (ConversionResult, error) {
	return ConversionResult{
		Markdown:    strings.ToValidUTF8(string(body), "�"),
		ContentType: contentType,
	}, nil
}
