// Package content maps response bytes and a Content-Type to a
// ConversionResult: markdown plus format-specific metadata. It dispatches
// to format handlers (HTML, PDF, plain passthrough) the same way the
// donor codebase's docpipe package dispatches by file extension.
package content

// ConversionResult is what a Handler produces.
type ConversionResult struct {
	Markdown    string
	PageCount   *int
	ContentType string
	ElapsedMs   float64

	// Quality is populated by PdfHandler only; nil for other handlers.
	Quality *ExtractionQuality
}

// PdfChar is one glyph positioned in PDF point space (1/72 inch),
// bottom-up origin: (X,Y) is the character's lower-left baseline.
type PdfChar struct {
	Ch     rune
	X      float64
	Y      float64
	Width  float64
	Height float64
	Page   int
}

// TextLine is a run of characters reconstructed onto one visual line. All
// characters in a TextLine belong to exactly one page.
type TextLine struct {
	Text  string
	X     float64
	Y     float64
	Chars []PdfChar
	Page  int
}

// Table is a detected grid region rendered as a GitHub-flavored markdown
// table.
type Table struct {
	Page             int
	XMin, XMax       float64
	YMin, YMax       float64
	Rows             [][]string
}

// ExtractionQuality supplements the PdfHandler's binary scanned/not-scanned
// signal with a scored assessment of whether the extracted text is likely
// complete, useful for callers deciding whether to fall back to OCR.
type ExtractionQuality struct {
	PageCount       int
	CharsPerPage    float64
	PrintableRatio  float64
	WordlikeRatio   float64
	HasImageStreams bool
}

// NeedsOCR is a coarse heuristic: very little extractable text alongside
// image content strongly suggests a scanned document.
func (q ExtractionQuality) NeedsOCR() bool {
	return q.CharsPerPage < 20 && q.HasImageStreams
}
