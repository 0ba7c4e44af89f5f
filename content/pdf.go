package content

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxPDFSize rejects accidentally huge or hostile PDFs before they reach
// pdfcpu's parser.
const maxPDFSize = 50 << 20

// lineToleranceRatio and spaceThresholdRatio mirror the two adaptive
// heuristics of the line-reconstruction pass: a character whose Y is within
// lineToleranceRatio of the line's first glyph height from the previous
// character's Y shares that line, and a
// horizontal gap wider than spaceThresholdRatio of the line's average
// glyph width becomes a space.
const (
	lineToleranceRatio = 0.4
	spaceThresholdRatio = 0.3
)

// PdfConfig configures a PdfHandler.
type PdfConfig struct {
	Logger *slog.Logger
}

func (c PdfConfig) defaults() PdfConfig {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// PdfHandler converts PDF responses to markdown: extract positioned
// characters from every page's content stream, reconstruct visual lines,
// detect table regions by column alignment, then render markdown with
// heading heuristics driven by font size.
type PdfHandler struct {
	cfg PdfConfig
}

func NewPdfHandler(cfg PdfConfig) *PdfHandler {
	return &PdfHandler{cfg: cfg.defaults()}
}

func (h *PdfHandler) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (h *PdfHandler) ToMarkdown(body []byte, contentType string) (ConversionResult, error) {
	start := time.Now()

	if len(body) > maxPDFSize {
		return ConversionResult{}, &ConversionError{
			ContentType: contentType,
			Cause:       fmt.Errorf("PDF too large (%.1f MB, max %.0f MB)", float64(len(body))/(1<<20), float64(maxPDFSize)/(1<<20)),
		}
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(body), conf)
	if err != nil {
		if isPasswordErr(err) {
			return ConversionResult{}, &PdfLockedError{ByteLength: len(body)}
		}
		return ConversionResult{}, &ConversionError{ContentType: contentType, Cause: err}
	}

	hasImages := detectImageStreams(ctx)

	var allChars []PdfChar
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageChars := extractPageChars(ctx, pageNr-1)
		allChars = append(allChars, pageChars...)
	}

	fullText := charsToPlainText(allChars)
	if strings.TrimSpace(fullText) == "" && ctx.PageCount > 0 {
		pageCount := ctx.PageCount
		return ConversionResult{
			Markdown:    "[Scanned PDF - no text layer detected]",
			PageCount:   &pageCount,
			ContentType: contentType,
			ElapsedMs:   elapsedMs(start),
		}, nil
	}

	lines := reconstructLines(allChars)
	tables := detectTables(lines)
	markdown := renderMarkdown(lines, tables)

	quality := &ExtractionQuality{
		PageCount:       ctx.PageCount,
		CharsPerPage:    charsPerPage(len(allChars), ctx.PageCount),
		PrintableRatio:  computePrintableRatio(fullText),
		WordlikeRatio:   computeWordlikeRatio(fullText),
		HasImageStreams: hasImages,
	}

	pageCount := ctx.PageCount
	return ConversionResult{
		Markdown:    markdown,
		PageCount:   &pageCount,
		ContentType: contentType,
		ElapsedMs:   elapsedMs(start),
		Quality:     quality,
	}, nil
}

func isPasswordErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

func charsPerPage(charCount, pageCount int) float64 {
	if pageCount == 0 {
		return 0
	}
	return float64(charCount) / float64(pageCount)
}

func charsToPlainText(chars []PdfChar) string {
	var b bytes.Buffer
	for _, c := range chars {
		b.WriteRune(c.Ch)
	}
	return b.String()
}

// detectImageStreams reports whether any page carries an Image XObject.
// The result is recorded as ExtractionQuality.HasImageStreams for PDFs that
// yield text; the scanned-PDF result does not depend on it.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if objNrs := pdfcpu.ImageObjNrs(ctx, pageNr); len(objNrs) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

var (
	pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)
	tmRe        = regexp.MustCompile(`^[\d.\-]+\s+[\d.\-]+\s+[\d.\-]+\s+[\d.\-]+\s+([\d.\-]+)\s+([\d.\-]+)\s+Tm$`)
	tdRe        = regexp.MustCompile(`^([\d.\-]+)\s+([\d.\-]+)\s+(?:Td|TD)$`)
	tfRe        = regexp.MustCompile(`/\S+\s+([\d.\-]+)\s+Tf$`)
)

// extractPageChars parses one page's content stream into positioned
// characters. It interprets just enough of the PDF text-showing operator
// set (Tm, Td, TD, T*, Tf, Tj, TJ, ') to recover a line-level layout;
// per-glyph width is approximated from the font size rather than read
// from font metrics, since no font program is parsed.
func extractPageChars(ctx *model.Context, page int) []PdfChar {
	r, err := pdfcpu.ExtractPageContent(ctx, page+1)
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}

	var chars []PdfChar
	fontSize := 12.0
	lineX, lineY := 0.0, 792.0
	curX := lineX

	lines := bytes.Split(data, []byte{'\n'})
	for _, raw := range lines {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		text := string(line)

		if m := tmRe.FindStringSubmatch(text); m != nil {
			lineX = parseFloatOr(m[1], lineX)
			lineY = parseFloatOr(m[2], lineY)
			curX = lineX
			continue
		}
		if m := tdRe.FindStringSubmatch(text); m != nil {
			lineX += parseFloatOr(m[1], 0)
			lineY += parseFloatOr(m[2], 0)
			curX = lineX
			continue
		}
		if m := tfRe.FindStringSubmatch(text); m != nil {
			fontSize = parseFloatOr(m[1], fontSize)
			continue
		}
		if text == "T*" {
			lineY -= fontSize * 1.15
			curX = lineX
			continue
		}

		isShow := bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ"))
		isNextLineShow := bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("("))
		if !isShow && !isNextLineShow {
			continue
		}
		if isNextLineShow {
			lineY -= fontSize * 1.15
			curX = lineX
		}

		matches := pdfStringRe.FindAllSubmatch(line, -1)
		for _, m := range matches {
			decoded := decodePDFString(m[1])
			for _, ch := range decoded {
				width := fontSize * 0.5
				chars = append(chars, PdfChar{
					Ch:     ch,
					X:      curX,
					Y:      lineY,
					Width:  width,
					Height: fontSize,
					Page:   page,
				})
				curX += width
			}
		}
	}

	return chars
}

func parseFloatOr(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

// decodePDFString resolves the backslash escapes PDF string literals use:
// \n \r \t \\ \( \) and octal escapes like \040.
func decodePDFString(raw []byte) string {
	var sb bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
						i++
						val = val*8 + int(raw[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// reconstructLines sorts characters by page, then Y descending, then X
// ascending, and adds a character to the current TextLine while it is on
// the same page and its Y differs from the previous character's Y by less
// than lineToleranceRatio times the height of the line's first character.
func reconstructLines(chars []PdfChar) []TextLine {
	if len(chars) == 0 {
		return nil
	}
	sorted := make([]PdfChar, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []TextLine
	current := []PdfChar{sorted[0]}
	tolerance := sorted[0].Height * lineToleranceRatio

	for _, ch := range sorted[1:] {
		last := current[len(current)-1]
		diff := ch.Y - last.Y
		if diff < 0 {
			diff = -diff
		}
		if ch.Page == last.Page && diff < tolerance {
			current = append(current, ch)
		} else {
			lines = append(lines, buildLine(current))
			current = []PdfChar{ch}
			tolerance = ch.Height * lineToleranceRatio
		}
	}
	if len(current) > 0 {
		lines = append(lines, buildLine(current))
	}
	return lines
}

// buildLine assembles one TextLine from characters already grouped onto
// it, inserting a space wherever the horizontal gap between consecutive
// glyphs exceeds spaceThresholdRatio of the line's average glyph width.
func buildLine(chars []PdfChar) TextLine {
	var totalWidth float64
	for _, c := range chars {
		totalWidth += c.Width
	}
	avgWidth := totalWidth / float64(len(chars))
	spaceThreshold := avgWidth * spaceThresholdRatio
	if spaceThreshold < 1.0 {
		spaceThreshold = 1.0
	}

	var text bytes.Buffer
	for i, ch := range chars {
		if i > 0 {
			prev := chars[i-1]
			gap := ch.X - (prev.X + prev.Width)
			if gap > spaceThreshold {
				text.WriteByte(' ')
			}
		}
		text.WriteRune(ch.Ch)
	}

	return TextLine{
		Text:  text.String(),
		X:     chars[0].X,
		Y:     chars[0].Y,
		Chars: chars,
		Page:  chars[0].Page,
	}
}

// renderMarkdown walks reconstructed lines in order, substituting a
// rendered markdown table the first time a line inside a detected table's
// bounding box is encountered, and otherwise applying heading heuristics
// based on average glyph height.
func renderMarkdown(lines []TextLine, tables []Table) string {
	var out bytes.Buffer
	rendered := make([]bool, len(tables))

	for _, line := range lines {
		tableIdx := -1
		for i, t := range tables {
			if line.Page == t.Page &&
				line.Y >= t.YMin && line.Y <= t.YMax &&
				line.X >= t.XMin-5.0 && line.X <= t.XMax+5.0 {
				tableIdx = i
				break
			}
		}
		if tableIdx >= 0 {
			if !rendered[tableIdx] {
				out.WriteByte('\n')
				out.WriteString(tables[tableIdx].ToMarkdown())
				out.WriteByte('\n')
				rendered[tableIdx] = true
			}
			continue
		}

		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}

		var totalHeight float64
		for _, c := range line.Chars {
			totalHeight += c.Height
		}
		avgHeight := totalHeight / float64(len(line.Chars))

		switch {
		case avgHeight > 16.0 && len(trimmed) < 100:
			fmt.Fprintf(&out, "## %s\n\n", trimmed)
		case avgHeight > 13.0 && len(trimmed) < 120:
			fmt.Fprintf(&out, "### %s\n\n", trimmed)
		default:
			out.WriteString(trimmed)
			out.WriteByte('\n')
		}
	}

	return out.String()
}
