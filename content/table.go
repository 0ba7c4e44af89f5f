package content

import (
	"fmt"
	"sort"
	"strings"
)

// minTableRows is the fewest consecutive aligned lines that count as a table.
const minTableRows = 3

// boundaryTolerance is how close (in PDF points) two lines' column
// boundaries must be to count as aligned.
const boundaryTolerance = 5.0

// ToMarkdown renders a Table as a GitHub-flavored markdown table.
func (t Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	colCount := 0
	for _, row := range t.Rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteByte('|')
		for col := 0; col < colCount; col++ {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			fmt.Fprintf(&b, " %s |", cell)
		}
		b.WriteByte('\n')
	}

	writeRow(t.Rows[0])
	b.WriteByte('|')
	for i := 0; i < colCount; i++ {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return b.String()
}

// detectTables groups lines by page and looks for runs of minTableRows+
// consecutive lines whose column boundaries align within boundaryTolerance.
func detectTables(lines []TextLine) []Table {
	var tables []Table

	pages := make(map[int][]TextLine)
	var pageOrder []int
	for _, line := range lines {
		if _, ok := pages[line.Page]; !ok {
			pageOrder = append(pageOrder, line.Page)
		}
		pages[line.Page] = append(pages[line.Page], line)
	}
	sort.Ints(pageOrder)

	for _, page := range pageOrder {
		pageLines := pages[page]
		boundaries := make([][]float64, len(pageLines))
		for i, line := range pageLines {
			boundaries[i] = findColumnBoundaries(line)
		}

		runStart := 0
		for runStart < len(pageLines) {
			runEnd := runStart + 1
			for runEnd < len(pageLines) && boundariesAlign(boundaries[runStart], boundaries[runEnd], boundaryTolerance) {
				runEnd++
			}

			runLen := runEnd - runStart
			if runLen >= minTableRows && len(boundaries[runStart]) > 0 {
				runBoundaries := boundaries[runStart]
				tableLines := pageLines[runStart:runEnd]
				rows := make([][]string, len(tableLines))
				for i, line := range tableLines {
					rows[i] = splitAtBoundaries(line, runBoundaries)
				}

				xMin, xMax := tableLines[0].X, tableLines[0].X
				yMin, yMax := tableLines[0].Y, tableLines[0].Y
				for _, line := range tableLines {
					if line.X < xMin {
						xMin = line.X
					}
					right := line.X
					if len(line.Chars) > 0 {
						last := line.Chars[len(line.Chars)-1]
						right = last.X + last.Width
					}
					if right > xMax {
						xMax = right
					}
					if line.Y < yMin {
						yMin = line.Y
					}
					if line.Y > yMax {
						yMax = line.Y
					}
				}

				tables = append(tables, Table{
					Page: page,
					XMin: xMin, XMax: xMax,
					YMin: yMin, YMax: yMax,
					Rows: rows,
				})
			}

			runStart = runEnd
		}
	}

	return tables
}

// findColumnBoundaries locates X positions where a horizontal gap wider
// than 2x the line's average character width occurs.
func findColumnBoundaries(line TextLine) []float64 {
	if len(line.Chars) < 2 {
		return nil
	}
	var totalWidth float64
	for _, c := range line.Chars {
		totalWidth += c.Width
	}
	avgWidth := totalWidth / float64(len(line.Chars))
	gapThreshold := avgWidth * 2.0

	var boundaries []float64
	for i := 1; i < len(line.Chars); i++ {
		prev := line.Chars[i-1]
		gap := line.Chars[i].X - (prev.X + prev.Width)
		if gap > gapThreshold {
			boundaries = append(boundaries, prev.X+prev.Width+gap/2.0)
		}
	}
	return boundaries
}

// boundariesAlign reports whether two boundary sets have the same length
// and every pair is within tolerance of each other.
func boundariesAlign(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff >= tolerance {
			return false
		}
	}
	return true
}

// splitAtBoundaries assigns each character to a column by comparing its X
// position against the boundary list, then trims each resulting cell.
func splitAtBoundaries(line TextLine, boundaries []float64) []string {
	cells := make([]strings.Builder, len(boundaries)+1)
	for _, ch := range line.Chars {
		col := len(boundaries)
		for i, b := range boundaries {
			if ch.X < b {
				col = i
				break
			}
		}
		cells[col].WriteRune(ch.Ch)
	}
	out := make([]string, len(cells))
	for i := range cells {
		out[i] = strings.TrimSpace(cells[i].String())
	}
	return out
}
