package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		pages = append(pages, pageText(reader.Page(i)))
	}
	return strings.Join(pages, "\n"), nil
}

// pageText never fails; a page the reader cannot decode contributes nothing.
func pageText(page pdf.Page) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	if page.V.IsNull() {
		return ""
	}
	return strings.Join(groupRuns(page.Content().Text), " ")
}

// groupRuns merges positioned glyphs into runs. A run ends on a baseline change,
// a visible horizontal gap or a space glyph.
func groupRuns(glyphs []pdf.Text) []string {
	var (
		runs    []string
		current strings.Builder
		prev    pdf.Text
		started bool
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			runs = append(runs, s)
		}
		current.Reset()
		started = false
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		if started && !sameRun(prev, g) {
			flush()
		}
		current.WriteString(g.S)
		prev = g
		started = true
	}
	flush()
	return runs
}

func sameRun(prev, next pdf.Text) bool {
	size := math.Max(prev.FontSize, 1)
	if math.Abs(next.Y-prev.Y) > size*0.3 {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return gap <= size*0.2 && gap >= -size
}
