package render

import (
	"regexp"
	"strings"
)

var (
	leadingGlyph   = regexp.MustCompile(`(?m)^\s*•\s?`)
	markdownHead   = regexp.MustCompile(`^#{1,6}\s+`)
	numberedHead   = regexp.MustCompile(`^\d+\.\s+`)
	headingMarks   = regexp.MustCompile(`^#+\s*`)
	bulletMarker   = regexp.MustCompile(`^[-*]\s+`)
	outlineHeading = regexp.MustCompile(`^\d+\.\s*[A-Z]`)
)

// parseMarkdown reads the markdown-ish text older analyses were stored as.
// Consecutive bullets form one list and consecutive pipe rows one table; a
// plain line continues an open list, otherwise it is its own paragraph.
func parseMarkdown(text string) []Block {
	clean := strings.ReplaceAll(text, "*", "")
	clean = leadingGlyph.ReplaceAllString(clean, "")

	var (
		blocks []Block
		list   []Item
		rows   [][]string
	)
	flushList := func() {
		if len(list) > 0 {
			blocks = append(blocks, List{Items: list})
			list = nil
		}
	}
	flushTable := func() {
		if len(rows) > 0 {
			blocks = append(blocks, buildTable(rows))
			rows = nil
		}
	}

	for _, line := range nonBlankLines(clean) {
		if strings.HasPrefix(line, "|") {
			flushList()
			rows = append(rows, splitCells(line))
			continue
		}
		flushTable()

		switch {
		case markdownHead.MatchString(line) || numberedHead.MatchString(line):
			flushList()
			level := 2
			if strings.HasPrefix(line, "###") {
				level = 3
			}
			blocks = append(blocks, Heading{Level: level, Text: headingMarks.ReplaceAllString(line, "")})
		case bulletMarker.MatchString(line):
			list = append(list, Item{Text: bulletMarker.ReplaceAllString(line, "")})
		case len(list) > 0:
			list = append(list, Item{Text: line})
		default:
			blocks = append(blocks, Paragraph{Text: line, Tone: LineTone(line, ViewPatient)})
		}
	}
	flushList()
	flushTable()
	return blocks
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func buildTable(rows [][]string) Table {
	t := Table{Header: rows[0]}
	for _, r := range rows[1:] {
		cells := make([]Cell, 0, len(r))
		for _, c := range r {
			cells = append(cells, Cell{Text: c, Tone: CellTone(c)})
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// parseOutline is the doctor's reading of raw text: the first line is the
// title, "N. Capital" lines are sub-headings and everything else is a bullet.
// High and Low words are split out as highlighted segments.
func parseOutline(text string) []Block {
	lines := nonBlankLines(strings.ReplaceAll(text, "*", ""))

	var (
		blocks []Block
		list   []Item
	)
	flush := func() {
		if len(list) > 0 {
			blocks = append(blocks, List{Items: list})
			list = nil
		}
	}

	for i, line := range lines {
		switch {
		case i == 0:
			flush()
			blocks = append(blocks, Heading{Level: 1, Text: line, Segments: highlight(line)})
		case outlineHeading.MatchString(line):
			flush()
			blocks = append(blocks, Heading{Level: 2, Text: line, Segments: highlight(line)})
		default:
			list = append(list, Item{Text: line, Segments: highlight(line)})
		}
	}
	flush()
	return blocks
}

func nonBlankLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
