// Package pdf lays out a composed analysis as positioned, styled lines and
// writes them as a PDF document.
package pdf

import (
	"regexp"
	"strings"
)

// Op is the kind of a drawing instruction.
type Op int

const (
	OpText Op = iota
	OpPageBreak
)

// Color is an RGB text color.
type Color struct{ R, G, B int }

var (
	Black       = Color{0, 0, 0}
	HeadingBlue = Color{41, 83, 124}
	BodyGray    = Color{60, 60, 60}
	AlertRed    = Color{220, 38, 38}
	AlertOrange = Color{251, 146, 60}
)

// Style is the font state for one instruction.
type Style struct {
	Size  float64
	Bold  bool
	Color Color
}

// Instruction draws Text at (X, Y) in millimetres, or starts a new page.
type Instruction struct {
	Op    Op
	X, Y  float64
	Text  string
	Style Style
}

// Meta is printed in the header block.
type Meta struct {
	ReportName  string
	PatientName string
	Date        string
}

// Wrapper splits text into lines no wider than width when set in style.
type Wrapper interface {
	SplitText(text string, style Style, width float64) []string
}

// Layout constants, in millimetres.
const (
	marginX      = 20.0
	bodyX        = 25.0
	headerTop    = 30.0
	pageTop      = 20.0
	bottomLimit  = 270.0
	lineHeight   = 7.0
	wrapWidth    = 170.0
	headingShift = 100.0

	emptyText = "No analysis available."
	bullet    = "•"
)

var (
	numberedHeading = regexp.MustCompile(`^\d+\.\s*[A-Z]`)
	redMarker       = regexp.MustCompile(`(?i)\b(high|critical)\b`)
	orangeMarker    = regexp.MustCompile(`(?i)\blow\b`)
)

var (
	titleStyle   = Style{Size: 16, Bold: true, Color: Black}
	metaStyle    = Style{Size: 12, Color: Black}
	firstStyle   = Style{Size: 12, Bold: true, Color: Black}
	headingStyle = Style{Size: 11, Bold: true, Color: HeadingBlue}
	bodyStyle    = Style{Size: 10, Color: BodyGray}
)

// Emit lays out text below a fixed header. The first line is a bold title,
// "N. Capital" lines are blue sub-headings and the rest are bulleted body
// lines. Lines mentioning high/critical are drawn red, otherwise lines
// mentioning low are drawn orange, whatever their kind.
func Emit(text string, meta Meta, w Wrapper) []Instruction {
	y := headerTop
	out := []Instruction{{Op: OpText, X: marginX, Y: y, Text: "Medical Lab Report Analysis", Style: titleStyle}}
	y += 15
	out = append(out, Instruction{Op: OpText, X: marginX, Y: y, Text: "Report: " + meta.ReportName, Style: metaStyle})
	y += 10
	out = append(out, Instruction{Op: OpText, X: marginX, Y: y, Text: "Patient: " + meta.PatientName, Style: metaStyle})
	y += 10
	out = append(out, Instruction{Op: OpText, X: marginX, Y: y, Text: "Date: " + meta.Date, Style: metaStyle})
	y += 15

	clean := strings.ReplaceAll(text, "*", "")
	if strings.TrimSpace(clean) == "" {
		clean = emptyText
	}

	first := true
	for _, raw := range strings.Split(clean, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		heading := numberedHeading.MatchString(line)
		if heading && y > headingShift {
			y += 5
		}

		style, x := bodyStyle, bodyX
		switch {
		case first:
			style, x = firstStyle, marginX
		case heading:
			style, x = headingStyle, marginX
		}

		if y > bottomLimit {
			out = append(out, Instruction{Op: OpPageBreak})
			y = pageTop
		}
		if x == bodyX {
			out = append(out, Instruction{Op: OpText, X: marginX, Y: y, Text: bullet, Style: style})
		}

		switch {
		case redMarker.MatchString(line):
			style.Color = AlertRed
		case orangeMarker.MatchString(line):
			style.Color = AlertOrange
		}

		parts := w.SplitText(line, style, wrapWidth)
		if len(parts) == 0 {
			parts = []string{line}
		}
		for i, p := range parts {
			out = append(out, Instruction{Op: OpText, X: x, Y: y + float64(i)*lineHeight, Text: p, Style: style})
		}
		y += float64(len(parts)) * lineHeight
		first = false
	}
	return out
}
