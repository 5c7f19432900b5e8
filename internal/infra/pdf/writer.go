package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// Writer draws instructions onto an A4 page set. It also measures text for
// Emit, so one Writer serves a single document.
type Writer struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

// NewWriter starts an empty A4 portrait document.
func NewWriter() *Writer {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("healthsync", true)
	return &Writer{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
}

func (w *Writer) apply(s Style) {
	weight := ""
	if s.Bold {
		weight = "B"
	}
	w.doc.SetFont(fontFamily, weight, s.Size)
	w.doc.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
}

// SplitText wraps on spaces. A single word wider than width keeps its own line.
func (w *Writer) SplitText(text string, style Style, width float64) []string {
	w.apply(style)
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, word := range words[1:] {
		next := cur + " " + word
		if w.doc.GetStringWidth(w.tr(next)) > width {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	return append(lines, cur)
}

// Write draws every instruction and streams the finished document to out.
func (w *Writer) Write(out io.Writer, instrs []Instruction) error {
	w.doc.AddPage()
	for _, in := range instrs {
		switch in.Op {
		case OpPageBreak:
			w.doc.AddPage()
		case OpText:
			w.apply(in.Style)
			w.doc.Text(in.X, in.Y, w.tr(in.Text))
		}
	}
	if err := w.doc.Output(out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Export lays out text and writes the PDF in one step.
func Export(out io.Writer, text string, meta Meta) error {
	w := NewWriter()
	return w.Write(out, Emit(text, meta, w))
}

// Exporter renders analysis text into a PDF for the application layer.
type Exporter struct{}

func (Exporter) ExportPDF(out io.Writer, text, reportName, patientName, date string) error {
	return Export(out, text, Meta{ReportName: reportName, PatientName: patientName, Date: date})
}
