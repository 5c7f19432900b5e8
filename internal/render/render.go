// Package render turns a stored analysis into typed content blocks for the
// patient and doctor views.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

// View selects one of the two consumers of rendered content.
type View string

const (
	ViewPatient View = "patient"
	ViewDoctor  View = "doctor"
)

// ParseView accepts the view names used on the API; empty means patient.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewPatient:
		return ViewPatient, nil
	case ViewDoctor:
		return ViewDoctor, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Source is what gets rendered: a structured analysis or legacy raw text.
type Source interface {
	isSource()
}

// Structured wraps a normalized analysis.
type Structured struct {
	Analysis analysis.StructuredAnalysis
}

// RawText is a record stored before structured analyses existed.
type RawText string

func (Structured) isSource() {}
func (RawText) isSource()    {}

// SourceOf picks the structured analysis when the record has one.
func SourceOf(r *analysis.Record) Source {
	if r.Structured != nil {
		return Structured{Analysis: *r.Structured}
	}
	return RawText(r.AnalysisText)
}

const (
	patientTitle  = "Lab Report Analysis"
	patientFooter = "Note: This analysis should be reviewed by your physician. Abnormal values require medical attention."
	dateLayout    = "Jan 2, 2006"
)

// Render produces the document for view. now only feeds the displayed date.
func Render(src Source, view View, now time.Time) Document {
	var blocks []Block
	switch s := src.(type) {
	case Structured:
		blocks = renderStructured(s.Analysis, view)
	case RawText:
		text := string(s)
		if strings.TrimSpace(text) == "" {
			return Document{View: view}
		}
		if view == ViewDoctor {
			blocks = parseOutline(text)
		} else {
			blocks = parseMarkdown(text)
		}
	default:
		return Document{View: view}
	}

	doc := Document{View: view, Blocks: blocks}
	if view == ViewPatient {
		doc.Title = patientTitle
		doc.Date = now.Format(dateLayout)
		doc.Footer = patientFooter
	}
	return doc
}
