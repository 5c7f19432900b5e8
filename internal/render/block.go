package render

import (
	"encoding/json"
	"fmt"
)

// Tone is the severity styling applied to a rendered line, cell or span.
// The zero value is ToneNeutral.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneWatch
	ToneCaution
	ToneSevere
)

func (t Tone) String() string {
	switch t {
	case ToneWatch:
		return "watch"
	case ToneCaution:
		return "caution"
	case ToneSevere:
		return "severe"
	default:
		return "neutral"
	}
}

// MarshalText encodes the tone by name.
func (t Tone) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Segment is a run of text inside a line; highlighted words carry a tone.
type Segment struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Block is one typed unit of rendered content.
type Block interface {
	kind() string
}

// Heading is a section title. Level 1 is a document title, 2 and 3 are
// section and sub-section headings.
type Heading struct {
	Level    int       `json:"level"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
}

// Item is one list entry.
type Item struct {
	Text     string    `json:"text"`
	Emphasis string    `json:"emphasis,omitempty"`
	Tone     Tone      `json:"tone"`
	Segments []Segment `json:"segments,omitempty"`
}

// List is an ordered run of items rendered as bullets.
type List struct {
	Items []Item `json:"items"`
}

// Cell is one table cell.
type Cell struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Table has a header row followed by toned body rows.
type Table struct {
	Header []string `json:"header"`
	Rows   [][]Cell `json:"rows"`
}

// Paragraph is free text, optionally introduced by a bold label.
type Paragraph struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
	Tone  Tone   `json:"tone"`
}

func (Heading) kind() string   { return "heading" }
func (List) kind() string      { return "list" }
func (Table) kind() string     { return "table" }
func (Paragraph) kind() string { return "paragraph" }

// Document is the output of one render call.
type Document struct {
	View   View
	Title  string
	Date   string
	Blocks []Block
	Footer string
}

type taggedBlock struct {
	Type string `json:"type"`
	Data Block  `json:"data"`
}

// MarshalJSON tags every block with its kind so clients can dispatch on it.
func (d Document) MarshalJSON() ([]byte, error) {
	blocks := make([]taggedBlock, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b == nil {
			return nil, fmt.Errorf("render: nil block in document")
		}
		blocks = append(blocks, taggedBlock{Type: b.kind(), Data: b})
	}
	return json.Marshal(struct {
		View   View          `json:"view"`
		Title  string        `json:"title,omitempty"`
		Date   string        `json:"date,omitempty"`
		Blocks []taggedBlock `json:"blocks"`
		Footer string        `json:"footer,omitempty"`
	}{d.View, d.Title, d.Date, blocks, d.Footer})
}
