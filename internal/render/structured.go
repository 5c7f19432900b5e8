package render

import (
	"strings"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

func renderStructured(a analysis.StructuredAnalysis, view View) []Block {
	var blocks []Block

	if len(a.MainFindings) > 0 {
		blocks = append(blocks, Heading{Level: 3, Text: "Main Findings"}, plainList(a.MainFindings))
	}

	if len(a.AbnormalValues) > 0 {
		items := make([]Item, 0, len(a.AbnormalValues))
		for _, v := range a.AbnormalValues {
			items = append(items, abnormalItem(v, view))
		}
		blocks = append(blocks, Heading{Level: 3, Text: "Abnormal Values"}, List{Items: items})
	}

	if len(a.DoctorChecks) > 0 {
		if view == ViewPatient {
			blocks = append(blocks, Heading{Level: 3, Text: "Doctor Should Check"})
		}
		blocks = append(blocks, plainList(a.DoctorChecks))
	}

	level := string(a.UrgencyLevel)
	if level == "" {
		level = string(analysis.UrgencyMedium)
	}
	if a.UrgencyReason != "" {
		level += " — " + a.UrgencyReason
	}
	label := "Urgency Level:"
	if view == ViewDoctor {
		label = "Urgency:"
	}
	blocks = append(blocks, Paragraph{Label: label, Text: level})

	if view == ViewPatient && a.Summary != "" {
		blocks = append(blocks, Paragraph{Label: "Summary:", Text: a.Summary})
	}
	return blocks
}

func plainList(lines []string) List {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{Text: l})
	}
	return List{Items: items}
}

// abnormalItem renders "name: value — status (Ref: range)". The tone reads a
// shorter line: the doctor view ignores the value.
func abnormalItem(v analysis.AbnormalValue, view View) Item {
	name := v.TestName
	if name == "" {
		name = "Parameter"
	}

	var probe string
	if view == ViewDoctor {
		probe = name + " " + v.Status
	} else {
		probe = name
		if v.Value != "" {
			probe += ": " + v.Value
		}
		probe = strings.TrimSpace(probe + " " + v.Status)
	}

	var b strings.Builder
	b.WriteString(name)
	if v.Value != "" {
		b.WriteString(": " + v.Value)
	}
	if v.Status != "" {
		b.WriteString(" — " + v.Status)
	}
	if v.ReferenceRange != "" {
		b.WriteString(" (Ref: " + v.ReferenceRange + ")")
	}

	return Item{Text: b.String(), Emphasis: name, Tone: LineTone(probe, view)}
}
