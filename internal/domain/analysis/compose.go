package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	noFindingsLine = "Main findings were limited due to report text quality"
	noAbnormalLine = "No clear abnormal values detected from extracted text"
	noChecksLine   = "Correlate findings with symptoms and prior reports"
	noSummaryLine  = "Clinical review recommended."
)

// ComposeText renders the canonical plain-text report used for storage and
// PDF export. Output depends only on its arguments.
func ComposeText(a StructuredAnalysis, patient PatientInfo) string {
	name := patient.Name
	if name == "" {
		name = "Patient"
	}
	age := "N/A"
	if patient.Age != nil {
		age = strconv.Itoa(*patient.Age)
	}

	abnormal := make([]string, 0, len(a.AbnormalValues))
	for i, v := range a.AbnormalValues {
		abnormal = append(abnormal, AbnormalLine(v, i))
	}

	urgency := a.UrgencyLevel
	if urgency == "" {
		urgency = UrgencyMedium
	}
	urgencyLine := "Urgency Level: " + string(urgency)
	if a.UrgencyReason != "" {
		urgencyLine += " — " + a.UrgencyReason
	}

	summary := a.Summary
	if summary == "" {
		summary = noSummaryLine
	}

	var b strings.Builder
	b.WriteString("AI Analysis\n\n")
	fmt.Fprintf(&b, "Patient: %s (Age: %s)\n\n", name, age)
	writeSection(&b, "Main Findings", numbered(a.MainFindings, noFindingsLine))
	writeSection(&b, "Abnormal Values", numbered(abnormal, noAbnormalLine))
	writeSection(&b, "Doctor Should Check", numbered(a.DoctorChecks, noChecksLine))
	b.WriteString(urgencyLine)
	b.WriteString("\n\nSummary:\n")
	b.WriteString(summary)
	return b.String()
}

// AbnormalLine formats one abnormal value without its list number:
// "name[: value] — status[ (Ref: range)]".
func AbnormalLine(v AbnormalValue, index int) string {
	label := v.TestName
	if label == "" {
		label = fmt.Sprintf("Item %d", index+1)
	}
	status := v.Status
	if status == "" {
		status = "Abnormal"
	}
	line := label
	if v.Value != "" {
		line += ": " + v.Value
	}
	line += " — " + status
	if v.ReferenceRange != "" {
		line += " (Ref: " + v.ReferenceRange + ")"
	}
	return line
}

func numbered(items []string, placeholder string) []string {
	if len(items) == 0 {
		items = []string{placeholder}
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = fmt.Sprintf("%d. %s", i+1, it)
	}
	return out
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString(title)
	b.WriteString(":\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
}
