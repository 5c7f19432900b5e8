package analysis

import (
	"regexp"
	"strings"
)

const (
	defaultSummary       = "AI generated analysis from available text."
	defaultUrgencyReason = "Derived from extracted abnormalities in the report text."

	maxFallbackFindings = 4
	maxFallbackAbnormal = 5
	maxFallbackChecks   = 4
)

var (
	lineSplitter = regexp.MustCompile(`\r?\n`)
	listMarker   = regexp.MustCompile(`^[-*\s]+`)

	findingKeywords = []string{"high", "low", "elevated", "decreased", "abnormal", "critical"}

	// status detectors, first match wins
	statusDetectors = []struct {
		re     *regexp.Regexp
		status string
	}{
		{regexp.MustCompile(`(?i)critical`), "Critical"},
		{regexp.MustCompile(`(?i)high|elevated`), "High"},
		{regexp.MustCompile(`(?i)low|decreased`), "Low"},
	}

	doctorCheckPattern = regexp.MustCompile(`(?i)review|check|repeat|monitor|consult`)
)

// ExtractFromFreeText builds a best-effort analysis straight from report text.
// It never fails; with no usable lines it degrades to generic placeholders.
func ExtractFromFreeText(text string) StructuredAnalysis {
	lines := splitReportLines(text)

	var candidates []string
	for _, line := range lines {
		if containsAny(strings.ToLower(line), findingKeywords) {
			candidates = append(candidates, line)
		}
	}

	summary := strings.Join(firstN(lines, 2), " ")
	if summary == "" {
		summary = defaultSummary
	}

	abnormal := make([]AbnormalValue, 0, maxFallbackAbnormal)
	for _, line := range firstN(candidates, maxFallbackAbnormal) {
		abnormal = append(abnormal, AbnormalValue{TestName: line, Status: statusFor(line)})
	}

	var checks []string
	for _, line := range lines {
		if doctorCheckPattern.MatchString(line) {
			checks = append(checks, line)
		}
	}

	return StructuredAnalysis{
		Summary:        summary,
		MainFindings:   append([]string{}, firstN(candidates, maxFallbackFindings)...),
		AbnormalValues: abnormal,
		DoctorChecks:   append([]string{}, firstN(checks, maxFallbackChecks)...),
		UrgencyLevel:   NormalizeUrgency(text),
		UrgencyReason:  defaultUrgencyReason,
	}
}

func splitReportLines(text string) []string {
	var out []string
	for _, raw := range lineSplitter.Split(text, -1) {
		line := strings.TrimSpace(listMarker.ReplaceAllString(raw, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func statusFor(line string) string {
	for _, d := range statusDetectors {
		if d.re.MatchString(line) {
			return d.status
		}
	}
	return "Abnormal"
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
