package render

import (
	"regexp"
	"strings"
)

type toneRule struct {
	re   *regexp.Regexp
	tone Tone
}

// Row tones, first match wins.
var (
	severeRules = []toneRule{
		{regexp.MustCompile(`(?i)\b(critical|very high|urgent)\b`), ToneSevere},
		{regexp.MustCompile(`(?i)\b(high|elevated|abnormal)\b`), ToneSevere},
		{regexp.MustCompile(`(?i)\b(low|decreased|below)\b`), ToneCaution},
	}
	borderlineRule = toneRule{regexp.MustCompile(`(?i)\bborderline\b`), ToneWatch}

	highLowWord = regexp.MustCompile(`(?i)\b(high|low)\b`)
)

// LineTone classifies a displayed row. Only the patient view knows the
// borderline tier.
func LineTone(line string, view View) Tone {
	for _, r := range severeRules {
		if r.re.MatchString(line) {
			return r.tone
		}
	}
	if view == ViewPatient && borderlineRule.re.MatchString(line) {
		return borderlineRule.tone
	}
	return ToneNeutral
}

// CellTone classifies a table cell by plain substring.
func CellTone(cell string) Tone {
	lc := strings.ToLower(cell)
	switch {
	case strings.Contains(lc, "high"):
		return ToneSevere
	case strings.Contains(lc, "low"):
		return ToneCaution
	case strings.Contains(lc, "medium"):
		return ToneWatch
	default:
		return ToneNeutral
	}
}

// highlight splits a line around whole-word High/Low markers. It returns nil
// when the line has none.
func highlight(line string) []Segment {
	locs := highLowWord.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	var out []Segment
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			out = append(out, Segment{Text: line[prev:loc[0]]})
		}
		word := line[loc[0]:loc[1]]
		tone := ToneCaution
		if strings.EqualFold(word, "high") {
			tone = ToneSevere
		}
		out = append(out, Segment{Text: word, Tone: tone})
		prev = loc[1]
	}
	if prev < len(line) {
		out = append(out, Segment{Text: line[prev:]})
	}
	return out
}
