package analysis

import (
	"strconv"
)

// RawAnalysis is a model response after the key aliases have been resolved.
// Fields the response did not carry are left empty.
type RawAnalysis struct {
	Summary        string
	MainFindings   []string
	AbnormalValues []AbnormalValue
	DoctorChecks   []string
	Urgency        string
	UrgencyReason  string
}

// AdaptRaw converts a decoded JSON object into a RawAnalysis. Alternate keys
// are resolved here once: testName/name, status/severity, urgencyLevel/urgency
// and urgencyReason/urgencyExplanation. Falsy scalars count as absent and
// abnormal entries with neither a name, a value nor a status are dropped.
func AdaptRaw(m map[string]any) *RawAnalysis {
	if m == nil {
		return nil
	}
	raw := &RawAnalysis{
		Summary:       scalarString(m["summary"]),
		MainFindings:  stringList(m["mainFindings"]),
		DoctorChecks:  stringList(m["doctorChecks"]),
		Urgency:       firstNonEmpty(scalarString(m["urgencyLevel"]), scalarString(m["urgency"])),
		UrgencyReason: firstNonEmpty(scalarString(m["urgencyReason"]), scalarString(m["urgencyExplanation"])),
	}
	if items, ok := m["abnormalValues"].([]any); ok {
		for _, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			v := AbnormalValue{
				TestName:       firstNonEmpty(scalarString(obj["testName"]), scalarString(obj["name"])),
				Value:          scalarString(obj["value"]),
				ReferenceRange: scalarString(obj["referenceRange"]),
				Status:         firstNonEmpty(scalarString(obj["status"]), scalarString(obj["severity"])),
			}
			if !v.empty() {
				raw.AbnormalValues = append(raw.AbnormalValues, v)
			}
		}
	}
	return raw
}

// Normalize fills every field of the analysis. Each field keeps the model's
// value when it is non-empty and otherwise takes the free-text extraction of
// fallbackText, so a partial response is salvaged field by field.
func Normalize(raw *RawAnalysis, fallbackText string) StructuredAnalysis {
	fb := ExtractFromFreeText(fallbackText)
	if raw == nil {
		raw = &RawAnalysis{}
	}

	out := StructuredAnalysis{
		Summary:        firstNonEmpty(raw.Summary, fb.Summary),
		MainFindings:   fb.MainFindings,
		AbnormalValues: fb.AbnormalValues,
		DoctorChecks:   fb.DoctorChecks,
		UrgencyReason:  firstNonEmpty(raw.UrgencyReason, fb.UrgencyReason),
	}
	if len(raw.MainFindings) > 0 {
		out.MainFindings = append([]string(nil), raw.MainFindings...)
	}
	if len(raw.AbnormalValues) > 0 {
		out.AbnormalValues = append([]AbnormalValue(nil), raw.AbnormalValues...)
	}
	if len(raw.DoctorChecks) > 0 {
		out.DoctorChecks = append([]string(nil), raw.DoctorChecks...)
	}
	if raw.Urgency != "" {
		out.UrgencyLevel = NormalizeUrgency(raw.Urgency)
	} else {
		out.UrgencyLevel = NormalizeUrgency(string(fb.UrgencyLevel))
	}
	return out
}

// NormalizePayload adapts and normalizes a parsed model payload in one step.
func NormalizePayload(payload map[string]any, fallbackText string) StructuredAnalysis {
	return Normalize(AdaptRaw(payload), fallbackText)
}

// scalarString renders a JSON scalar the way it would print, treating falsy
// values (null, "", 0, false) as absent. Objects and arrays yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := scalarString(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
