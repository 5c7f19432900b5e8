package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("(?i)```json|```")

// ParsePayload pulls a JSON object out of a model response. Code fences are
// removed first; when the remaining text is not an object the outermost
// {...} span is tried. It returns nil when no object can be recovered.
func ParsePayload(rawText string) map[string]any {
	if rawText == "" {
		return nil
	}
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(rawText, ""))
	if obj, ok := decodeObject(cleaned); ok {
		return obj
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if obj, ok := decodeObject(cleaned[start : end+1]); ok {
			return obj
		}
	}
	return nil
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
