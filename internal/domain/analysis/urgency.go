package analysis

import "strings"

var (
	highUrgencyKeywords   = []string{"high", "critical", "urgent"}
	mediumUrgencyKeywords = []string{"medium", "moderate", "watch"}
)

// NormalizeUrgency maps arbitrary text onto the urgency tiers by keyword
// containment. High keywords are checked before medium ones; anything else,
// including the empty string, is Low.
func NormalizeUrgency(s string) UrgencyLevel {
	lc := strings.ToLower(s)
	switch {
	case containsAny(lc, highUrgencyKeywords):
		return UrgencyHigh
	case containsAny(lc, mediumUrgencyKeywords):
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
