// Package db holds the encodings shared by the MySQL and PostgreSQL
// repositories.
package db

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/domain/medication"
)

// EmptyJSON is stored for JSON columns that have nothing to hold.
const EmptyJSON = "{}"

// EncodeStructured serializes the structured analysis column.
func EncodeStructured(s *analysis.StructuredAnalysis) (string, error) {
	if s == nil {
		return EmptyJSON, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode structured analysis: %w", err)
	}
	return string(b), nil
}

// DecodeStructured returns nil for records stored without a structured
// analysis.
func DecodeStructured(raw string) (*analysis.StructuredAnalysis, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == EmptyJSON || raw == "null" {
		return nil, nil
	}
	var s analysis.StructuredAnalysis
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode structured analysis: %w", err)
	}
	return &s, nil
}

func EncodeMedicines(ms []medication.Medicine) (string, error) {
	if ms == nil {
		ms = []medication.Medicine{}
	}
	b, err := json.Marshal(ms)
	if err != nil {
		return "", fmt.Errorf("encode medicines: %w", err)
	}
	return string(b), nil
}

func DecodeMedicines(raw string) ([]medication.Medicine, error) {
	var ms []medication.Medicine
	if strings.TrimSpace(raw) == "" {
		return ms, nil
	}
	if err := json.Unmarshal([]byte(raw), &ms); err != nil {
		return nil, fmt.Errorf("decode medicines: %w", err)
	}
	return ms, nil
}

// NormalizeDetails makes sure a details column holds valid JSON; anything
// else is wrapped as {"raw": ...}.
func NormalizeDetails(details string) string {
	if strings.TrimSpace(details) == "" {
		return EmptyJSON
	}
	var js any
	if json.Unmarshal([]byte(details), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": details})
		return string(b)
	}
	return details
}

// ClampLimit bounds list sizes.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
