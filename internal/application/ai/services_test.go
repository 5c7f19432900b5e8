package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/healthsync/internal/domain/ai"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type stubClient struct {
	out   string
	err   error
	calls int
}

func (s *stubClient) AnalyzeReport(context.Context, string, analysis.PatientInfo) (string, error) {
	s.calls++
	return s.out, s.err
}

var at = time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

const report = "Hemoglobin High 9.2, please monitor"

func newSvc(c ai.Client) *Service {
	return NewService(c, fixedClock{at}, zerolog.Nop())
}

func TestAnalyzeLabReportSuccess(t *testing.T) {
	c := &stubClient{out: "```json\n{\"summary\":\"Low hemoglobin\",\"urgency\":\"moderate\",\"mainFindings\":[\"Hb 9.2\"]}\n```"}
	age := 40

	res := newSvc(c).AnalyzeLabReport(context.Background(), report, analysis.PatientInfo{Name: "Ana", Age: &age})

	require.True(t, res.Success)
	assert.Equal(t, 1, c.calls)
	assert.False(t, res.IsDemo)
	assert.Equal(t, at, res.Timestamp)
	require.NotNil(t, res.Structured)
	assert.Equal(t, "Low hemoglobin", res.Structured.Summary)
	assert.Equal(t, analysis.UrgencyMedium, res.Structured.UrgencyLevel)
	assert.Equal(t, []string{"Hb 9.2"}, res.Structured.MainFindings)
	assert.Equal(t, analysis.ComposeText(*res.Structured, analysis.PatientInfo{Name: "Ana", Age: &age}), res.Analysis)
}

func TestAnalyzeLabReportUnparsableFallsBackToResponseText(t *testing.T) {
	c := &stubClient{out: "Glucose elevated 160\nRepeat fasting glucose"}

	res := newSvc(c).AnalyzeLabReport(context.Background(), report, analysis.PatientInfo{})

	require.True(t, res.Success)
	assert.Equal(t, analysis.ExtractFromFreeText(c.out), *res.Structured)
}

func TestAnalyzeLabReportDemoPaths(t *testing.T) {
	quota := &stubClient{err: fmt.Errorf("%w: rate limited", ai.ErrQuotaExceeded)}

	for name, c := range map[string]ai.Client{"no client": nil, "quota": quota} {
		t.Run(name, func(t *testing.T) {
			res := newSvc(c).AnalyzeLabReport(context.Background(), report, analysis.PatientInfo{})

			require.True(t, res.Success)
			assert.True(t, res.IsDemo)
			assert.Equal(t, "Demo mode response generated because AI service is unavailable.", res.Structured.Summary)
			assert.Equal(t, analysis.UrgencyMedium, res.Structured.UrgencyLevel)
			assert.Contains(t, res.Analysis, "Urgency Level: Medium — Automatic fallback mode")
		})
	}
}

func TestAnalyzeLabReportFailures(t *testing.T) {
	cases := []struct {
		name string
		c    *stubClient
		want string
	}{
		{"bad request", &stubClient{err: fmt.Errorf("%w: key", ai.ErrBadRequest)}, msgBadRequest},
		{"empty", &stubClient{err: ai.ErrEmptyResponse}, msgEmptyResponse},
		{"blank output", &stubClient{}, msgEmptyResponse},
		{"transport", &stubClient{err: errors.New("dial tcp: refused")}, "dial tcp: refused"},
		{"no message", &stubClient{err: errors.New("")}, msgUnreachable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newSvc(tc.c).AnalyzeLabReport(context.Background(), report, analysis.PatientInfo{})

			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
			assert.Nil(t, res.Structured)
			assert.Equal(t, 1, tc.c.calls)
		})
	}
}

func TestAnalyzeLabReportRejectsUnreadableText(t *testing.T) {
	for _, text := range []string{"", "   \n\t ", "Hb 9.2"} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			c := &stubClient{out: `{"summary":"x"}`}
			for name, client := range map[string]ai.Client{"no client": nil, "client": c} {
				res := newSvc(client).AnalyzeLabReport(context.Background(), text, analysis.PatientInfo{})

				assert.False(t, res.Success, name)
				assert.False(t, res.IsDemo, name)
				assert.Equal(t, analysis.MsgSourceUnreadable, res.Error, name)
			}
			assert.Zero(t, c.calls)
		})
	}
}
