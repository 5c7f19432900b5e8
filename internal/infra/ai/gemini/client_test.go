package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/bryanwahyu/healthsync/internal/domain/ai"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

func newTestClient(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+defaultModel+":generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClientWithBaseURL(context.Background(), "test-key", "", srv.URL+"/")
	require.NoError(t, err)
	return c
}

func TestAnalyzeReportReturnsText(t *testing.T) {
	c := newTestClient(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"summary\":\"ok\"}"}]}}]}`)

	out, err := c.AnalyzeReport(context.Background(), "LDL 190 high", analysis.PatientInfo{Name: "Ana"})

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)
}

func TestAnalyzeReportClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ai.ErrQuotaExceeded},
		{http.StatusBadRequest, ai.ErrBadRequest},
		{http.StatusForbidden, ai.ErrBadRequest},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, tc.status, fmt.Sprintf(`{"error":{"code":%d,"message":"nope","status":"X"}}`, tc.status))

			_, err := c.AnalyzeReport(context.Background(), "LDL 190 high", analysis.PatientInfo{})

			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAnalyzeReportUnclassifiedStatusKeepsMessage(t *testing.T) {
	c := newTestClient(t, http.StatusInternalServerError, `{"error":{"code":500,"message":"backend exploded","status":"INTERNAL"}}`)

	_, err := c.AnalyzeReport(context.Background(), "LDL 190 high", analysis.PatientInfo{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ai.ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ai.ErrBadRequest)
	assert.Contains(t, err.Error(), "backend exploded")
}

func TestAnalyzeReportEmptyCandidates(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"candidates":[]}`)

	_, err := c.AnalyzeReport(context.Background(), "LDL 190 high", analysis.PatientInfo{})

	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestResponseSchemaCoversAnalysisFields(t *testing.T) {
	s := responseSchema()

	assert.Equal(t, genai.TypeObject, s.Type)
	for _, key := range []string{"summary", "mainFindings", "abnormalValues", "doctorChecks", "urgencyLevel", "urgencyReason"} {
		assert.Contains(t, s.Properties, key)
	}
	assert.Equal(t, []string{"Low", "Medium", "High"}, s.Properties["urgencyLevel"].Enum)
	assert.Equal(t, genai.TypeObject, s.Properties["abnormalValues"].Items.Type)
}
