package ai

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/healthsync/internal/application"
	"github.com/bryanwahyu/healthsync/internal/domain/ai"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
)

const (
	msgBadRequest    = "Invalid API key or request. Please check your API key configuration."
	msgEmptyResponse = "No analysis generated. The API response was empty."
	msgUnreachable   = "Failed to connect to AI service"
)

// Service is the analysis entry point. A nil Client runs in demo mode.
type Service struct {
	Client ai.Client
	Clock  application.Clock
	Log    zerolog.Logger
}

func NewService(client ai.Client, clock application.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Client: client, Clock: clock, Log: log}
}

// AnalyzeLabReport makes one provider call and folds every outcome into a
// Result. Text shorter than analysis.MinSourceLength fails before any call.
// Quota exhaustion substitutes the demo analysis; other failures come back as
// Success=false with a readable message.
func (s *Service) AnalyzeLabReport(ctx context.Context, reportText string, patient analysis.PatientInfo) analysis.Result {
	if n := analysis.SourceLength(reportText); n < analysis.MinSourceLength {
		s.Log.Warn().Int("text_length", n).Msg("report text unreadable, skipping analysis")
		return analysis.Failed(analysis.MsgSourceUnreadable)
	}
	if s.Client == nil {
		s.Log.Warn().Msg("ai provider not configured, using demo mode")
		return s.Demo(reportText, patient)
	}

	raw, err := s.Client.AnalyzeReport(ctx, reportText, patient)
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		s.Log.Warn().Err(err).Msg("ai quota exceeded, using demo mode")
		return s.Demo(reportText, patient)
	case errors.Is(err, ai.ErrBadRequest):
		s.Log.Error().Err(err).Msg("ai request rejected")
		return analysis.Failed(msgBadRequest)
	case errors.Is(err, ai.ErrEmptyResponse):
		return analysis.Failed(msgEmptyResponse)
	case err != nil:
		s.Log.Error().Err(err).Msg("ai analysis failed")
		msg := err.Error()
		if msg == "" {
			msg = msgUnreachable
		}
		return analysis.Failed(msg)
	case raw == "":
		return analysis.Failed(msgEmptyResponse)
	}

	structured := analysis.NormalizePayload(analysis.ParsePayload(raw), raw)
	return analysis.Result{
		Success:    true,
		Analysis:   analysis.ComposeText(structured, patient),
		Structured: &structured,
		Timestamp:  s.Clock.Now().UTC(),
	}
}

// Demo builds the canned analysis, salvaged against the report text.
func (s *Service) Demo(reportText string, patient analysis.PatientInfo) analysis.Result {
	structured := analysis.Normalize(analysis.DemoRaw(), reportText)
	return analysis.Result{
		Success:    true,
		Analysis:   analysis.ComposeText(structured, patient),
		Structured: &structured,
		Timestamp:  s.Clock.Now().UTC(),
		IsDemo:     true,
	}
}
