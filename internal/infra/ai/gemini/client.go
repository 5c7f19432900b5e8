package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bryanwahyu/healthsync/internal/domain/ai"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/infra/ai/prompt"
)

const defaultModel = "gemini-flash-latest"

type Client struct {
	*genai.Client
	Model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	return NewClientWithBaseURL(ctx, apiKey, model, "")
}

// NewClientWithBaseURL points the client at a proxy or test server; an empty
// baseURL keeps the public endpoint.
func NewClientWithBaseURL(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{Client: c, Model: model}, nil
}

func (c *Client) AnalyzeReport(ctx context.Context, reportText string, patient analysis.PatientInfo) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt.GetSystemPrompt()}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}

	resp, err := c.Models.GenerateContent(ctx, model, genai.Text(prompt.GetUserPrompt(reportText, patient)), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			if kind := ai.ClassifyStatus(apiErr.Code); kind != nil {
				return "", fmt.Errorf("%w: %s", kind, apiErr.Message)
			}
			if apiErr.Message != "" {
				return "", errors.New(apiErr.Message)
			}
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// responseSchema mirrors the JSON shape the system prompt asks for.
func responseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	strList := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":      str("short 1-2 sentence summary"),
			"mainFindings": strList("clinically important findings, most important first"),
			"abnormalValues": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"testName":       str("name of parameter"),
						"value":          str("reported value"),
						"referenceRange": str("range if present"),
						"status":         str("High, Low, Critical, Abnormal or Borderline"),
					},
					Required: []string{"testName", "status"},
				},
			},
			"doctorChecks": strList("what the doctor should verify"),
			"urgencyLevel": {
				Type: genai.TypeString,
				Enum: []string{"Low", "Medium", "High"},
			},
			"urgencyReason": str("short reason"),
		},
		Required: []string{"summary", "mainFindings", "abnormalValues", "doctorChecks", "urgencyLevel", "urgencyReason"},
	}
}
