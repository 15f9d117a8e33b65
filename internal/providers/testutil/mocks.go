package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"

	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

// MockModelClient is a mock implementation of ModelClient for testing
type MockModelClient struct {
	CallFunc     func(ctx context.Context, query models.Query) (*models.RawResponse, error)
	ProviderName string
	Unconfigured bool
}

func (m *MockModelClient) Call(ctx context.Context, query models.Query) (*models.RawResponse, error) {
	if m.CallFunc != nil {
		return m.CallFunc(ctx, query)
	}
	return &models.RawResponse{
		Content:    "Mock response for: " + query.Prompt,
		TokensUsed: 42,
		Model:      query.Model,
		RequestID:  "test-request-id",
	}, nil
}

func (m *MockModelClient) GetProviderName() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock-client"
}

func (m *MockModelClient) IsConfigured() bool {
	return !m.Unconfigured
}

// MockCostService is a mock implementation of CostService for testing
type MockCostService struct {
	CalculateCostFunc func(provider, model string, inputTokens, outputTokens int) float64
}

func (m *MockCostService) CalculateCost(provider, model string, inputTokens, outputTokens int) float64 {
	if m.CalculateCostFunc != nil {
		return m.CalculateCostFunc(provider, model, inputTokens, outputTokens)
	}
	return 0.0015 // Default mock cost
}

// MockPromptService is a mock implementation of PromptService for testing
type MockPromptService struct {
	GeneratePromptsFunc func(ctx context.Context, business models.BusinessContext) (*models.PromptSet, error)
}

func (m *MockPromptService) GeneratePrompts(ctx context.Context, business models.BusinessContext) (*models.PromptSet, error) {
	if m.GeneratePromptsFunc != nil {
		return m.GeneratePromptsFunc(ctx, business)
	}
	return &models.PromptSet{
		Factual:        fmt.Sprintf("What do you know about \"%s\"?", business.Name),
		Opinion:        fmt.Sprintf("What do people think about \"%s\"?", business.Name),
		Recommendation: fmt.Sprintf("What are the best businesses like \"%s\"?", business.Name),
	}, nil
}

// MockFingerprintService is a mock implementation of FingerprintService for testing
type MockFingerprintService struct {
	FingerprintFunc        func(ctx context.Context, business models.BusinessContext) (*models.FingerprintAnalysis, error)
	GetProcessingStatsFunc func(results []models.AnalysisResult) models.ProcessingStats
	GetCapabilitiesFunc    func() models.Capabilities
}

func (m *MockFingerprintService) Fingerprint(ctx context.Context, business models.BusinessContext) (*models.FingerprintAnalysis, error) {
	if m.FingerprintFunc != nil {
		return m.FingerprintFunc(ctx, business)
	}
	return &models.FingerprintAnalysis{
		FingerprintID: uuid.New(),
		BusinessName:  business.Name,
	}, nil
}

func (m *MockFingerprintService) GetProcessingStats(results []models.AnalysisResult) models.ProcessingStats {
	if m.GetProcessingStatsFunc != nil {
		return m.GetProcessingStatsFunc(results)
	}
	return models.ProcessingStats{}
}

func (m *MockFingerprintService) GetCapabilities() models.Capabilities {
	if m.GetCapabilitiesFunc != nil {
		return m.GetCapabilitiesFunc()
	}
	return models.Capabilities{}
}

// MockBusinessStore is a mock implementation of BusinessStore for testing
type MockBusinessStore struct {
	GetBusinessFunc                  func(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	GetBusinessIDsByScheduledDOWFunc func(ctx context.Context, dow int) ([]uuid.UUID, error)
	MarkBusinessRunFunc              func(ctx context.Context, businessID uuid.UUID) error

	MarkedRuns []uuid.UUID
}

func (m *MockBusinessStore) GetBusiness(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	if m.GetBusinessFunc != nil {
		return m.GetBusinessFunc(ctx, businessID)
	}
	return SampleBusiness(businessID), nil
}

func (m *MockBusinessStore) GetBusinessIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	if m.GetBusinessIDsByScheduledDOWFunc != nil {
		return m.GetBusinessIDsByScheduledDOWFunc(ctx, dow)
	}
	return nil, nil
}

func (m *MockBusinessStore) MarkBusinessRun(ctx context.Context, businessID uuid.UUID) error {
	m.MarkedRuns = append(m.MarkedRuns, businessID)
	if m.MarkBusinessRunFunc != nil {
		return m.MarkBusinessRunFunc(ctx, businessID)
	}
	return nil
}

// MockFingerprintStore is a mock implementation of FingerprintStore for testing
type MockFingerprintStore struct {
	SaveAnalysisFunc      func(ctx context.Context, analysis *models.FingerprintAnalysis) error
	GetLatestAnalysisFunc func(ctx context.Context, businessID uuid.UUID) (*models.FingerprintAnalysis, error)

	Saved []*models.FingerprintAnalysis
}

func (m *MockFingerprintStore) SaveAnalysis(ctx context.Context, analysis *models.FingerprintAnalysis) error {
	m.Saved = append(m.Saved, analysis)
	if m.SaveAnalysisFunc != nil {
		return m.SaveAnalysisFunc(ctx, analysis)
	}
	return nil
}

func (m *MockFingerprintStore) GetLatestAnalysis(ctx context.Context, businessID uuid.UUID) (*models.FingerprintAnalysis, error) {
	if m.GetLatestAnalysisFunc != nil {
		return m.GetLatestAnalysisFunc(ctx, businessID)
	}
	if len(m.Saved) > 0 {
		return m.Saved[len(m.Saved)-1], nil
	}
	return nil, fmt.Errorf("no analysis found for business %s", businessID)
}

// compile-time interface checks
var (
	_ services.ModelClient        = (*MockModelClient)(nil)
	_ services.CostService        = (*MockCostService)(nil)
	_ services.PromptService      = (*MockPromptService)(nil)
	_ services.FingerprintService = (*MockFingerprintService)(nil)
	_ services.BusinessStore      = (*MockBusinessStore)(nil)
	_ services.FingerprintStore   = (*MockFingerprintStore)(nil)
)

// NewMockAPIServer creates a test HTTP server with a custom handler, for
// pointing real provider clients at via their base URL option
func NewMockAPIServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

// OpenAIChatCompletionBody builds a minimal chat completion response body.
// content is placed verbatim in the first choice's message content, so tests
// exercising structured outputs should pass marshaled JSON.
func OpenAIChatCompletionBody(content string, promptTokens, completionTokens int) []byte {
	body := map[string]interface{}{
		"id":     "chatcmpl-test-123",
		"object": "chat.completion",
		"model":  "gpt-4.1",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
		},
	}
	data, _ := json.Marshal(body)
	return data
}

// AnthropicMessageBody builds a minimal messages API response body
func AnthropicMessageBody(text string, inputTokens, outputTokens int) []byte {
	body := map[string]interface{}{
		"id":          "msg-test-123",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": "end_turn",
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
		"usage": map[string]interface{}{
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
		},
	}
	data, _ := json.Marshal(body)
	return data
}

// StructuredAnswerContent marshals a structured query response the way the
// OpenAI provider expects to find it inside the message content
func StructuredAnswerContent(answer string, keyPoints []string, confidence string, sources []string) string {
	body := map[string]interface{}{
		"answer":     answer,
		"key_points": keyPoints,
		"confidence": confidence,
		"sources":    sources,
	}
	data, _ := json.Marshal(body)
	return string(data)
}
