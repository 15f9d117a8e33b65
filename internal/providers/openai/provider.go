// internal/providers/openai/provider.go
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/internal/providers/common"
	"github.com/visiq-ai/visiq-workflows/services"
)

type provider struct {
	client      *openai.Client
	cfg         *config.Config
	costService services.CostService
	guard       *common.CallGuard
}

// QueryResponse is the structured output requested from the chat completions
// API. The answer field is the prose the analyzer consumes; sources carries
// any URLs the model says it drew on.
type QueryResponse struct {
	Answer     string   `json:"answer" jsonschema_description:"The complete answer to the question"`
	KeyPoints  []string `json:"key_points" jsonschema_description:"3-5 key points from the answer"`
	Confidence string   `json:"confidence" jsonschema:"enum=high,enum=medium,enum=low" jsonschema_description:"Confidence level in the answer accuracy"`
	Sources    []string `json:"sources" jsonschema_description:"URLs of sources referenced in the answer, empty if none"`
}

var queryResponseSchema = services.GenerateSchema[QueryResponse]()

// NewProvider creates an OpenAI-backed model client. Extra request options are
// for tests (custom base URL, HTTP client).
func NewProvider(cfg *config.Config, costService services.CostService, opts ...option.RequestOption) services.ModelClient {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}, opts...)
	client := openai.NewClient(clientOpts...)

	return &provider{
		client:      &client,
		cfg:         cfg,
		costService: costService,
		guard:       common.NewCallGuard("openai", cfg.Dispatch.OpenAIRPM),
	}
}

func (p *provider) GetProviderName() string {
	return "openai"
}

func (p *provider) IsConfigured() bool {
	return p.cfg.OpenAIAPIKey != ""
}

func (p *provider) Call(ctx context.Context, query models.Query) (*models.RawResponse, error) {
	if !p.IsConfigured() {
		return nil, &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: 401,
			Err:        fmt.Errorf("OpenAI API key not configured"),
		}
	}

	started := time.Now()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "query_response",
		Description: openai.String("Structured answer to the visibility query"),
		Schema:      queryResponseSchema,
		Strict:      openai.Bool(true),
	}

	result, err := p.guard.Execute(ctx, func() (interface{}, error) {
		return p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage("You are a helpful assistant that provides accurate, comprehensive answers to questions."),
				openai.UserMessage(query.Prompt),
			},
			Model: openai.ChatModel(query.Model),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
			},
			Temperature: openai.Float(query.Temperature),
			MaxTokens:   openai.Int(int64(query.MaxTokens)),
		})
	})
	if err != nil {
		return nil, p.wrapCallError(err)
	}

	response, ok := result.(*openai.ChatCompletion)
	if !ok || len(response.Choices) == 0 {
		return nil, &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: 502,
			Err:        fmt.Errorf("no response choices returned"),
		}
	}

	content := response.Choices[0].Message.Content
	var citations []string
	var structured QueryResponse
	if err := json.Unmarshal([]byte(content), &structured); err == nil && structured.Answer != "" {
		content = structured.Answer
		if len(structured.KeyPoints) > 0 {
			content += "\n\nKey Points:\n"
			for _, point := range structured.KeyPoints {
				content += fmt.Sprintf("• %s\n", point)
			}
		}
		citations = structured.Sources
	}

	inputTokens := int(response.Usage.PromptTokens)
	outputTokens := int(response.Usage.CompletionTokens)

	return &models.RawResponse{
		Content:        content,
		TokensUsed:     inputTokens + outputTokens,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		Model:          query.Model,
		RequestID:      response.ID,
		Citations:      citations,
		Cost:           p.costService.CalculateCost(p.GetProviderName(), query.Model, inputTokens, outputTokens),
		ProcessingTime: time.Since(started),
	}, nil
}

// wrapCallError converts SDK and breaker errors into the dispatcher's
// transient/permanent taxonomy
func (p *provider) wrapCallError(err error) error {
	if common.IsBreakerOpen(err) {
		return &services.ProviderCallError{
			Provider:    p.GetProviderName(),
			BreakerOpen: true,
			Err:         err,
		}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}

	// No HTTP response at all: network-level, retryable
	return &services.ProviderCallError{
		Provider: p.GetProviderName(),
		Err:      err,
	}
}
