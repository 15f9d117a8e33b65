// internal/providers/anthropic/provider.go
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/internal/providers/common"
	"github.com/visiq-ai/visiq-workflows/services"
)

type provider struct {
	client      *anthropic.Client
	cfg         *config.Config
	costService services.CostService
	guard       *common.CallGuard
}

// NewProvider creates an Anthropic-backed model client. Extra request options
// are for tests (custom base URL, HTTP client).
func NewProvider(cfg *config.Config, costService services.CostService, opts ...option.RequestOption) services.ModelClient {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(cfg.AnthropicAPIKey)}, opts...)
	client := anthropic.NewClient(clientOpts...)

	return &provider{
		client:      &client,
		cfg:         cfg,
		costService: costService,
		guard:       common.NewCallGuard("anthropic", cfg.Dispatch.AnthropicRPM),
	}
}

func (p *provider) GetProviderName() string {
	return "anthropic"
}

func (p *provider) IsConfigured() bool {
	return p.cfg.AnthropicAPIKey != ""
}

func (p *provider) Call(ctx context.Context, query models.Query) (*models.RawResponse, error) {
	if !p.IsConfigured() {
		return nil, &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: 401,
			Err:        fmt.Errorf("Anthropic API key not configured"),
		}
	}

	started := time.Now()

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: query.Prompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	result, err := p.guard.Execute(ctx, func() (interface{}, error) {
		return p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(query.Model),
			MaxTokens:   int64(query.MaxTokens),
			Messages:    messages,
			Temperature: anthropic.Float(query.Temperature),
		})
	})
	if err != nil {
		return nil, p.wrapCallError(err)
	}

	response, ok := result.(*anthropic.Message)
	if !ok {
		return nil, &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: 502,
			Err:        fmt.Errorf("unexpected response type"),
		}
	}

	content := extractResponseText(response)
	if content == "" {
		return nil, &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: 502,
			Err:        fmt.Errorf("no text content in response"),
		}
	}

	inputTokens := int(response.Usage.InputTokens)
	outputTokens := int(response.Usage.OutputTokens)

	return &models.RawResponse{
		Content:        content,
		TokensUsed:     inputTokens + outputTokens,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		Model:          query.Model,
		RequestID:      response.ID,
		Cost:           p.costService.CalculateCost(p.GetProviderName(), query.Model, inputTokens, outputTokens),
		ProcessingTime: time.Since(started),
	}, nil
}

func (p *provider) wrapCallError(err error) error {
	if common.IsBreakerOpen(err) {
		return &services.ProviderCallError{
			Provider:    p.GetProviderName(),
			BreakerOpen: true,
			Err:         err,
		}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &services.ProviderCallError{
			Provider:   p.GetProviderName(),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}

	return &services.ProviderCallError{
		Provider: p.GetProviderName(),
		Err:      err,
	}
}

func extractResponseText(response *anthropic.Message) string {
	var textParts []string

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}

	return strings.Join(textParts, "")
}
