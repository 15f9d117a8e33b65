package providers

import (
	"fmt"
	"strings"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/providers/anthropic"
	"github.com/visiq-ai/visiq-workflows/internal/providers/mock"
	"github.com/visiq-ai/visiq-workflows/internal/providers/openai"
	"github.com/visiq-ai/visiq-workflows/services"
)

// NewProvider creates the appropriate model client for the given model name
func NewProvider(modelName string, cfg *config.Config, costService services.CostService) (services.ModelClient, error) {
	modelLower := strings.ToLower(modelName)

	// Forced mock mode routes everything to the synthetic provider
	if cfg.Mock.ForceMock {
		fmt.Printf("[ProviderFactory] 🎭 MOCK_MODE active, using mock provider for model: %s\n", modelName)
		return mock.NewProvider(cfg), nil
	}

	if strings.Contains(modelLower, "mock") {
		fmt.Printf("[ProviderFactory] 🎭 Selected mock provider for model: %s\n", modelName)
		return mock.NewProvider(cfg), nil
	}

	// OpenAI provider (gpt-4.1, gpt-4o, o4-mini, etc.)
	if strings.Contains(modelLower, "gpt") || strings.Contains(modelLower, "o4") {
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is empty in config")
		}
		fmt.Printf("[ProviderFactory] 🎯 Selected OpenAI provider for model: %s\n", modelName)
		return openai.NewProvider(cfg, costService), nil
	}

	// Anthropic provider
	if strings.Contains(modelLower, "claude") || strings.Contains(modelLower, "sonnet") ||
		strings.Contains(modelLower, "opus") || strings.Contains(modelLower, "haiku") {
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is empty in config")
		}
		fmt.Printf("[ProviderFactory] 🎯 Selected Anthropic provider for model: %s\n", modelName)
		return anthropic.NewProvider(cfg, costService), nil
	}

	return nil, fmt.Errorf("unsupported model: %s", modelName)
}
