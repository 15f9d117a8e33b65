package services_test

import (
	"math"
	"testing"

	"github.com/visiq-ai/visiq-workflows/services"
)

func TestCalculateCostKnownModels(t *testing.T) {
	costService := services.NewCostService()

	tests := []struct {
		name         string
		provider     string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{
			name:         "gpt-4.1 per million tokens",
			provider:     "openai",
			model:        "gpt-4.1",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         10.00,
		},
		{
			name:         "claude sonnet per million tokens",
			provider:     "anthropic",
			model:        "claude-sonnet-4-20250514",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         18.00,
		},
		{
			name:         "small token counts scale down",
			provider:     "openai",
			model:        "gpt-4o-mini",
			inputTokens:  1000,
			outputTokens: 500,
			want:         (1000.0/1_000_000)*0.15 + (500.0/1_000_000)*0.60,
		},
		{
			name:         "model lookup is case insensitive",
			provider:     "openai",
			model:        "GPT-4.1",
			inputTokens:  1_000_000,
			outputTokens: 0,
			want:         2.00,
		},
		{
			name:         "mock model is free",
			provider:     "mock",
			model:        "mock",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			want:         0,
		},
		{
			name:         "zero tokens cost nothing",
			provider:     "openai",
			model:        "gpt-4.1",
			inputTokens:  0,
			outputTokens: 0,
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := costService.CalculateCost(tt.provider, tt.model, tt.inputTokens, tt.outputTokens)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CalculateCost(%s, %s, %d, %d) = %v, want %v",
					tt.provider, tt.model, tt.inputTokens, tt.outputTokens, got, tt.want)
			}
		})
	}
}

func TestCalculateCostPrefixFallback(t *testing.T) {
	costService := services.NewCostService()

	// The dated variant should resolve through the undated prefix
	dated := costService.CalculateCost("anthropic", "claude-3-5-haiku-20241022", 1_000_000, 1_000_000)
	base := costService.CalculateCost("anthropic", "claude-3-5-haiku", 1_000_000, 1_000_000)

	if dated != base {
		t.Errorf("CalculateCost() dated variant = %v, want same as base %v", dated, base)
	}
	if base != 4.80 {
		t.Errorf("CalculateCost() claude-3-5-haiku = %v, want 4.80", base)
	}
}

func TestCalculateCostUnknownModelUsesProviderDefault(t *testing.T) {
	costService := services.NewCostService()

	tests := []struct {
		name     string
		provider string
		model    string
		want     float64
	}{
		{
			name:     "unknown anthropic model priced as sonnet",
			provider: "anthropic",
			model:    "mystery-model",
			want:     18.00,
		},
		{
			name:     "unknown openai model priced as gpt-4.1",
			provider: "openai",
			model:    "mystery-model",
			want:     10.00,
		},
		{
			name:     "unknown mock model free",
			provider: "mock",
			model:    "mystery-model",
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := costService.CalculateCost(tt.provider, tt.model, 1_000_000, 1_000_000)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CalculateCost(%s, %s) = %v, want %v", tt.provider, tt.model, got, tt.want)
			}
		})
	}
}
