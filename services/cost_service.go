// services/cost_service.go
package services

import "strings"

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-4.1":                  {input: 2.00, output: 8.00},
	"gpt-4.1-mini":             {input: 0.40, output: 1.60},
	"gpt-4o":                   {input: 2.50, output: 10.00},
	"gpt-4o-mini":              {input: 0.15, output: 0.60},
	"o4-mini":                  {input: 1.10, output: 4.40},
	"claude-sonnet-4-20250514": {input: 3.00, output: 15.00},
	"claude-opus-4-20250514":   {input: 15.00, output: 75.00},
	"claude-3-7-sonnet":        {input: 3.00, output: 15.00},
	"claude-3-5-haiku":         {input: 0.80, output: 4.00},
	// Fallback generator produces no billable tokens
	"mock": {input: 0, output: 0},
}

func (s *costService) CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64 {
	modelKey := strings.ToLower(strings.TrimSpace(model))
	modelCosts, exists := costPerToken[modelKey]
	if !exists {
		// Try prefix match (e.g. dated variants like "claude-3-5-haiku-20241022")
		for k, v := range costPerToken {
			if strings.HasPrefix(modelKey, k) {
				modelCosts = v
				exists = true
				break
			}
		}
		if !exists {
			modelCosts = s.defaultCosts(provider)
		}
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output
	return inputCost + outputCost
}

// defaultCosts picks a conservative default when the model is unknown
func (s *costService) defaultCosts(provider string) struct{ input, output float64 } {
	provider = strings.ToLower(provider)
	if strings.Contains(provider, "anthropic") || strings.Contains(provider, "claude") {
		return costPerToken["claude-sonnet-4-20250514"]
	}
	if strings.Contains(provider, "mock") {
		return costPerToken["mock"]
	}
	return costPerToken["gpt-4.1"]
}
