package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

func stringPtr(s string) *string {
	return &s
}

func TestGeneratePromptsFillsAllThreeTemplates(t *testing.T) {
	promptService := services.NewPromptService()

	business := models.BusinessContext{
		Name:     "Test Business Inc",
		URL:      "https://testbusiness.com",
		Category: stringPtr("Plumbing Service"),
		Location: &models.Location{
			Country: "US",
			Region:  stringPtr("Texas"),
			City:    stringPtr("Austin"),
		},
	}

	prompts, err := promptService.GeneratePrompts(context.Background(), business)
	if err != nil {
		t.Fatalf("GeneratePrompts() error = %v", err)
	}

	wantFactual := `What do you know about the plumbing service "Test Business Inc" in Austin, Texas, United States? Describe what it offers and anything notable about it.`
	if prompts.Factual != wantFactual {
		t.Errorf("GeneratePrompts() Factual = %q, want %q", prompts.Factual, wantFactual)
	}

	wantOpinion := `What do people think about "Test Business Inc" in Austin, Texas, United States? Summarize its reputation, strengths, and weaknesses.`
	if prompts.Opinion != wantOpinion {
		t.Errorf("GeneratePrompts() Opinion = %q, want %q", prompts.Opinion, wantOpinion)
	}

	wantRecommendation := `What are the best plumbing services in Austin, Texas, United States? Give a ranked list of your top recommendations.`
	if prompts.Recommendation != wantRecommendation {
		t.Errorf("GeneratePrompts() Recommendation = %q, want %q", prompts.Recommendation, wantRecommendation)
	}
}

func TestGeneratePromptsRequiresName(t *testing.T) {
	promptService := services.NewPromptService()

	_, err := promptService.GeneratePrompts(context.Background(), models.BusinessContext{Name: "   "})
	if err == nil {
		t.Fatalf("GeneratePrompts() error = nil, want error for blank name")
	}
}

func TestGeneratePromptsDefaultsCategoryAndLocation(t *testing.T) {
	promptService := services.NewPromptService()

	prompts, err := promptService.GeneratePrompts(context.Background(), models.BusinessContext{Name: "Acme"})
	if err != nil {
		t.Fatalf("GeneratePrompts() error = %v", err)
	}

	if !strings.Contains(prompts.Factual, `the business "Acme"`) {
		t.Errorf("GeneratePrompts() Factual = %q, want generic category", prompts.Factual)
	}
	if !strings.Contains(prompts.Recommendation, "best businesses in") {
		t.Errorf("GeneratePrompts() Recommendation = %q, want pluralized generic category", prompts.Recommendation)
	}
}

func TestGeneratePromptsIncludesCrawlFacts(t *testing.T) {
	promptService := services.NewPromptService()

	business := models.BusinessContext{
		Name: "Test Business Inc",
		CrawlFacts: []string{
			"Founded in 2005.",
			"  ",
			"Offers 24/7 emergency service",
			"Family owned",
			"This fourth fact should be dropped",
		},
	}

	prompts, err := promptService.GeneratePrompts(context.Background(), business)
	if err != nil {
		t.Fatalf("GeneratePrompts() error = %v", err)
	}

	wantClause := " For context: Founded in 2005; Offers 24/7 emergency service; Family owned."
	if !strings.HasSuffix(prompts.Factual, wantClause) {
		t.Errorf("GeneratePrompts() Factual = %q, want suffix %q", prompts.Factual, wantClause)
	}
	if !strings.HasSuffix(prompts.Opinion, wantClause) {
		t.Errorf("GeneratePrompts() Opinion = %q, want suffix %q", prompts.Opinion, wantClause)
	}
	if strings.Contains(prompts.Factual, "fourth fact") {
		t.Errorf("GeneratePrompts() Factual includes more than three facts: %q", prompts.Factual)
	}
	if strings.Contains(prompts.Recommendation, "For context") {
		t.Errorf("GeneratePrompts() Recommendation = %q, must not leak identifying facts", prompts.Recommendation)
	}
}

func TestGeneratePromptsPluralizesCategories(t *testing.T) {
	promptService := services.NewPromptService()

	tests := []struct {
		category string
		want     string
	}{
		{"Coffee Shop", "coffee shops"},
		{"Bakery", "bakeries"},
		{"Car Wash", "car washes"},
		{"Plumbing Service", "plumbing services"},
		{"Tax Office", "tax offices"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			business := models.BusinessContext{
				Name:     "Test Business Inc",
				Category: stringPtr(tt.category),
			}
			prompts, err := promptService.GeneratePrompts(context.Background(), business)
			if err != nil {
				t.Fatalf("GeneratePrompts() error = %v", err)
			}
			if !strings.Contains(prompts.Recommendation, tt.want) {
				t.Errorf("GeneratePrompts() Recommendation = %q, want plural %q", prompts.Recommendation, tt.want)
			}
		})
	}
}
