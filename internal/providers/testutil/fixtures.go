package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// SampleConfig returns a test configuration
func SampleConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		Environment:     "development",
		OpenAIAPIKey:    "test-openai-key",
		AnthropicAPIKey: "test-anthropic-key",
		Models:          []string{"gpt-4.1", "claude-sonnet-4-20250514"},
		Dispatch: config.DispatchConfig{
			BatchSize:       5,
			CooldownMs:      0,
			MaxRetries:      3,
			RetryBaseMs:     1,
			QueryMaxTokens:  1000,
			RequestTimeoutS: 5,
		},
		Cache: config.CacheConfig{
			Enabled:    false,
			TTLMinutes: 15,
		},
		Mock: config.MockConfig{
			Variance: false,
			Seed:     1,
		},
	}
}

// SampleLocation returns a test location
func SampleLocation() *models.Location {
	region := "California"
	city := "San Francisco"
	return &models.Location{
		Country: "US",
		Region:  &region,
		City:    &city,
	}
}

// SampleBusinessContext returns a test business
func SampleBusinessContext() models.BusinessContext {
	category := "Coffee Shop"
	return models.BusinessContext{
		Name:     "Blue Bottle Coffee",
		URL:      "https://bluebottlecoffee.com",
		Category: &category,
		Location: SampleLocation(),
		CrawlFacts: []string{
			"Founded in Oakland in 2002",
			"Known for single-origin pour overs",
		},
	}
}

// SampleBusiness returns a stored business row with the given ID
func SampleBusiness(businessID uuid.UUID) *models.Business {
	category := "Coffee Shop"
	region := "California"
	city := "San Francisco"
	dow := 0
	return &models.Business{
		BusinessID:   businessID,
		Name:         "Blue Bottle Coffee",
		WebsiteURL:   "https://bluebottlecoffee.com",
		Category:     &category,
		Country:      "US",
		Region:       &region,
		City:         &city,
		ScheduledDOW: &dow,
		IsActive:     true,
		CreatedAt:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// SampleQueries returns a small query battery
func SampleQueries() []models.Query {
	return []models.Query{
		{
			Model:       "gpt-4.1",
			Prompt:      `What do you know about "Blue Bottle Coffee" in San Francisco?`,
			PromptType:  models.PromptTypeFactual,
			Temperature: 0.2,
			MaxTokens:   1000,
		},
		{
			Model:       "gpt-4.1",
			Prompt:      `What do people think about "Blue Bottle Coffee" in San Francisco?`,
			PromptType:  models.PromptTypeOpinion,
			Temperature: 0.8,
			MaxTokens:   1000,
		},
		{
			Model:       "gpt-4.1",
			Prompt:      `What are the best coffee shops in San Francisco?`,
			PromptType:  models.PromptTypeRecommendation,
			Temperature: 0.6,
			MaxTokens:   1000,
		},
	}
}

// SampleRecommendationText returns response text with a numbered list that
// mentions the sample business
func SampleRecommendationText() string {
	return `Here are the top coffee shops in San Francisco:

1. Blue Bottle Coffee - known for single-origin pour overs
2. Ritual Coffee Roasters - a Mission district favorite
3. Sightglass Coffee - spacious roastery on Seventh Street

All three are excellent choices.`
}

// SampleOpinionText returns positive-sentiment response text mentioning the
// sample business
func SampleOpinionText() string {
	return `Blue Bottle Coffee is highly regarded in San Francisco. Customers praise its excellent espresso and consistent quality, and many consider it among the best coffee experiences in the city.`
}
