package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/internal/providers"
	"github.com/visiq-ai/visiq-workflows/internal/providers/mock"
	"github.com/visiq-ai/visiq-workflows/services"
)

// Runs one fingerprint end-to-end and prints the result. With -real it calls
// the configured model backends; by default everything goes through the mock
// provider so the tool works without API keys.
func main() {
	name := flag.String("name", "Blue Bottle Coffee", "business name to fingerprint")
	url := flag.String("url", "https://bluebottlecoffee.com", "business website URL")
	category := flag.String("category", "Coffee Shop", "business category")
	city := flag.String("city", "San Francisco", "business city")
	region := flag.String("region", "California", "business region/state")
	country := flag.String("country", "US", "business country code")
	real := flag.Bool("real", false, "call real model backends instead of the mock provider")
	asJSON := flag.Bool("json", false, "print the full analysis as JSON")
	flag.Parse()

	fmt.Println("🧪 Visibility Fingerprint Smoke Test")
	fmt.Println(strings.Repeat("=", 50))

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err == nil {
			fmt.Println("✅ Loaded dev.env file")
		} else {
			fmt.Println("⚠️  No .env file found, using environment variables")
		}
	} else {
		fmt.Println("✅ Loaded .env file")
	}

	cfg := config.Load()
	if !*real {
		cfg.Mock.ForceMock = true
	}

	fmt.Println("\n📋 Test Configuration:")
	fmt.Printf("  - Business: %s (%s, %s)\n", *name, *city, *country)
	fmt.Printf("  - Models: %v\n", cfg.Models)
	fmt.Printf("  - Mock mode: %v\n", cfg.Mock.ForceMock)
	fmt.Println()

	costService := services.NewCostService()
	factory := func(modelName string) (services.ModelClient, error) {
		return providers.NewProvider(modelName, cfg, costService)
	}

	dispatcher := services.NewQueryDispatcher(factory, mock.NewProvider(cfg), nil, cfg.Dispatch)
	fingerprintService := services.NewFingerprintService(
		cfg,
		services.NewPromptService(),
		dispatcher,
		services.NewResponseAnalyzer(),
		services.NewAnalyticsService(),
		services.NewLeaderboardService(),
	)

	business := models.BusinessContext{
		Name:     *name,
		URL:      *url,
		Category: category,
		Location: &models.Location{
			Country: *country,
			Region:  region,
			City:    city,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	analysis, err := fingerprintService.Fingerprint(ctx, business)
	if err != nil {
		fmt.Printf("❌ Fingerprint failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			fmt.Printf("❌ Failed to marshal analysis: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	metrics := analysis.Metrics
	fmt.Println("\n📊 Visibility Metrics:")
	fmt.Printf("  - Visibility score:  %d/100\n", metrics.VisibilityScore)
	fmt.Printf("  - Mention rate:      %.1f%%\n", metrics.MentionRate)
	fmt.Printf("  - Sentiment score:   %.2f\n", metrics.SentimentScore)
	fmt.Printf("  - Confidence level:  %.2f\n", metrics.ConfidenceLevel)
	if metrics.AvgRankPosition != nil {
		fmt.Printf("  - Avg rank position: %.1f\n", *metrics.AvgRankPosition)
	} else {
		fmt.Printf("  - Avg rank position: n/a\n")
	}
	fmt.Printf("  - Queries:           %d/%d successful\n", metrics.SuccessfulQueries, metrics.TotalQueries)
	fmt.Printf("  - Total cost:        $%.4f\n", analysis.TotalCost)
	fmt.Printf("  - Processing time:   %s\n", analysis.ProcessingTime.Round(time.Millisecond))

	leaderboard := analysis.CompetitiveLeaderboard
	fmt.Printf("\n🏆 Competitive Leaderboard (%d recommendation queries):\n", leaderboard.TotalRecommendationQueries)
	target := leaderboard.TargetBusiness
	if target.AvgPosition != nil {
		fmt.Printf("  Target: %s - %d mentions, avg position %.1f\n", target.Name, target.MentionCount, *target.AvgPosition)
	} else {
		fmt.Printf("  Target: %s - %d mentions, never ranked\n", target.Name, target.MentionCount)
	}
	for i, competitor := range leaderboard.Competitors {
		fmt.Printf("  %2d. %s - %d mentions, avg position %.1f, with target %d×\n",
			i+1, competitor.Name, competitor.MentionCount, competitor.AvgPosition, competitor.AppearsWithTarget)
	}

	stats := fingerprintService.GetProcessingStats(analysis.LLMResults)
	fmt.Println("\n🔬 Per-Model Performance:")
	for model, modelStats := range stats.ModelPerformance {
		fmt.Printf("  - %s: %d queries, %d mentions, avg confidence %.2f\n",
			model, modelStats.Queries, modelStats.Mentions, modelStats.AvgConfidence)
	}

	fmt.Println("\n✅ Done")
}
