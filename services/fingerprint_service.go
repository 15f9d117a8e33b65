// services/fingerprint_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/metrics"
	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// Query temperature by prompt type: factual answers should be stable,
// opinions exploratory, recommendations in between.
var temperatureByPromptType = map[models.PromptType]float64{
	models.PromptTypeFactual:        0.2,
	models.PromptTypeOpinion:        0.8,
	models.PromptTypeRecommendation: 0.6,
}

// fingerprintService runs the full pipeline for one business: prompts,
// dispatch, per-response analysis, aggregation, leaderboard.
type fingerprintService struct {
	cfg         *config.Config
	prompts     PromptService
	dispatcher  QueryDispatcher
	analyzer    ResponseAnalyzer
	analytics   AnalyticsService
	leaderboard LeaderboardService
}

// NewFingerprintService wires the pipeline stages together
func NewFingerprintService(
	cfg *config.Config,
	prompts PromptService,
	dispatcher QueryDispatcher,
	analyzer ResponseAnalyzer,
	analytics AnalyticsService,
	leaderboard LeaderboardService,
) FingerprintService {
	return &fingerprintService{
		cfg:         cfg,
		prompts:     prompts,
		dispatcher:  dispatcher,
		analyzer:    analyzer,
		analytics:   analytics,
		leaderboard: leaderboard,
	}
}

// Fingerprint never fails: pipeline-level problems degrade to a zeroed
// analysis so callers and workflows always get a well-formed result.
func (s *fingerprintService) Fingerprint(ctx context.Context, business models.BusinessContext) (*models.FingerprintAnalysis, error) {
	started := time.Now()
	expectedQueries := len(s.cfg.Models) * len(models.AllPromptTypes())

	fmt.Printf("[Fingerprint] 🔍 Starting fingerprint for %s (%d queries expected)\n", business.Name, expectedQueries)

	promptSet, err := s.prompts.GeneratePrompts(ctx, business)
	if err != nil {
		fmt.Printf("[Fingerprint] ❌ Prompt generation failed for %s: %v\n", business.Name, err)
		return s.degradedAnalysis(business, expectedQueries, started), nil
	}
	if len(s.cfg.Models) == 0 {
		fmt.Printf("[Fingerprint] ❌ No models configured, cannot fingerprint %s\n", business.Name)
		return s.degradedAnalysis(business, expectedQueries, started), nil
	}

	queries := s.buildQueries(promptSet)

	responses := s.dispatcher.Dispatch(ctx, queries)

	results := make([]models.AnalysisResult, 0, len(responses))
	totalCost := 0.0
	for i, response := range responses {
		result := s.analyzer.Analyze(queries[i], response, business)
		totalCost += result.Cost
		results = append(results, result)
	}

	analysis := &models.FingerprintAnalysis{
		FingerprintID:          uuid.New(),
		BusinessName:           business.Name,
		Metrics:                s.analytics.Aggregate(results),
		CompetitiveLeaderboard: s.leaderboard.Build(results, business.Name),
		LLMResults:             results,
		TotalCost:              totalCost,
		GeneratedAt:            time.Now().UTC(),
		ProcessingTime:         time.Since(started),
	}
	if business.BusinessID != nil {
		analysis.BusinessID = *business.BusinessID
	}

	metrics.FingerprintDuration.Observe(analysis.ProcessingTime.Seconds())
	metrics.VisibilityScore.WithLabelValues(business.Name).Set(float64(analysis.Metrics.VisibilityScore))

	fmt.Printf("[Fingerprint] ✅ Completed %s: score %d, mention rate %.1f%%, %d/%d successful, cost $%.4f\n",
		business.Name, analysis.Metrics.VisibilityScore, analysis.Metrics.MentionRate,
		analysis.Metrics.SuccessfulQueries, analysis.Metrics.TotalQueries, totalCost)

	return analysis, nil
}

// buildQueries crosses configured models with the three prompt types
func (s *fingerprintService) buildQueries(promptSet *models.PromptSet) []models.Query {
	queries := make([]models.Query, 0, len(s.cfg.Models)*len(models.AllPromptTypes()))
	for _, model := range s.cfg.Models {
		for _, promptType := range models.AllPromptTypes() {
			queries = append(queries, models.Query{
				Model:       model,
				Prompt:      promptSet.Get(promptType),
				PromptType:  promptType,
				Temperature: temperatureByPromptType[promptType],
				MaxTokens:   s.cfg.Dispatch.QueryMaxTokens,
			})
		}
	}
	return queries
}

func (s *fingerprintService) degradedAnalysis(business models.BusinessContext, expectedQueries int, started time.Time) *models.FingerprintAnalysis {
	analysis := &models.FingerprintAnalysis{
		FingerprintID: uuid.New(),
		BusinessName:  business.Name,
		Metrics: models.VisibilityMetrics{
			TotalQueries: expectedQueries,
		},
		CompetitiveLeaderboard: models.CompetitiveLeaderboard{
			TargetBusiness: models.TargetStanding{Name: business.Name},
			Competitors:    []models.CompetitorStanding{},
		},
		LLMResults:     []models.AnalysisResult{},
		GeneratedAt:    time.Now().UTC(),
		ProcessingTime: time.Since(started),
	}
	if business.BusinessID != nil {
		analysis.BusinessID = *business.BusinessID
	}
	return analysis
}

func (s *fingerprintService) GetProcessingStats(results []models.AnalysisResult) models.ProcessingStats {
	return s.analytics.GetProcessingStats(results)
}

func (s *fingerprintService) GetCapabilities() models.Capabilities {
	promptTypes := make([]string, 0, len(models.AllPromptTypes()))
	for _, promptType := range models.AllPromptTypes() {
		promptTypes = append(promptTypes, string(promptType))
	}
	return models.Capabilities{
		Models:         s.cfg.Models,
		PromptTypes:    promptTypes,
		MaxConcurrency: s.cfg.Dispatch.BatchSize,
		CachingEnabled: s.cfg.Cache.Enabled,
	}
}
