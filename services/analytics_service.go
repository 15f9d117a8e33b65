// services/analytics_service.go
package services

import (
	"math"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// analyticsService reduces analysis results into visibility metrics and
// processing stats. Pure functions; no I/O.
type analyticsService struct{}

// NewAnalyticsService creates the metrics aggregator
func NewAnalyticsService() AnalyticsService {
	return &analyticsService{}
}

// Aggregate computes the visibility metrics for one result set. Total: empty
// or all-failed input yields zero metrics with a nil average rank.
func (s *analyticsService) Aggregate(results []models.AnalysisResult) models.VisibilityMetrics {
	total := len(results)

	successful := 0
	mentioned := 0
	var confidenceSum, sentimentSum float64
	var rankSum float64
	ranked := 0

	for _, result := range results {
		if result.Failed() {
			continue
		}
		successful++
		confidenceSum += result.Confidence

		if !result.Mentioned {
			continue
		}
		mentioned++
		sentimentSum += sentimentValue(result.Sentiment)
		if result.RankPosition != nil {
			rankSum += float64(*result.RankPosition)
			ranked++
		}
	}

	if successful == 0 {
		return models.VisibilityMetrics{TotalQueries: total}
	}

	mentionRate := float64(mentioned) / float64(successful) * 100

	sentimentScore := 0.5
	if mentioned > 0 {
		sentimentScore = sentimentSum / float64(mentioned)
	}

	confidenceLevel := confidenceSum / float64(successful)

	var avgRank *float64
	if ranked > 0 {
		mean := rankSum / float64(ranked)
		avgRank = &mean
	}

	return models.VisibilityMetrics{
		VisibilityScore:   visibilityScore(mentionRate, sentimentScore, confidenceLevel, avgRank, successful, total),
		MentionRate:       mentionRate,
		SentimentScore:    sentimentScore,
		ConfidenceLevel:   confidenceLevel,
		AvgRankPosition:   avgRank,
		TotalQueries:      total,
		SuccessfulQueries: successful,
	}
}

func sentimentValue(sentiment models.Sentiment) float64 {
	switch sentiment {
	case models.SentimentPositive:
		return 1
	case models.SentimentNegative:
		return 0
	default:
		return 0.5
	}
}

// visibilityScore blends the component scores into a 0-100 integer. The four
// positive terms max out at exactly 100 (40+25+20+15); the failure penalty is
// the only negative term.
func visibilityScore(mentionRate, sentimentScore, confidenceLevel float64, avgRank *float64, successful, total int) int {
	mentionPart := mentionRate / 100 * 40
	sentimentPart := sentimentScore * 25
	confidencePart := confidenceLevel * 20

	rankingPart := 0.0
	if avgRank != nil {
		rankingPart = math.Max(0, 15-(*avgRank-1)*3)
	}

	successPenalty := (1 - float64(successful)/float64(total)) * 10

	raw := mentionPart + sentimentPart + confidencePart + rankingPart - successPenalty
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return int(math.Round(raw))
}

// GetProcessingStats summarizes a result set for monitoring. Failed results
// count toward totals and per-model query counts only.
func (s *analyticsService) GetProcessingStats(results []models.AnalysisResult) models.ProcessingStats {
	stats := models.ProcessingStats{
		TotalQueries:          len(results),
		SentimentDistribution: make(map[string]int),
		ModelPerformance:      make(map[string]models.ModelStats),
	}

	confidenceSums := make(map[string]float64)
	successfulByModel := make(map[string]int)
	var totalConfidence float64
	mentioned := 0

	for _, result := range results {
		modelStats := stats.ModelPerformance[result.Model]
		modelStats.Queries++

		if !result.Failed() {
			stats.SuccessfulQueries++
			totalConfidence += result.Confidence
			confidenceSums[result.Model] += result.Confidence
			successfulByModel[result.Model]++
			stats.SentimentDistribution[string(result.Sentiment)]++
			if result.Mentioned {
				mentioned++
				modelStats.Mentions++
			}
		}

		stats.ModelPerformance[result.Model] = modelStats
	}

	if stats.SuccessfulQueries > 0 {
		stats.MentionRate = float64(mentioned) / float64(stats.SuccessfulQueries) * 100
		stats.AvgConfidence = totalConfidence / float64(stats.SuccessfulQueries)
	}

	for model, count := range successfulByModel {
		if count == 0 {
			continue
		}
		modelStats := stats.ModelPerformance[model]
		modelStats.AvgConfidence = confidenceSums[model] / float64(count)
		stats.ModelPerformance[model] = modelStats
	}

	return stats
}
