// services/leaderboard_service.go
package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// leaderboardService builds the competitive leaderboard from recommendation
// query results. Pure; no I/O.
type leaderboardService struct{}

// NewLeaderboardService creates the leaderboard builder
func NewLeaderboardService() LeaderboardService {
	return &leaderboardService{}
}

type competitorAccumulator struct {
	name              string
	mentions          int
	appearsWithTarget int
	positionSum       int
	positionCount     int
}

// Build considers only error-free recommendation results. With none, the
// returned leaderboard is zeroed apart from the target name.
func (s *leaderboardService) Build(results []models.AnalysisResult, businessName string) models.CompetitiveLeaderboard {
	leaderboard := models.CompetitiveLeaderboard{
		TargetBusiness: models.TargetStanding{Name: businessName},
		Competitors:    []models.CompetitorStanding{},
	}

	accumulators := make(map[string]*competitorAccumulator)
	var discovered []string // lowercase keys, first-seen order

	targetRankSum := 0
	targetRanked := 0

	for _, result := range results {
		if result.PromptType != models.PromptTypeRecommendation || result.Failed() {
			continue
		}
		leaderboard.TotalRecommendationQueries++

		if result.Mentioned {
			leaderboard.TargetBusiness.MentionCount++
			if result.RankPosition != nil {
				targetRankSum += *result.RankPosition
				targetRanked++
			}
		}

		for _, competitor := range result.CompetitorMentions {
			key := strings.ToLower(competitor)
			acc := accumulators[key]
			if acc == nil {
				acc = &competitorAccumulator{name: competitor}
				accumulators[key] = acc
				discovered = append(discovered, key)
			}
			acc.mentions++
			if result.Mentioned {
				acc.appearsWithTarget++
			}
			if position := estimateListPosition(result.RawResponse, competitor); position > 0 {
				acc.positionSum += position
				acc.positionCount++
			}
		}
	}

	if targetRanked > 0 {
		mean := float64(targetRankSum) / float64(targetRanked)
		leaderboard.TargetBusiness.AvgPosition = &mean
	}

	for _, key := range discovered {
		acc := accumulators[key]
		standing := models.CompetitorStanding{
			Name:              acc.name,
			MentionCount:      acc.mentions,
			AppearsWithTarget: acc.appearsWithTarget,
		}
		if acc.positionCount > 0 {
			standing.AvgPosition = float64(acc.positionSum) / float64(acc.positionCount)
		}
		leaderboard.Competitors = append(leaderboard.Competitors, standing)
	}

	// Stable sort keeps first-seen order for equal mention counts
	sort.SliceStable(leaderboard.Competitors, func(i, j int) bool {
		return leaderboard.Competitors[i].MentionCount > leaderboard.Competitors[j].MentionCount
	})
	if len(leaderboard.Competitors) > 10 {
		leaderboard.Competitors = leaderboard.Competitors[:10]
	}

	return leaderboard
}

// estimateListPosition returns the numeral prefixing the first list line that
// contains the competitor's name, or 0 when no such line exists
func estimateListPosition(text, name string) int {
	nameLower := strings.ToLower(name)
	for _, line := range strings.Split(text, "\n") {
		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if !strings.Contains(strings.ToLower(m[2]), nameLower) {
			continue
		}
		if position, err := strconv.Atoi(m[1]); err == nil && position > 0 {
			return position
		}
	}
	return 0
}
