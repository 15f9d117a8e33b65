package services_test

import (
	"fmt"
	"testing"

	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

func recommendationResult(mentioned bool, rank *int, competitors []string, rawResponse string) models.AnalysisResult {
	return models.AnalysisResult{
		Model:              "gpt-4.1",
		PromptType:         models.PromptTypeRecommendation,
		Mentioned:          mentioned,
		Sentiment:          models.SentimentNeutral,
		Confidence:         0.7,
		RankPosition:       rank,
		CompetitorMentions: competitors,
		RawResponse:        rawResponse,
	}
}

func TestBuildEmptyInput(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	leaderboard := leaderboardService.Build(nil, "Test Business Inc")

	if leaderboard.TargetBusiness.Name != "Test Business Inc" {
		t.Errorf("Build() target name = %q, want %q", leaderboard.TargetBusiness.Name, "Test Business Inc")
	}
	if leaderboard.TargetBusiness.MentionCount != 0 {
		t.Errorf("Build() target mentions = %d, want 0", leaderboard.TargetBusiness.MentionCount)
	}
	if leaderboard.TargetBusiness.AvgPosition != nil {
		t.Errorf("Build() target AvgPosition = %v, want nil", *leaderboard.TargetBusiness.AvgPosition)
	}
	if leaderboard.Competitors == nil || len(leaderboard.Competitors) != 0 {
		t.Errorf("Build() Competitors = %v, want empty slice", leaderboard.Competitors)
	}
	if leaderboard.TotalRecommendationQueries != 0 {
		t.Errorf("Build() TotalRecommendationQueries = %d, want 0", leaderboard.TotalRecommendationQueries)
	}
}

func TestBuildIgnoresNonRecommendationAndFailedResults(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	opinion := models.AnalysisResult{
		Model:              "gpt-4.1",
		PromptType:         models.PromptTypeOpinion,
		Mentioned:          true,
		CompetitorMentions: []string{"Should Not Appear"},
	}
	failed := models.NewFailedAnalysisResult(
		models.Query{Model: "gpt-4.1", PromptType: models.PromptTypeRecommendation},
		"1. Also Hidden\n",
		"timeout",
	)
	valid := recommendationResult(true, nil, []string{"Alpha Plumbing"}, "")

	leaderboard := leaderboardService.Build([]models.AnalysisResult{opinion, failed, valid}, "Test Business Inc")

	if leaderboard.TotalRecommendationQueries != 1 {
		t.Errorf("Build() TotalRecommendationQueries = %d, want 1", leaderboard.TotalRecommendationQueries)
	}
	if len(leaderboard.Competitors) != 1 || leaderboard.Competitors[0].Name != "Alpha Plumbing" {
		t.Errorf("Build() Competitors = %v, want only Alpha Plumbing", leaderboard.Competitors)
	}
}

func TestBuildOrdersByMentionCount(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	results := []models.AnalysisResult{
		recommendationResult(false, nil, []string{"Alpha", "Beta", "Gamma"}, ""),
		recommendationResult(false, nil, []string{"Beta", "Gamma"}, ""),
		recommendationResult(false, nil, []string{"Gamma"}, ""),
	}
	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	wantOrder := []string{"Gamma", "Beta", "Alpha"}
	if len(leaderboard.Competitors) != len(wantOrder) {
		t.Fatalf("Build() returned %d competitors, want %d", len(leaderboard.Competitors), len(wantOrder))
	}
	for i, want := range wantOrder {
		if leaderboard.Competitors[i].Name != want {
			t.Errorf("Build() Competitors[%d] = %q, want %q", i, leaderboard.Competitors[i].Name, want)
		}
	}
	if leaderboard.Competitors[0].MentionCount != 3 {
		t.Errorf("Build() Gamma mentions = %d, want 3", leaderboard.Competitors[0].MentionCount)
	}
}

func TestBuildTiesKeepFirstSeenOrder(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	results := []models.AnalysisResult{
		recommendationResult(false, nil, []string{"First Seen", "Second Seen"}, ""),
		recommendationResult(false, nil, []string{"First Seen", "Second Seen"}, ""),
	}
	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	if len(leaderboard.Competitors) != 2 {
		t.Fatalf("Build() returned %d competitors, want 2", len(leaderboard.Competitors))
	}
	if leaderboard.Competitors[0].Name != "First Seen" || leaderboard.Competitors[1].Name != "Second Seen" {
		t.Errorf("Build() tie order = [%q, %q], want first-seen order",
			leaderboard.Competitors[0].Name, leaderboard.Competitors[1].Name)
	}
}

func TestBuildTruncatesToTen(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	var names []string
	for i := 0; i < 14; i++ {
		names = append(names, fmt.Sprintf("Competitor %c", 'A'+i))
	}
	results := []models.AnalysisResult{recommendationResult(false, nil, names, "")}

	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	if len(leaderboard.Competitors) != 10 {
		t.Errorf("Build() returned %d competitors, want 10", len(leaderboard.Competitors))
	}
}

func TestBuildDedupesCompetitorCasing(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	results := []models.AnalysisResult{
		recommendationResult(false, nil, []string{"Alpha Plumbing"}, ""),
		recommendationResult(false, nil, []string{"ALPHA PLUMBING"}, ""),
	}
	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	if len(leaderboard.Competitors) != 1 {
		t.Fatalf("Build() returned %d competitors, want 1", len(leaderboard.Competitors))
	}
	competitor := leaderboard.Competitors[0]
	if competitor.Name != "Alpha Plumbing" {
		t.Errorf("Build() competitor name = %q, want first-seen casing %q", competitor.Name, "Alpha Plumbing")
	}
	if competitor.MentionCount != 2 {
		t.Errorf("Build() competitor mentions = %d, want 2", competitor.MentionCount)
	}
}

func TestBuildTargetStanding(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	results := []models.AnalysisResult{
		recommendationResult(true, intPtr(1), []string{"Alpha"}, ""),
		recommendationResult(true, intPtr(2), []string{"Alpha"}, ""),
		recommendationResult(false, nil, []string{"Alpha"}, ""),
	}
	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	target := leaderboard.TargetBusiness
	if target.MentionCount != 2 {
		t.Errorf("Build() target mentions = %d, want 2", target.MentionCount)
	}
	if target.AvgPosition == nil {
		t.Fatalf("Build() target AvgPosition = nil, want 1.5")
	}
	if *target.AvgPosition != 1.5 {
		t.Errorf("Build() target AvgPosition = %v, want 1.5", *target.AvgPosition)
	}

	alpha := leaderboard.Competitors[0]
	if alpha.AppearsWithTarget != 2 {
		t.Errorf("Build() AppearsWithTarget = %d, want 2", alpha.AppearsWithTarget)
	}
}

func TestBuildTargetMentionedButNeverRanked(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	results := []models.AnalysisResult{
		recommendationResult(true, nil, nil, ""),
	}
	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	if leaderboard.TargetBusiness.MentionCount != 1 {
		t.Errorf("Build() target mentions = %d, want 1", leaderboard.TargetBusiness.MentionCount)
	}
	if leaderboard.TargetBusiness.AvgPosition != nil {
		t.Errorf("Build() target AvgPosition = %v, want nil", *leaderboard.TargetBusiness.AvgPosition)
	}
}

func TestBuildEstimatesCompetitorPositions(t *testing.T) {
	leaderboardService := services.NewLeaderboardService()

	rawResponse := "1. Alpha Plumbing - the popular choice\n2. Test Business Inc\n3. Beta Drains\n"
	results := []models.AnalysisResult{
		recommendationResult(true, intPtr(2), []string{"Alpha Plumbing", "Beta Drains", "Unlisted Co"}, rawResponse),
	}
	leaderboard := leaderboardService.Build(results, "Test Business Inc")

	positions := map[string]float64{}
	for _, competitor := range leaderboard.Competitors {
		positions[competitor.Name] = competitor.AvgPosition
	}

	if positions["Alpha Plumbing"] != 1 {
		t.Errorf("Build() Alpha Plumbing AvgPosition = %v, want 1", positions["Alpha Plumbing"])
	}
	if positions["Beta Drains"] != 3 {
		t.Errorf("Build() Beta Drains AvgPosition = %v, want 3", positions["Beta Drains"])
	}
	if positions["Unlisted Co"] != 0 {
		t.Errorf("Build() Unlisted Co AvgPosition = %v, want 0 when never listed", positions["Unlisted Co"])
	}
}
