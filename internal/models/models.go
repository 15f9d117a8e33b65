// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PromptType selects the prompt template and sampling temperature for a query
type PromptType string

const (
	PromptTypeFactual        PromptType = "factual"
	PromptTypeOpinion        PromptType = "opinion"
	PromptTypeRecommendation PromptType = "recommendation"
)

// AllPromptTypes returns the battery of prompt types in dispatch order
func AllPromptTypes() []PromptType {
	return []PromptType{PromptTypeFactual, PromptTypeOpinion, PromptTypeRecommendation}
}

// Sentiment classification for a mentioned business
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Location represents a geographic location for running queries
type Location struct {
	Country string  `json:"country"`          // Required
	City    *string `json:"city,omitempty"`   // Optional
	Region  *string `json:"region,omitempty"` // Optional (state/region)
}

// BusinessContext is everything we know about the target business before a run
type BusinessContext struct {
	BusinessID *uuid.UUID `json:"business_id,omitempty"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Category   *string    `json:"category,omitempty"`
	Location   *Location  `json:"location,omitempty"`
	CrawlFacts []string   `json:"crawl_facts,omitempty"`
}

// Business is the stored record behind a BusinessContext
type Business struct {
	BusinessID   uuid.UUID  `json:"business_id" db:"business_id"`
	Name         string     `json:"name" db:"name"`
	WebsiteURL   string     `json:"website_url" db:"website_url"`
	Category     *string    `json:"category,omitempty" db:"category"`
	Country      string     `json:"country" db:"country"`
	Region       *string    `json:"region,omitempty" db:"region"`
	City         *string    `json:"city,omitempty" db:"city"`
	ScheduledDOW *int       `json:"scheduled_dow,omitempty" db:"scheduled_dow"` // 0 = Monday
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty" db:"last_run_at"`
}

// Context converts a stored business into the pipeline input shape
func (b *Business) Context() BusinessContext {
	id := b.BusinessID
	return BusinessContext{
		BusinessID: &id,
		Name:       b.Name,
		URL:        b.WebsiteURL,
		Category:   b.Category,
		Location: &Location{
			Country: b.Country,
			Region:  b.Region,
			City:    b.City,
		},
	}
}

// PromptSet is the output of the prompt collaborator: one prompt per type
type PromptSet struct {
	Factual        string `json:"factual"`
	Opinion        string `json:"opinion"`
	Recommendation string `json:"recommendation"`
}

// Get returns the prompt string for the given type
func (p PromptSet) Get(pt PromptType) string {
	switch pt {
	case PromptTypeFactual:
		return p.Factual
	case PromptTypeOpinion:
		return p.Opinion
	case PromptTypeRecommendation:
		return p.Recommendation
	}
	return ""
}

// Query is one prompt bound to one model backend. Immutable once built.
type Query struct {
	Model       string     `json:"model"`
	Prompt      string     `json:"prompt"`
	PromptType  PromptType `json:"prompt_type"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens"`
}

// RawResponse is what a model backend (or the fallback generator) returned for one query
type RawResponse struct {
	Content        string        `json:"content"`
	TokensUsed     int           `json:"tokens_used"`
	InputTokens    int           `json:"input_tokens"`
	OutputTokens   int           `json:"output_tokens"`
	Model          string        `json:"model"`
	RequestID      string        `json:"request_id,omitempty"`
	Cached         bool          `json:"cached"`
	FromFallback   bool          `json:"from_fallback"`
	Cost           float64       `json:"cost"`
	Citations      []string      `json:"citations,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Citation is a URL cited in a response, typed by whether it points at the
// target business's own domain
type Citation struct {
	URL  string `json:"url"`
	Type string `json:"type"` // "primary" or "secondary"
}

// AnalysisResult is the canonical per-query record produced by the analyzer.
// Failed results carry Error and zeroed signal fields; build them only through
// NewFailedAnalysisResult so the invariant holds.
type AnalysisResult struct {
	Model              string        `json:"model"`
	PromptType         PromptType    `json:"prompt_type"`
	Mentioned          bool          `json:"mentioned"`
	Sentiment          Sentiment     `json:"sentiment"`
	Confidence         float64       `json:"confidence"`
	RankPosition       *int          `json:"rank_position,omitempty"` // 1-10 when set
	CompetitorMentions []string      `json:"competitor_mentions"`
	Citations          []Citation    `json:"citations,omitempty"`
	RawResponse        string        `json:"raw_response"`
	TokensUsed         int           `json:"tokens_used"`
	Cost               float64       `json:"cost"`
	Prompt             string        `json:"prompt"`
	ProcessingTime     time.Duration `json:"processing_time"`
	Error              string        `json:"error,omitempty"`
}

// Failed reports whether this result recorded an analysis error. Aggregators
// branch on this instead of inspecting Error directly.
func (r *AnalysisResult) Failed() bool {
	return r.Error != ""
}

// NewFailedAnalysisResult builds the only valid shape for a failed result:
// not mentioned, neutral, zero confidence, no competitors.
func NewFailedAnalysisResult(query Query, rawResponse string, errMsg string) AnalysisResult {
	return AnalysisResult{
		Model:              query.Model,
		PromptType:         query.PromptType,
		Mentioned:          false,
		Sentiment:          SentimentNeutral,
		Confidence:         0,
		RankPosition:       nil,
		CompetitorMentions: []string{},
		RawResponse:        rawResponse,
		Prompt:             query.Prompt,
		Error:              errMsg,
	}
}

// VisibilityMetrics is the aggregate view over one business's analysis results
type VisibilityMetrics struct {
	VisibilityScore   int      `json:"visibility_score"` // 0-100
	MentionRate       float64  `json:"mention_rate"`     // percentage 0-100
	SentimentScore    float64  `json:"sentiment_score"`  // 0-1
	ConfidenceLevel   float64  `json:"confidence_level"` // 0-1
	AvgRankPosition   *float64 `json:"avg_rank_position,omitempty"`
	TotalQueries      int      `json:"total_queries"`
	SuccessfulQueries int      `json:"successful_queries"`
}

// CompetitorStanding is one row of the competitive leaderboard
type CompetitorStanding struct {
	Name              string  `json:"name"`
	MentionCount      int     `json:"mention_count"`
	AvgPosition       float64 `json:"avg_position"` // 0 when never position-estimated
	AppearsWithTarget int     `json:"appears_with_target"`
}

// TargetStanding is the target business's own standing in recommendation queries
type TargetStanding struct {
	Name         string   `json:"name"`
	AvgPosition  *float64 `json:"avg_position,omitempty"`
	MentionCount int      `json:"mention_count"`
}

type CompetitiveLeaderboard struct {
	TargetBusiness             TargetStanding       `json:"target_business"`
	Competitors                []CompetitorStanding `json:"competitors"` // <=10, sorted by mention count
	TotalRecommendationQueries int                  `json:"total_recommendation_queries"`
}

// FingerprintAnalysis is the aggregate root for one fingerprinting run.
// Immutable after the orchestrator returns it.
type FingerprintAnalysis struct {
	FingerprintID          uuid.UUID              `json:"fingerprint_id"`
	BusinessID             uuid.UUID              `json:"business_id"`
	BusinessName           string                 `json:"business_name"`
	Metrics                VisibilityMetrics      `json:"metrics"`
	CompetitiveLeaderboard CompetitiveLeaderboard `json:"competitive_leaderboard"`
	LLMResults             []AnalysisResult       `json:"llm_results"`
	TotalCost              float64                `json:"total_cost"`
	GeneratedAt            time.Time              `json:"generated_at"`
	ProcessingTime         time.Duration          `json:"processing_time"`
}

// ModelStats is the per-model slice of ProcessingStats
type ModelStats struct {
	Queries       int     `json:"queries"`
	Mentions      int     `json:"mentions"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ProcessingStats is the monitoring view over a result set, independent of the
// visibility aggregation
type ProcessingStats struct {
	TotalQueries          int                   `json:"total_queries"`
	SuccessfulQueries     int                   `json:"successful_queries"`
	MentionRate           float64               `json:"mention_rate"`
	AvgConfidence         float64               `json:"avg_confidence"`
	SentimentDistribution map[string]int        `json:"sentiment_distribution"`
	ModelPerformance      map[string]ModelStats `json:"model_performance"`
}

// Capabilities describes what this deployment can do
type Capabilities struct {
	Models         []string `json:"models"`
	PromptTypes    []string `json:"prompt_types"`
	MaxConcurrency int      `json:"max_concurrency"`
	CachingEnabled bool     `json:"caching_enabled"`
}
