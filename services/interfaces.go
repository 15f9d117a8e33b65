// services/interfaces.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// ModelClient sends one prompt to one named model backend and returns the raw
// response. Implementations own rate limiting and circuit breaking for their
// backend; retry policy lives in the dispatcher.
type ModelClient interface {
	Call(ctx context.Context, query models.Query) (*models.RawResponse, error)
	GetProviderName() string
	IsConfigured() bool
}

// ClientFactory resolves a model name to a configured ModelClient. Returns an
// error for unknown models or missing credentials; the dispatcher treats that
// as "fall back to mock".
type ClientFactory func(modelName string) (ModelClient, error)

// QueryDispatcher runs a query battery against the model backends. The returned
// slice always has the same length and order as the input; individual queries
// never fail (fallback responses are substituted instead).
type QueryDispatcher interface {
	Dispatch(ctx context.Context, queries []models.Query) []models.RawResponse
}

// ResponseAnalyzer turns one raw response into the canonical per-query record.
// Total: internal failures come back as a failed AnalysisResult, never a panic.
type ResponseAnalyzer interface {
	Analyze(query models.Query, response models.RawResponse, business models.BusinessContext) models.AnalysisResult
}

// AnalyticsService reduces analysis results into visibility metrics and
// monitoring stats. Both operations are pure and total.
type AnalyticsService interface {
	Aggregate(results []models.AnalysisResult) models.VisibilityMetrics
	GetProcessingStats(results []models.AnalysisResult) models.ProcessingStats
}

// LeaderboardService builds the competitive leaderboard from recommendation-type results
type LeaderboardService interface {
	Build(results []models.AnalysisResult, businessName string) models.CompetitiveLeaderboard
}

// PromptService is the prompt-template collaborator: three prompt strings per
// business. Consumed as an opaque generator; the bundled implementation is
// template-based.
type PromptService interface {
	GeneratePrompts(ctx context.Context, business models.BusinessContext) (*models.PromptSet, error)
}

// FingerprintService is the orchestration entry point
type FingerprintService interface {
	Fingerprint(ctx context.Context, business models.BusinessContext) (*models.FingerprintAnalysis, error)
	GetProcessingStats(results []models.AnalysisResult) models.ProcessingStats
	GetCapabilities() models.Capabilities
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int) float64
}

// BusinessStore loads stored businesses for workflow runs
type BusinessStore interface {
	GetBusiness(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	GetBusinessIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error)
	MarkBusinessRun(ctx context.Context, businessID uuid.UUID) error
}

// FingerprintStore persists completed fingerprint analyses. The pipeline never
// reads or writes through it; workflows do.
type FingerprintStore interface {
	SaveAnalysis(ctx context.Context, analysis *models.FingerprintAnalysis) error
	GetLatestAnalysis(ctx context.Context, businessID uuid.UUID) (*models.FingerprintAnalysis, error)
}

// ProviderCallError is a model backend failure with enough shape to classify
// it as retryable or not. StatusCode 0 means the call never got an HTTP
// response (network failure). BreakerOpen marks calls rejected by a tripped
// circuit breaker.
type ProviderCallError struct {
	Provider    string
	StatusCode  int
	BreakerOpen bool
	Err         error
}

func (e *ProviderCallError) Error() string {
	if e.BreakerOpen {
		return fmt.Sprintf("%s circuit breaker open: %v", e.Provider, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s call failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying. Network errors,
// 5xx and 429 are transient; other 4xx are permanent. Breaker rejections are
// permanent so the dispatcher falls back instead of hammering an open breaker.
func (e *ProviderCallError) Transient() bool {
	if e.BreakerOpen {
		return false
	}
	if e.StatusCode == 0 {
		return true
	}
	if e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}

// IsTransientCallError classifies any error from a ModelClient. Errors that
// are not ProviderCallErrors are treated as network-level and retried.
func IsTransientCallError(err error) bool {
	var callErr *ProviderCallError
	if errors.As(err, &callErr) {
		return callErr.Transient()
	}
	return true
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
