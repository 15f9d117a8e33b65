// workflows/fingerprint_processor.go
package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

type FingerprintProcessor struct {
	fingerprintService services.FingerprintService
	businessStore      services.BusinessStore
	fingerprintStore   services.FingerprintStore
	client             inngestgo.Client
	cfg                *config.Config
}

// NewFingerprintProcessor creates the event-driven fingerprint workflow.
// businessStore and fingerprintStore may be nil when no database is
// configured; the pipeline still runs, results just aren't persisted.
func NewFingerprintProcessor(
	fingerprintService services.FingerprintService,
	businessStore services.BusinessStore,
	fingerprintStore services.FingerprintStore,
	cfg *config.Config,
) *FingerprintProcessor {
	return &FingerprintProcessor{
		fingerprintService: fingerprintService,
		businessStore:      businessStore,
		fingerprintStore:   fingerprintStore,
		cfg:                cfg,
	}
}

func (p *FingerprintProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// FingerprintRequestedEvent is the payload of business.fingerprint.requested.
// Either business_id (stored business) or an inline name must be set.
type FingerprintRequestedEvent struct {
	BusinessID  string `json:"business_id,omitempty"`
	Name        string `json:"name,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
	Country     string `json:"country,omitempty"`
	Region      string `json:"region,omitempty"`
	City        string `json:"city,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

func (p *FingerprintProcessor) ProcessFingerprint() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-business-fingerprint",
			Name:    "Process Business Fingerprint - LLM Visibility Pipeline",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("business.fingerprint.requested", nil),
		func(ctx context.Context, input inngestgo.Input[FingerprintRequestedEvent]) (any, error) {
			event := input.Event.Data
			fmt.Printf("[ProcessFingerprint] Starting visibility pipeline (business_id=%q name=%q triggered_by=%q)\n",
				event.BusinessID, event.Name, event.TriggeredBy)

			// Step 1: Resolve the business context (stored or inline)
			business, err := step.Run(ctx, "load-business", func(ctx context.Context) (*models.BusinessContext, error) {
				return p.resolveBusiness(ctx, event)
			})
			if err != nil {
				_ = ReportPipelineFailureToSlack("fingerprint", event.BusinessID, event.Name, "load_business", err)
				return nil, fmt.Errorf("load business step failed: %w", err)
			}

			// Step 2: Run the full fingerprint pipeline
			analysis, err := step.Run(ctx, "run-fingerprint", func(ctx context.Context) (*models.FingerprintAnalysis, error) {
				return p.fingerprintService.Fingerprint(ctx, *business)
			})
			if err != nil {
				_ = ReportPipelineFailureToSlack("fingerprint", event.BusinessID, business.Name, "run_fingerprint", err)
				return nil, fmt.Errorf("run fingerprint step failed: %w", err)
			}

			// Step 3: Persist when storage is configured. Persistence failure
			// doesn't fail the workflow; the analysis is still returned.
			persisted := false
			if p.fingerprintStore != nil {
				_, err := step.Run(ctx, "persist-analysis", func(ctx context.Context) (interface{}, error) {
					if err := p.fingerprintStore.SaveAnalysis(ctx, analysis); err != nil {
						return nil, fmt.Errorf("failed to save analysis: %w", err)
					}
					if business.BusinessID != nil && p.businessStore != nil {
						if err := p.businessStore.MarkBusinessRun(ctx, *business.BusinessID); err != nil {
							fmt.Printf("[ProcessFingerprint] Warning: failed to mark business run: %v\n", err)
						}
					}
					fmt.Printf("[ProcessFingerprint] ✅ Persisted analysis %s\n", analysis.FingerprintID)
					return map[string]interface{}{
						"fingerprint_id": analysis.FingerprintID.String(),
					}, nil
				})
				if err != nil {
					fmt.Printf("[ProcessFingerprint] Warning: persist step failed for %s: %v\n", analysis.FingerprintID, err)
				} else {
					persisted = true
				}
			}

			fmt.Printf("[ProcessFingerprint] 🎉 Pipeline completed for %s: score %d\n",
				analysis.BusinessName, analysis.Metrics.VisibilityScore)

			return map[string]interface{}{
				"fingerprint_id":     analysis.FingerprintID.String(),
				"business_name":      analysis.BusinessName,
				"visibility_score":   analysis.Metrics.VisibilityScore,
				"mention_rate":       analysis.Metrics.MentionRate,
				"total_queries":      analysis.Metrics.TotalQueries,
				"successful_queries": analysis.Metrics.SuccessfulQueries,
				"competitors_found":  len(analysis.CompetitiveLeaderboard.Competitors),
				"total_cost":         analysis.TotalCost,
				"persisted":          persisted,
				"status":             "completed",
			}, nil
		},
	)

	if err != nil {
		panic(fmt.Sprintf("Failed to create ProcessFingerprint function: %v", err))
	}

	return fn
}

func (p *FingerprintProcessor) resolveBusiness(ctx context.Context, event FingerprintRequestedEvent) (*models.BusinessContext, error) {
	if event.BusinessID != "" {
		if p.businessStore == nil {
			return nil, fmt.Errorf("event has business_id but no business store is configured")
		}
		businessID, err := uuid.Parse(event.BusinessID)
		if err != nil {
			return nil, fmt.Errorf("invalid business ID: %w", err)
		}
		business, err := p.businessStore.GetBusiness(ctx, businessID)
		if err != nil {
			return nil, fmt.Errorf("failed to load business %s: %w", businessID, err)
		}
		businessContext := business.Context()
		return &businessContext, nil
	}

	if strings.TrimSpace(event.Name) == "" {
		return nil, fmt.Errorf("event needs either business_id or an inline business name")
	}

	business := models.BusinessContext{
		Name: strings.TrimSpace(event.Name),
		URL:  strings.TrimSpace(event.URL),
	}
	if event.Category != "" {
		category := event.Category
		business.Category = &category
	}
	if event.Country != "" || event.Region != "" || event.City != "" {
		location := models.Location{Country: event.Country}
		if event.Region != "" {
			region := event.Region
			location.Region = &region
		}
		if event.City != "" {
			city := event.City
			location.City = &city
		}
		business.Location = &location
	}
	return &business, nil
}
