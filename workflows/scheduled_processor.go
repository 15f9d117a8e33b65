// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/visiq-ai/visiq-workflows/services"
)

type ScheduledProcessor struct {
	businessStore services.BusinessStore
	client        inngestgo.Client
}

func NewScheduledProcessor(businessStore services.BusinessStore) *ScheduledProcessor {
	return &ScheduledProcessor{
		businessStore: businessStore,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// DailyFingerprintScheduler fans out fingerprint requests for every business
// scheduled on the current weekday
func (p *ScheduledProcessor) DailyFingerprintScheduler() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-fingerprint-scheduler",
			Name: "Daily Fingerprint Scheduler - Weekly Cycle",
		},
		inngestgo.CronTrigger("0 2 * * *"), // Every day at 2 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {

			// Monday is zero
			// Go's logic: Sunday=0, Monday=1, ... Saturday=6
			// Conversion: (time.Now().Weekday() + 6) % 7
			now := time.Now()
			dayOfWeek := (now.Weekday() + 6) % 7

			// Step 1: Get businesses scheduled for this day of the week
			businessIDs, err := step.Run(ctx, "get-scheduled-businesses", func(ctx context.Context) ([]uuid.UUID, error) {
				if p.businessStore == nil {
					return nil, nil
				}
				return p.businessStore.GetBusinessIDsByScheduledDOW(ctx, int(dayOfWeek))
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get scheduled businesses for DOW %d: %w", dayOfWeek, err)
			}

			if len(businessIDs) == 0 {
				return map[string]interface{}{
					"execution_date":         now.Format("2006-01-02"),
					"weekday":                now.Weekday().String(),
					"dow_value":              dayOfWeek,
					"total_businesses_found": 0,
					"message":                fmt.Sprintf("No businesses scheduled for %s (DOW %d)", now.Weekday().String(), dayOfWeek),
				}, nil
			}

			// Step 2: Loop over each business and trigger an idempotent step-run
			// for each, so a workflow retry only re-sends what didn't complete.
			for _, businessID := range businessIDs {
				stepName := fmt.Sprintf("trigger-fingerprint-%s", businessID.String())

				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "business.fingerprint.requested",
						Data: map[string]interface{}{
							"business_id":  businessID.String(),
							"triggered_by": "automatic_scheduler",
						},
					}
					return p.client.Send(ctx, evt)
				})

				if err != nil {
					// Log and continue so one failed send doesn't block the rest
					fmt.Printf("Warning: Failed to send fingerprint event for business %s: %v\n", businessID.String(), err)
				}
			}

			return map[string]interface{}{
				"execution_date":         now.Format("2006-01-02"),
				"weekday":                now.Weekday().String(),
				"dow_value":              dayOfWeek,
				"total_businesses_found": len(businessIDs),
				"businesses_processed":   businessIDs,
				"message":                fmt.Sprintf("Triggered %d fingerprint pipelines for %s (DOW %d)", len(businessIDs), now.Weekday().String(), dayOfWeek),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create daily fingerprint scheduler function: %v\n", err)
	}

	return fn
}
