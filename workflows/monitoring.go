// workflows/monitoring.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
)

// WeeklyLoadAnalyzer reports how evenly businesses are spread across the
// weekly fingerprint schedule
func (p *ScheduledProcessor) WeeklyLoadAnalyzer() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "weekly-load-analyzer",
			Name: "Analyze Weekly Fingerprint Load Distribution",
		},
		inngestgo.CronTrigger("0 0 * * 0"), // Every Sunday at midnight
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			distribution, err := step.Run(ctx, "get-weekday-distribution", func(ctx context.Context) (map[string]int, error) {
				return p.businessCountByWeekday(ctx)
			})
			if err != nil {
				return nil, err
			}

			if len(distribution) == 0 {
				return map[string]interface{}{
					"message": "No database configured, nothing to analyze",
				}, nil
			}

			var total int
			for _, count := range distribution {
				total += count
			}
			avgPerDay := total / 7

			// Find days with high/low load
			highLoadDays := []string{}
			lowLoadDays := []string{}

			if avgPerDay > 0 {
				for day, count := range distribution {
					variance := float64(count-avgPerDay) / float64(avgPerDay) * 100
					if variance > 20 {
						highLoadDays = append(highLoadDays, fmt.Sprintf("%s: %d businesses (+%.1f%%)", day, count, variance))
					} else if variance < -20 {
						lowLoadDays = append(lowLoadDays, fmt.Sprintf("%s: %d businesses (%.1f%%)", day, count, variance))
					}
				}
			}

			return map[string]interface{}{
				"total_businesses":       total,
				"avg_businesses_per_day": avgPerDay,
				"distribution":           distribution,
				"high_load_days":         highLoadDays,
				"low_load_days":          lowLoadDays,
				"recommendation":         generateLoadRecommendation(distribution, avgPerDay),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create weekly load analyzer function: %v\n", err)
	}

	return fn
}

// businessCountByWeekday queries the schedule index one weekday at a time.
// Returns an empty map when no store is configured.
func (p *ScheduledProcessor) businessCountByWeekday(ctx context.Context) (map[string]int, error) {
	if p.businessStore == nil {
		return map[string]int{}, nil
	}

	distribution := make(map[string]int, 7)
	for dow := 0; dow < 7; dow++ {
		ids, err := p.businessStore.GetBusinessIDsByScheduledDOW(ctx, dow)
		if err != nil {
			return nil, fmt.Errorf("failed to count businesses for DOW %d: %w", dow, err)
		}
		distribution[weekdayName(dow)] = len(ids)
	}
	return distribution, nil
}

// weekdayName converts the Monday-zero schedule value back to a display name
func weekdayName(dow int) string {
	return time.Weekday((dow + 1) % 7).String()
}

func generateLoadRecommendation(distribution map[string]int, avg int) string {
	if avg <= 0 {
		return "Not enough businesses scheduled to analyze distribution"
	}

	maxVariance := 0.0
	for _, count := range distribution {
		variance := float64(abs(count-avg)) / float64(avg)
		if variance > maxVariance {
			maxVariance = variance
		}
	}

	if maxVariance < 0.2 {
		return "Load is well distributed across weekdays"
	} else if maxVariance < 0.5 {
		return "Load distribution is acceptable but could be improved"
	}
	return "Consider rebalancing scheduled weekdays for heavy days"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
