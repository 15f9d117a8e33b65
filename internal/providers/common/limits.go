// internal/providers/common/limits.go
package common

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// CallGuard wraps outbound model calls with a request rate limit and a
// circuit breaker. One guard per backend client; safe for concurrent use.
type CallGuard struct {
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewCallGuard builds a guard for the named backend. rpm <= 0 disables rate
// limiting. The breaker opens after 5 consecutive failures and probes again
// after 30 seconds.
func NewCallGuard(name string, rpm int) *CallGuard {
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Limit(float64(rpm) / 60.0)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &CallGuard{
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
	}
}

// Execute waits for rate-limit clearance, then runs fn under the breaker
func (g *CallGuard) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.breaker.Execute(fn)
}

// IsBreakerOpen reports whether the error came from a tripped breaker rather
// than the backend itself
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
