// services/dispatcher_service.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/metrics"
	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// dispatcherService fans a query battery out to model backends in fixed-size
// concurrent batches. Individual queries never surface errors; after retries
// are exhausted (or on permanent failures) the fallback client's response is
// substituted so downstream analysis always has one response per query.
type dispatcherService struct {
	factory  ClientFactory
	fallback ModelClient
	cache    *ResponseCache
	cfg      config.DispatchConfig
	sleep    func(time.Duration)
}

// NewQueryDispatcher creates the production dispatcher. cache may be nil to
// disable response caching.
func NewQueryDispatcher(factory ClientFactory, fallback ModelClient, cache *ResponseCache, cfg config.DispatchConfig) QueryDispatcher {
	return NewQueryDispatcherWithSleep(factory, fallback, cache, cfg, time.Sleep)
}

// NewQueryDispatcherWithSleep injects the sleep function so tests can observe
// cooldowns and retry delays without waiting
func NewQueryDispatcherWithSleep(factory ClientFactory, fallback ModelClient, cache *ResponseCache, cfg config.DispatchConfig, sleep func(time.Duration)) QueryDispatcher {
	return &dispatcherService{
		factory:  factory,
		fallback: fallback,
		cache:    cache,
		cfg:      cfg,
		sleep:    sleep,
	}
}

// Dispatch runs all queries and returns responses in input order. The result
// slice always has exactly one entry per query.
func (s *dispatcherService) Dispatch(ctx context.Context, queries []models.Query) []models.RawResponse {
	results := make([]models.RawResponse, len(queries))
	if len(queries) == 0 {
		return results
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	numBatches := (len(queries) + batchSize - 1) / batchSize

	fmt.Printf("[QueryDispatcher] 🚀 Dispatching %d queries in %d batches of up to %d\n", len(queries), numBatches, batchSize)

	for start := 0; start < len(queries); start += batchSize {
		end := start + batchSize
		if end > len(queries) {
			end = len(queries)
		}
		batchNum := start/batchSize + 1

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = s.runQuery(ctx, queries[idx])
			}(i)
		}
		wg.Wait()

		fmt.Printf("[QueryDispatcher] ✅ Batch %d/%d complete\n", batchNum, numBatches)

		if end < len(queries) && s.cfg.CooldownMs > 0 {
			s.sleep(time.Duration(s.cfg.CooldownMs) * time.Millisecond)
		}
	}

	return results
}

func (s *dispatcherService) runQuery(ctx context.Context, query models.Query) models.RawResponse {
	if s.cache != nil {
		if cached, ok := s.cache.Get(query.Model, query.Prompt); ok {
			fmt.Printf("[QueryDispatcher] ♻️ Cache hit for model %s\n", query.Model)
			cached.Cached = true
			metrics.QueriesTotal.WithLabelValues(query.Model, "cached").Inc()
			return *cached
		}
	}

	client, err := s.factory(query.Model)
	if err != nil {
		fmt.Printf("[QueryDispatcher] ⚠️ No client for model %s, using fallback: %v\n", query.Model, err)
		return s.fallbackResponse(ctx, query)
	}

	response, err := s.callWithRetries(ctx, client, query)
	if err != nil {
		fmt.Printf("[QueryDispatcher] ⚠️ Model %s failed, using fallback: %v\n", query.Model, err)
		return s.fallbackResponse(ctx, query)
	}

	if s.cache != nil && !response.FromFallback {
		s.cache.Put(query.Model, query.Prompt, *response)
	}

	metrics.QueriesTotal.WithLabelValues(query.Model, "success").Inc()
	metrics.TokensTotal.WithLabelValues(query.Model).Add(float64(response.TokensUsed))
	return *response
}

// callWithRetries makes up to MaxRetries attempts against one client. Delays
// follow an exponential schedule with randomization disabled so retry timing
// is predictable. Permanent errors and open breakers abort immediately.
func (s *dispatcherService) callWithRetries(ctx context.Context, client ModelClient, query models.Query) (*models.RawResponse, error) {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = time.Duration(s.cfg.RetryBaseMs) * time.Millisecond
	schedule.Multiplier = 2
	schedule.RandomizationFactor = 0
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	maxAttempts := s.cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := s.callOnce(ctx, client, query)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !IsTransientCallError(err) {
			fmt.Printf("[QueryDispatcher] ⛔ Permanent error from %s, not retrying: %v\n", client.GetProviderName(), err)
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		delay := schedule.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		fmt.Printf("[QueryDispatcher] 🔁 Attempt %d/%d for model %s failed, retrying in %v: %v\n", attempt, maxAttempts, query.Model, delay, err)
		metrics.RetriesTotal.WithLabelValues(query.Model).Inc()
		s.sleep(delay)
	}

	return nil, lastErr
}

func (s *dispatcherService) callOnce(ctx context.Context, client ModelClient, query models.Query) (*models.RawResponse, error) {
	timeout := time.Duration(s.cfg.RequestTimeoutS) * time.Second
	if timeout <= 0 {
		return client.Call(ctx, query)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Call(callCtx, query)
}

func (s *dispatcherService) fallbackResponse(ctx context.Context, query models.Query) models.RawResponse {
	metrics.QueriesTotal.WithLabelValues(query.Model, "fallback").Inc()

	response, err := s.fallback.Call(ctx, query)
	if err != nil || response == nil {
		// The mock client does not fail today; keep a usable shape if that changes
		return models.RawResponse{
			Content:      "",
			Model:        query.Model,
			FromFallback: true,
		}
	}
	response.FromFallback = true
	return *response
}
