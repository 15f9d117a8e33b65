// internal/providers/mock/provider.go
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/visiq-ai/visiq-workflows/internal/config"
	"github.com/visiq-ai/visiq-workflows/internal/models"
	"github.com/visiq-ai/visiq-workflows/services"
)

// provider synthesizes plausible responses when no real backend is reachable.
// Output shape is deterministic (numbered lists for recommendation prompts,
// the extracted business name always present); wording varies with the random
// source unless variance is disabled.
type provider struct {
	mu       sync.Mutex
	rng      *rand.Rand
	seed     int64
	variance bool
}

var (
	quotedNameRe  = regexp.MustCompile(`"([^"]{2,80})"`)
	properNameRe  = regexp.MustCompile(`([A-Z][A-Za-z0-9&'.-]*(?:\s+[A-Z][A-Za-z0-9&'.-]*)+)`)
	locationRe    = regexp.MustCompile(`\bin ([A-Z][A-Za-z .,'-]+?)(?:[?.!]|$)`)
	promptWordsRe = regexp.MustCompile(`[a-zA-Z']+`)
)

var competitorPool = []string{
	"Premier Choice Group",
	"Summit Partners",
	"BlueStone Services",
	"Apex Solutions",
	"Cornerstone Group",
	"Evergreen Services",
	"Pinnacle Partners",
	"Harborview Co",
	"Golden Gate Collective",
	"Northline Group",
}

var positiveDescriptors = []string{
	"known for reliable service and friendly staff",
	"highly rated by local customers",
	"praised for excellent quality and fair pricing",
	"a trusted name with a strong reputation",
	"popular for its professional and responsive team",
	"well reviewed for consistent results",
}

// NewProvider builds the mock client from config. Seed 0 means time-seeded.
func NewProvider(cfg *config.Config) services.ModelClient {
	seed := cfg.Mock.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewProviderWithRand(rand.New(rand.NewSource(seed)), seed, cfg.Mock.Variance)
}

// NewProviderWithRand injects the random source directly so tests can assert
// reproducible output
func NewProviderWithRand(rng *rand.Rand, seed int64, variance bool) services.ModelClient {
	return &provider{
		rng:      rng,
		seed:     seed,
		variance: variance,
	}
}

func (p *provider) GetProviderName() string {
	return "mock"
}

func (p *provider) IsConfigured() bool {
	return true
}

func (p *provider) Call(ctx context.Context, query models.Query) (*models.RawResponse, error) {
	started := time.Now()

	rng := p.randFor(query.Prompt)

	business := extractBusinessName(query.Prompt)
	location := extractLocation(query.Prompt)

	var content string
	switch classifyPrompt(query.Prompt) {
	case models.PromptTypeRecommendation:
		content = p.recommendationResponse(rng, business, location)
	case models.PromptTypeOpinion:
		content = p.opinionResponse(rng, business, location)
	default:
		content = p.factualResponse(rng, business, location)
	}

	tokens := len(promptWordsRe.FindAllString(content, -1))

	return &models.RawResponse{
		Content:        content,
		TokensUsed:     tokens,
		OutputTokens:   tokens,
		Model:          query.Model,
		RequestID:      fmt.Sprintf("mock-%08x", rng.Uint32()),
		FromFallback:   true,
		ProcessingTime: time.Since(started),
	}, nil
}

// randFor returns the random source for one call. With variance on, draws
// come from the shared stream so output differs call to call; with variance
// off, the source is derived from seed+prompt so identical prompts always
// produce identical text.
func (p *provider) randFor(prompt string) *rand.Rand {
	if p.variance {
		p.mu.Lock()
		seed := p.rng.Int63()
		p.mu.Unlock()
		return rand.New(rand.NewSource(seed))
	}

	h := fnv.New64a()
	h.Write([]byte(prompt))
	return rand.New(rand.NewSource(p.seed ^ int64(h.Sum64())))
}

// classifyPrompt infers the prompt style from its text alone; the caller's
// declared prompt type is deliberately ignored so fallbacks behave the same
// for hand-written prompts.
func classifyPrompt(prompt string) models.PromptType {
	lower := strings.ToLower(prompt)

	recommendationWords := []string{"recommend", "best ", "top ", "suggest", "options", "alternatives", "should i"}
	for _, word := range recommendationWords {
		if strings.Contains(lower, word) {
			return models.PromptTypeRecommendation
		}
	}

	opinionWords := []string{"think", "opinion", "review", "reputation", "feel about", "how good", "rate "}
	for _, word := range opinionWords {
		if strings.Contains(lower, word) {
			return models.PromptTypeOpinion
		}
	}

	return models.PromptTypeFactual
}

func extractBusinessName(prompt string) string {
	if match := quotedNameRe.FindStringSubmatch(prompt); match != nil {
		return strings.TrimSpace(match[1])
	}
	if match := properNameRe.FindStringSubmatch(prompt); match != nil {
		return strings.TrimSpace(match[1])
	}
	return "the business"
}

func extractLocation(prompt string) string {
	if match := locationRe.FindStringSubmatch(prompt); match != nil {
		return strings.TrimSpace(strings.TrimRight(match[1], " .,"))
	}
	return "your area"
}

func (p *provider) factualResponse(rng *rand.Rand, business, location string) string {
	openers := []string{
		"%s is a business operating in %s.",
		"%s serves customers in and around %s.",
		"Based on available information, %s is an established business in %s.",
	}
	details := []string{
		"It offers a range of services to local customers and has been active in the area for several years.",
		"The business maintains regular hours and handles both walk-in and scheduled appointments.",
		"It is a mid-sized operation with an established customer base in the region.",
	}
	closers := []string{
		"Specific offerings and pricing are best confirmed directly with the business.",
		"More detail on its services is available through its website and local listings.",
	}

	return fmt.Sprintf(openers[rng.Intn(len(openers))], business, location) + " " +
		details[rng.Intn(len(details))] + " " +
		closers[rng.Intn(len(closers))]
}

func (p *provider) opinionResponse(rng *rand.Rand, business, location string) string {
	sentiments := []string{
		"%s has a generally positive reputation in %s. Customers describe the staff as friendly and professional, and reviews frequently mention reliable service and good quality work.",
		"Opinions on %s in %s are largely favorable. Many reviewers call it a trusted choice, though a few mention average wait times.",
		"%s is well regarded in %s. Feedback highlights professional staff and consistent quality, with most customers saying they would recommend it.",
	}
	return fmt.Sprintf(sentiments[rng.Intn(len(sentiments))], business, location)
}

func (p *provider) recommendationResponse(rng *rand.Rand, business, location string) string {
	targetPosition := 1 + rng.Intn(3)
	listSize := 4 + rng.Intn(2)

	competitors := p.pickCompetitors(rng, listSize-1)

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the top options in %s:\n\n", location)

	competitorIdx := 0
	for i := 1; i <= listSize; i++ {
		name := ""
		if i == targetPosition {
			name = business
		} else {
			name = competitors[competitorIdx]
			competitorIdx++
		}
		fmt.Fprintf(&b, "%d. %s - %s\n", i, name, positiveDescriptors[rng.Intn(len(positiveDescriptors))])
	}

	b.WriteString("\nAll of these are solid choices; the best fit depends on your specific needs.")
	return b.String()
}

// pickCompetitors draws n distinct names from the pool in shuffled order
func (p *provider) pickCompetitors(rng *rand.Rand, n int) []string {
	indices := rng.Perm(len(competitorPool))
	if n > len(indices) {
		n = len(indices)
	}
	picked := make([]string, 0, n)
	for _, idx := range indices[:n] {
		picked = append(picked, competitorPool[idx])
	}
	return picked
}
