// services/prompt_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// promptService is the default prompt collaborator: three fixed templates
// filled from the business profile. Swappable behind PromptService for
// deployments that generate prompts elsewhere.
type promptService struct{}

// NewPromptService creates the template-based prompt generator
func NewPromptService() PromptService {
	return &promptService{}
}

func (s *promptService) GeneratePrompts(ctx context.Context, business models.BusinessContext) (*models.PromptSet, error) {
	if strings.TrimSpace(business.Name) == "" {
		return nil, fmt.Errorf("business name is required to generate prompts")
	}

	location := formatLocationForPrompt(business.Location)

	category := "business"
	if business.Category != nil && strings.TrimSpace(*business.Category) != "" {
		category = strings.ToLower(strings.TrimSpace(*business.Category))
	}

	facts := factsClause(business.CrawlFacts)

	factual := fmt.Sprintf(
		`What do you know about the %s "%s" in %s? Describe what it offers and anything notable about it.%s`,
		category, business.Name, location, facts,
	)
	opinion := fmt.Sprintf(
		`What do people think about "%s" in %s? Summarize its reputation, strengths, and weaknesses.%s`,
		business.Name, location, facts,
	)
	// No identifying facts here: the point is whether the business surfaces
	// unprompted among its competitors
	recommendation := fmt.Sprintf(
		`What are the best %s in %s? Give a ranked list of your top recommendations.`,
		pluralize(category), location,
	)

	return &models.PromptSet{
		Factual:        factual,
		Opinion:        opinion,
		Recommendation: recommendation,
	}, nil
}

// factsClause renders up to three crawl facts as a context sentence
func factsClause(facts []string) string {
	var cleaned []string
	for _, fact := range facts {
		fact = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(fact), "."))
		if fact == "" {
			continue
		}
		cleaned = append(cleaned, fact)
		if len(cleaned) == 3 {
			break
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return fmt.Sprintf(" For context: %s.", strings.Join(cleaned, "; "))
}

func pluralize(noun string) string {
	switch {
	case strings.HasSuffix(noun, "s"), strings.HasSuffix(noun, "x"),
		strings.HasSuffix(noun, "ch"), strings.HasSuffix(noun, "sh"):
		return noun + "es"
	case strings.HasSuffix(noun, "y") && len(noun) > 1 && !strings.ContainsRune("aeiou", rune(noun[len(noun)-2])):
		return noun[:len(noun)-1] + "ies"
	default:
		return noun + "s"
	}
}
