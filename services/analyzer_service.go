// services/analyzer_service.go
package services

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

// analyzerService turns raw response text into the canonical per-query record
// using deterministic text heuristics. No model calls happen here.
type analyzerService struct{}

// NewResponseAnalyzer creates the heuristic response analyzer
func NewResponseAnalyzer() ResponseAnalyzer {
	return &analyzerService{}
}

// Analyze is total: any internal panic is recovered into a failed result so
// one malformed response cannot sink a whole fingerprint run.
func (s *analyzerService) Analyze(query models.Query, response models.RawResponse, business models.BusinessContext) (result models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[ResponseAnalyzer] 💥 Recovered while analyzing %s response: %v\n", query.Model, r)
			result = models.NewFailedAnalysisResult(query, response.Content, fmt.Sprintf("analyzer panic: %v", r))
		}
	}()

	variants := buildNameVariants(business.Name)

	mention := detectMention(response.Content, business, variants)
	sentiment := analyzeSentiment(response.Content, mention.Mentioned)
	competitors, competitorConfidence := extractCompetitors(response.Content, variants)

	var rank *int
	if mention.Mentioned {
		rank = extractRank(response.Content, variants)
	}

	citations := extractCitations(response.Content, response.Citations, business.URL)

	confidence := mention.Confidence*0.5 + sentiment.Confidence*0.3 + competitorConfidence*0.2

	return models.AnalysisResult{
		Model:              query.Model,
		PromptType:         query.PromptType,
		Mentioned:          mention.Mentioned,
		Sentiment:          sentiment.Sentiment,
		Confidence:         confidence,
		RankPosition:       rank,
		CompetitorMentions: competitors,
		Citations:          citations,
		RawResponse:        response.Content,
		TokensUsed:         response.TokensUsed,
		Cost:               response.Cost,
		Prompt:             query.Prompt,
		ProcessingTime:     response.ProcessingTime,
	}
}

// ---- business name variants ----

// nameVariants holds the matchable forms of a business name. Substring
// variants match anywhere in the text; the initialism only matches as a whole
// word so short acronyms don't fire inside unrelated words.
type nameVariants struct {
	substrings []string // lowercase, most specific first
	initialism string   // lowercase, empty when the name is a single word
}

// Longest first so "incorporated" strips before "inc"
var legalSuffixes = []string{
	"incorporated", "corporation", "company", "limited",
	"corp", "inc", "llc", "ltd", "co",
}

var leadingArticles = []string{"the ", "a ", "an "}

func buildNameVariants(name string) nameVariants {
	base := strings.ToLower(strings.TrimSpace(name))
	if base == "" {
		return nameVariants{}
	}

	var v nameVariants
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if len(s) >= 2 && !seen[s] {
			seen[s] = true
			v.substrings = append(v.substrings, s)
		}
	}

	add(base)
	stripped := stripLegalSuffix(base)
	add(stripped)

	for _, form := range []string{base, stripped} {
		for _, article := range leadingArticles {
			if strings.HasPrefix(form, article) {
				add(strings.TrimPrefix(form, article))
			}
		}
	}

	for _, form := range append([]string{}, v.substrings...) {
		if strings.Contains(form, "&") {
			add(strings.ReplaceAll(form, "&", "and"))
		}
		if strings.Contains(form, " and ") {
			add(strings.ReplaceAll(form, " and ", " & "))
		}
	}

	v.initialism = initialism(stripped)
	return v
}

func stripLegalSuffix(name string) string {
	trimmed := strings.TrimRight(name, " .,")
	for _, suffix := range legalSuffixes {
		for _, sep := range []string{", ", " "} {
			if strings.HasSuffix(trimmed, sep+suffix) {
				return strings.TrimRight(strings.TrimSuffix(trimmed, sep+suffix), " .,")
			}
		}
	}
	return trimmed
}

func initialism(name string) string {
	words := strings.Fields(name)
	if len(words) < 2 {
		return ""
	}
	var b strings.Builder
	for _, word := range words {
		if word == "&" || word == "and" {
			continue
		}
		r := []rune(word)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() < 2 {
		return ""
	}
	return strings.ToLower(b.String())
}

// matchesVariants reports whether lowercased text refers to the business by
// any substring variant or by whole-word initialism
func matchesVariants(textLower string, v nameVariants) bool {
	for _, variant := range v.substrings {
		if strings.Contains(textLower, variant) {
			return true
		}
	}
	return v.initialism != "" && containsWord(textLower, v.initialism)
}

func containsWord(textLower, word string) bool {
	for _, token := range strings.FieldsFunc(textLower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if token == word {
			return true
		}
	}
	return false
}

// ---- mention detection ----

type mentionResult struct {
	Mentioned  bool
	Confidence float64
	MatchType  string
}

var referentialPhrases = []string{
	"this business", "this company", "the business", "the company",
	"they offer", "their services", "their business", "their staff",
}

// Substring-matched, so "service" also covers "services"
var contextKeywords = []string{
	"service", "reputation", "staff", "customers",
	"reviews", "pricing", "quality", "location", "experience",
}

// detectMention runs the ordered rule pipeline; the first matching rule wins
func detectMention(text string, business models.BusinessContext, v nameVariants) mentionResult {
	textLower := strings.ToLower(text)
	nameLower := strings.ToLower(strings.TrimSpace(business.Name))

	if nameLower != "" && strings.Contains(textLower, nameLower) {
		return mentionResult{Mentioned: true, Confidence: 0.95, MatchType: "exact"}
	}

	for _, variant := range v.substrings {
		if variant == nameLower {
			continue
		}
		if strings.Contains(textLower, variant) {
			return mentionResult{Mentioned: true, Confidence: 0.85, MatchType: "variant"}
		}
	}
	if v.initialism != "" && containsWord(textLower, v.initialism) {
		return mentionResult{Mentioned: true, Confidence: 0.85, MatchType: "variant"}
	}

	if hasContextualMention(textLower, business) {
		return mentionResult{Mentioned: true, Confidence: 0.6, MatchType: "contextual"}
	}

	return mentionResult{Mentioned: false, Confidence: 0.9, MatchType: "none"}
}

// hasContextualMention requires referential language plus at least two
// distinct business-context keywords
func hasContextualMention(textLower string, business models.BusinessContext) bool {
	referential := false
	for _, phrase := range referentialPhrases {
		if strings.Contains(textLower, phrase) {
			referential = true
			break
		}
	}
	if !referential {
		return false
	}

	keywords := append([]string{}, contextKeywords...)
	if business.Category != nil {
		keywords = append(keywords, strings.Fields(strings.ToLower(*business.Category))...)
	}
	if business.Location != nil && business.Location.City != nil {
		keywords = append(keywords, strings.ToLower(*business.Location.City))
	}

	hits := 0
	seen := make(map[string]bool)
	for _, keyword := range keywords {
		if len(keyword) < 3 || seen[keyword] {
			continue
		}
		seen[keyword] = true
		if strings.Contains(textLower, keyword) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}

// ---- sentiment ----

type sentimentResult struct {
	Sentiment  models.Sentiment
	Confidence float64
}

var positiveWords = []string{
	"excellent", "great", "good", "best", "amazing", "outstanding",
	"friendly", "reliable", "trusted", "trustworthy", "professional",
	"quality", "popular", "praised", "fantastic", "wonderful",
	"responsive", "helpful", "affordable", "fair", "favorite",
	"consistent", "skilled", "courteous",
}

var negativeWords = []string{
	"bad", "poor", "terrible", "awful", "worst", "rude", "slow",
	"overpriced", "unreliable", "disappointing", "dirty", "complaints",
	"mediocre", "unprofessional", "scam", "subpar", "unresponsive",
	"inconsistent", "careless",
}

var neutralWords = []string{
	"average", "okay", "ok", "decent", "typical", "standard",
	"moderate", "mixed", "ordinary",
}

var negativeImplicitPhrases = []string{
	"would not recommend", "wouldn't recommend", "avoid", "stay away",
	"look elsewhere",
}

var positiveImplicitPhrases = []string{
	"would recommend", "highly recommend", "worth a visit", "worth trying",
	"worth checking out",
}

// analyzeSentiment scores lexicon hits; with no hits it falls back to
// implicit phrasing, then to a neutral default. Unmentioned responses are
// neutral with confidence 0.5 by contract.
func analyzeSentiment(text string, mentioned bool) sentimentResult {
	if !mentioned {
		return sentimentResult{Sentiment: models.SentimentNeutral, Confidence: 0.5}
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	positive, negative, neutral := 0, 0, 0
	for _, token := range tokens {
		switch {
		case wordInList(token, positiveWords):
			positive++
		case wordInList(token, negativeWords):
			negative++
		case wordInList(token, neutralWords):
			neutral++
		}
	}

	total := positive + negative + neutral
	if total == 0 {
		return implicitSentiment(strings.ToLower(text))
	}

	score := float64(positive-negative) / float64(max(1, total))

	sentiment := models.SentimentNeutral
	if score > 0.3 {
		sentiment = models.SentimentPositive
	} else if score < -0.3 {
		sentiment = models.SentimentNegative
	}

	confidence := 0.6 + math.Abs(score)*0.35
	if confidence > 0.95 {
		confidence = 0.95
	}
	return sentimentResult{Sentiment: sentiment, Confidence: confidence}
}

func implicitSentiment(textLower string) sentimentResult {
	for _, phrase := range negativeImplicitPhrases {
		if strings.Contains(textLower, phrase) {
			return sentimentResult{Sentiment: models.SentimentNegative, Confidence: 0.7}
		}
	}
	for _, phrase := range positiveImplicitPhrases {
		if strings.Contains(textLower, phrase) {
			return sentimentResult{Sentiment: models.SentimentPositive, Confidence: 0.7}
		}
	}
	return sentimentResult{Sentiment: models.SentimentNeutral, Confidence: 0.8}
}

func wordInList(word string, list []string) bool {
	for _, item := range list {
		if word == item {
			return true
		}
	}
	return false
}
