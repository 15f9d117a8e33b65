// services/competitor_extraction.go
package services

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
	"mvdan.cc/xurls/v2"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

var (
	numberedLineRe = regexp.MustCompile(`^\s*(\d{1,2})[.)]\s+(.+)$`)
	bulletLineRe   = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
	boldMarkRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)

	urlExtractor = xurls.Strict()
)

// Ordinal phrasings that state a rank directly. Only evaluated on lines that
// already mention the business so a "Top 5:" header can't rank it.
var ordinalRankRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)#(\d{1,2})\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\s+place\b`),
	regexp.MustCompile(`(?i)\btop\s+(\d{1,2})\b`),
	regexp.MustCompile(`(?i)\branked\s+#?(\d{1,2})\b`),
	regexp.MustCompile(`(?i)\bposition\s+(\d{1,2})\b`),
)

// Whole-phrase rejects: generic list filler that is never a business name
var genericCandidateDenylist = map[string]bool{
	"business": true, "businesses": true, "company": true, "companies": true,
	"service": true, "services": true, "option": true, "options": true,
	"choice": true, "choices": true, "alternative": true, "alternatives": true,
	"others": true, "other options": true, "local businesses": true,
	"many others": true, "various options": true, "none": true, "unknown": true,
}

// Known non-business entities that show up in model responses
var knownEntityDenylist = map[string]bool{
	"google": true, "bing": true, "yahoo": true, "duckduckgo": true,
	"yelp": true, "tripadvisor": true, "facebook": true, "instagram": true,
	"twitter": true, "linkedin": true, "youtube": true, "reddit": true,
	"google maps": true, "chatgpt": true, "claude": true, "gemini": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

// First words that mark a narrative sentence rather than a name
var narrativeStarters = map[string]bool{
	"and": true, "or": true, "but": true, "so": true, "if": true,
	"when": true, "while": true, "because": true, "although": true,
	"i": true, "we": true, "you": true, "they": true, "he": true,
	"she": true, "it": true, "this": true, "that": true, "these": true,
	"those": true, "there": true, "here": true,
	"can": true, "could": true, "will": true, "would": true, "should": true,
	"may": true, "might": true, "must": true,
	"please": true, "also": true, "however": true, "additionally": true,
	"finally": true, "overall": true, "remember": true, "consider": true,
}

var recommendationPhrasings = []string{
	"recommend", "best", "top choices", "top options", "top picks",
}

// extractCompetitors pulls candidate business names from numbered and
// bulleted list lines and scores how much to trust the extraction
func extractCompetitors(text string, target nameVariants) ([]string, float64) {
	lines := strings.Split(text, "\n")

	var candidates []string
	numberedLines := 0

	for _, line := range lines {
		var body string
		if m := numberedLineRe.FindStringSubmatch(line); m != nil {
			body = m[2]
			numberedLines++
		} else if m := bulletLineRe.FindStringSubmatch(line); m != nil {
			body = m[1]
		} else {
			continue
		}

		name := candidateFromListLine(body)
		if name == "" {
			continue
		}
		if !isValidCompetitorName(name, target) {
			continue
		}
		candidates = append(candidates, name)
	}

	deduped := dedupeCaseInsensitive(candidates)

	confidence := 0.5
	if numberedLines >= 2 {
		confidence += 0.2
	}
	textLower := strings.ToLower(text)
	for _, phrasing := range recommendationPhrasings {
		if strings.Contains(textLower, phrasing) {
			confidence += 0.15
			break
		}
	}
	if len(deduped) == 0 {
		confidence -= 0.3
	}
	if len(deduped) > 10 {
		confidence -= 0.25
	}

	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}

	return deduped, confidence
}

// Lowercase words that may appear inside a business name without ending it
var nameConnectors = map[string]bool{
	"of": true, "and": true, "the": true, "for": true, "de": true, "la": true,
}

// candidateFromListLine isolates the leading capitalized phrase of one list
// entry: markdown bold stripped, cut at the first dash/colon, then words kept
// while they stay capitalized (lowercase connectors allowed mid-name)
func candidateFromListLine(body string) string {
	cut := boldMarkRe.ReplaceAllString(body, "$1")

	if i := strings.IndexAny(cut, ":\n"); i >= 0 {
		cut = cut[:i]
	}
	for _, dash := range []string{" - ", " – ", " — "} {
		if i := strings.Index(cut, dash); i >= 0 {
			cut = cut[:i]
		}
	}

	cut = strings.TrimSpace(strings.Trim(strings.TrimSpace(cut), `"'`))

	words := strings.Fields(cut)
	var kept []string
	for i, word := range words {
		trimmed := strings.TrimRight(word, ".,!")
		if trimmed == "" {
			break
		}
		if trimmed == "&" {
			kept = append(kept, trimmed)
			continue
		}
		first := []rune(trimmed)[0]
		if unicode.IsUpper(first) || unicode.IsDigit(first) {
			kept = append(kept, trimmed)
			continue
		}
		if i > 0 && nameConnectors[strings.ToLower(trimmed)] {
			kept = append(kept, trimmed)
			continue
		}
		break
	}

	// A name never ends on a connector
	for len(kept) > 0 {
		last := strings.ToLower(kept[len(kept)-1])
		if last == "&" || nameConnectors[last] {
			kept = kept[:len(kept)-1]
			continue
		}
		break
	}

	return strings.Join(kept, " ")
}

func isValidCompetitorName(name string, target nameVariants) bool {
	if len(name) < 2 || len(name) > 80 {
		return false
	}

	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}

	words := strings.Fields(strings.ToLower(name))
	if len(words) == 0 || narrativeStarters[words[0]] {
		return false
	}

	// Multi-sentence fragments are prose, not names
	for _, mark := range []string{". ", "! ", "? "} {
		if strings.Contains(name, mark) {
			return false
		}
	}

	nameLower := strings.ToLower(name)
	if genericCandidateDenylist[nameLower] || knownEntityDenylist[nameLower] {
		return false
	}

	// Self-references are mentions, not competitors
	if matchesVariants(nameLower, target) {
		return false
	}

	return true
}

func dedupeCaseInsensitive(names []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, name)
	}
	return result
}

// ---- rank extraction ----

// extractRank finds the business's stated or list position. Ordinal phrasings
// win over list positions; both only count on lines mentioning the business.
// Ranks outside [1,10] are ignored.
func extractRank(text string, target nameVariants) *int {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		if !matchesVariants(strings.ToLower(line), target) {
			continue
		}
		for _, pattern := range ordinalRankRes {
			if m := pattern.FindStringSubmatch(line); m != nil {
				if rank, ok := parseRank(m[1]); ok {
					return &rank
				}
			}
		}
	}

	for _, line := range lines {
		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if !matchesVariants(strings.ToLower(m[2]), target) {
			continue
		}
		if rank, ok := parseRank(m[1]); ok {
			return &rank
		}
	}

	return nil
}

func parseRank(digits string) (int, bool) {
	rank, err := strconv.Atoi(digits)
	if err != nil || rank < 1 || rank > 10 {
		return 0, false
	}
	return rank, true
}

// ---- citation extraction ----

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico"}

// extractCitations merges URLs found in the response text with any the
// provider reported, normalizes them, and classifies each as primary
// (business's own domain) or secondary
func extractCitations(text string, providerURLs []string, businessURL string) []models.Citation {
	raw := urlExtractor.FindAllString(text, -1)
	raw = append(raw, providerURLs...)

	businessDomain := baseDomain(businessURL)

	seen := make(map[string]bool)
	var citations []models.Citation
	for _, candidate := range raw {
		cleaned, ok := cleanCitationURL(candidate)
		if !ok || seen[cleaned] {
			continue
		}
		seen[cleaned] = true

		citationType := "secondary"
		if businessDomain != "" && strings.EqualFold(baseDomain(cleaned), businessDomain) {
			citationType = "primary"
		}
		citations = append(citations, models.Citation{URL: cleaned, Type: citationType})
	}
	return citations
}

// cleanCitationURL validates and normalizes one URL: http(s) only, no image
// assets, www. prefix and utm_* parameters stripped
func cleanCitationURL(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimRight(raw, ").,;"))
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if parsed.Host == "" {
		return "", false
	}

	pathLower := strings.ToLower(parsed.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(pathLower, ext) {
			return "", false
		}
	}

	parsed.Host = strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	query := parsed.Query()
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""

	return strings.TrimRight(parsed.String(), "/"), true
}

// baseDomain resolves a URL to its registrable domain (eTLD+1); empty string
// when the input can't be resolved
func baseDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
