package services

import (
	"strings"

	"github.com/visiq-ai/visiq-workflows/internal/models"
)

type normalizedLocation struct {
	CountryCode string
	CountryName string
	Region      *string
	City        *string
}

func normalizeLocation(location *models.Location) normalizedLocation {
	if location == nil {
		return normalizedLocation{
			CountryCode: "US",
			CountryName: "United States",
		}
	}

	code := normalizeCountryCode(location.Country)
	region := cleanOptionalString(location.Region)
	city := cleanOptionalString(location.City)

	name := countryCodeToName(code)
	if name == "" {
		name = code
	}

	return normalizedLocation{
		CountryCode: code,
		CountryName: name,
		Region:      region,
		City:        city,
	}
}

func normalizeCountryCode(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		normalized = "US"
	}
	if normalized == "UK" {
		normalized = "GB"
	}
	return normalized
}

func cleanOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// formatLocationForPrompt renders "City, Region, Country" for prompt text.
// A nil location reads as the default market.
func formatLocationForPrompt(location *models.Location) string {
	normalized := normalizeLocation(location)
	parts := []string{}
	if normalized.City != nil {
		parts = append(parts, *normalized.City)
	}
	if normalized.Region != nil {
		parts = append(parts, *normalized.Region)
	}
	if normalized.CountryName != "" {
		parts = append(parts, normalized.CountryName)
	}

	if len(parts) == 0 {
		return "United States"
	}

	return strings.Join(parts, ", ")
}

func countryCodeToName(code string) string {
	switch code {
	case "US":
		return "United States"
	case "CA":
		return "Canada"
	case "GB":
		return "United Kingdom"
	case "IE":
		return "Ireland"
	case "AU":
		return "Australia"
	case "NZ":
		return "New Zealand"
	case "DE":
		return "Germany"
	case "FR":
		return "France"
	case "ES":
		return "Spain"
	case "PT":
		return "Portugal"
	case "IT":
		return "Italy"
	case "NL":
		return "Netherlands"
	case "BE":
		return "Belgium"
	case "CH":
		return "Switzerland"
	case "AT":
		return "Austria"
	case "SE":
		return "Sweden"
	case "NO":
		return "Norway"
	case "DK":
		return "Denmark"
	case "FI":
		return "Finland"
	case "PL":
		return "Poland"
	case "SG":
		return "Singapore"
	case "IN":
		return "India"
	case "JP":
		return "Japan"
	case "BR":
		return "Brazil"
	case "MX":
		return "Mexico"
	case "ZA":
		return "South Africa"
	}
	return ""
}
