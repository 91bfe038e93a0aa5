package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

var (
	stopwordExpr    = regexp.MustCompile(`(?i)\b(find|search|show|list|get|me|some|any|all|please|looking|for|i|need|want|the)\b`)
	locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|around|at)\s+([\p{L}][\p{L}\s'-]*)`)
	cityTrailers    = map[string]bool{
		"that": true, "without": true, "with": true, "who": true, "which": true,
		"lacking": true, "having": true, "no": true, "and": true, "for": true,
	}
)

// ErrPromptEmpty is returned for a blank prompt.
var ErrPromptEmpty = errors.New("prompt is required")

// ErrPromptCity is returned when no city can be read from the prompt.
var ErrPromptCity = errors.New(`prompt must name a city, e.g. "salons in Kumasi"`)

type industryRule struct {
	pattern  *regexp.Regexp
	industry entity.Industry
}

// Checked in order; the first match wins.
var industryRules = []industryRule{
	{regexp.MustCompile(`(?i)\b(salon|spa|barber|hair|nail)`), entity.IndustrySalonsSpas},
	{regexp.MustCompile(`(?i)\b(beauty|cosmetic|wellness|massage|gym)`), entity.IndustryBeautyWellness},
	{regexp.MustCompile(`(?i)\b(restaurant|pub|bar|chop|grill|eatery)`), entity.IndustryRestaurantsPubs},
	{regexp.MustCompile(`(?i)\b(food|bakery|bakeries|cafe|café|catering|beverage|drink)`), entity.IndustryFoodBeverage},
	{regexp.MustCompile(`(?i)\b(clinic|doctor|dental|dentist|pharmac|healthcare)`), entity.IndustryClinics},
	{regexp.MustCompile(`(?i)\b(hospital|health)`), entity.IndustryHealth},
	{regexp.MustCompile(`(?i)\b(hotel|guest ?house|lodge|motel|hostel)`), entity.IndustryHotels},
	{regexp.MustCompile(`(?i)\b(fashion|cloth|boutique|tailor|dressmaker|retail|shop)`), entity.IndustryFashionRetail},
	{regexp.MustCompile(`(?i)\b(logistic|courier|shipping|haulage|freight)`), entity.IndustryLogistics},
	{regexp.MustCompile(`(?i)\b(lawyer|solicitor|attorney|accountant|professional)`), entity.IndustryProfessional},
	{regexp.MustCompile(`(?i)\b(plumb|electrician|mechanic|clean|repair|handyman|local service)`), entity.IndustryLocalServices},
	{regexp.MustCompile(`(?i)\b(it|software|tech|web)\b`), entity.IndustryITCompanies},
	{regexp.MustCompile(`(?i)\b(real estate|property|properties|realtor)`), entity.IndustryRealEstate},
	{regexp.MustCompile(`(?i)\b(school|education|tutor|training)`), entity.IndustryEducation},
	{regexp.MustCompile(`(?i)\b(car|auto|garage|vehicle)`), entity.IndustryAutomobiles},
	{regexp.MustCompile(`(?i)\b(farm|agri|poultry)`), entity.IndustryAgriculture},
	{regexp.MustCompile(`(?i)\b(consult)`), entity.IndustryConsultants},
	{regexp.MustCompile(`(?i)\b(manufactur|factory|factories)`), entity.IndustryManufacturers},
	{regexp.MustCompile(`(?i)\b(import|export)`), entity.IndustryImportsExports},
	{regexp.MustCompile(`(?i)\b(print|publish)`), entity.IndustryPrintPublishing},
	{regexp.MustCompile(`(?i)\b(security|safety)`), entity.IndustrySecuritySafety},
	{regexp.MustCompile(`(?i)\b(travel|tour)`), entity.IndustryTravelTours},
	{regexp.MustCompile(`(?i)\b(entertainment|event|club|cinema)`), entity.IndustryEntertainment},
	{regexp.MustCompile(`(?i)\b(financ|loan|insurance|bank)`), entity.IndustryFinanceCompanies},
}

var countryAliases = map[string]entity.Country{
	"ghana":          entity.CountryGhana,
	"united kingdom": entity.CountryUnitedKingdom,
	"uk":             entity.CountryUnitedKingdom,
	"england":        entity.CountryUnitedKingdom,
	"united states":  entity.CountryUnitedStates,
	"usa":            entity.CountryUnitedStates,
	"us":             entity.CountryUnitedStates,
	"australia":      entity.CountryAustralia,
}

// PromptService interprets free-form discovery prompts.
type PromptService struct {
	DefaultCountry entity.Country
}

// PromptResult contains structured parameters derived from a prompt.
type PromptResult struct {
	Country  entity.Country
	Industry entity.Industry
	City     string
}

// Query converts the result into a provider query.
func (r PromptResult) Query() provider.Query {
	return provider.Query{Country: r.Country, Industry: r.Industry, City: r.City}
}

// NewPromptService creates a prompt parser with sensible defaults.
func NewPromptService(defaultCountry entity.Country) *PromptService {
	if _, ok := entity.ParseCountry(string(defaultCountry)); !ok {
		defaultCountry = entity.CountryGhana
	}
	return &PromptService{DefaultCountry: defaultCountry}
}

// Parse converts a prompt request into a structured discovery query.
// An explicit request country wins over one named in the prompt.
func (s *PromptService) Parse(req dto.PromptSearchRequest) (PromptResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return PromptResult{}, ErrPromptEmpty
	}

	city, typeBusiness := extractCityAndType(prompt)
	city, mentioned := splitCountry(city)
	if city == "" {
		return PromptResult{}, ErrPromptCity
	}

	country := s.DefaultCountry
	if mentioned != "" {
		country = mentioned
	}
	if strings.TrimSpace(req.Country) != "" {
		parsed, ok := entity.ParseCountry(req.Country)
		if !ok {
			return PromptResult{}, errors.New("unsupported country: " + req.Country)
		}
		country = parsed
	}

	return PromptResult{
		Country:  country,
		Industry: matchIndustry(typeBusiness),
		City:     city,
	}, nil
}

func extractCityAndType(prompt string) (string, string) {
	loc := locationPattern.FindStringSubmatchIndex(prompt)
	if loc == nil {
		return "", prompt
	}

	var words []string
	for _, w := range strings.Fields(prompt[loc[2]:loc[3]]) {
		if cityTrailers[strings.ToLower(w)] {
			break
		}
		words = append(words, w)
	}
	city := titleCase(strings.Join(words, " "))

	typeBusiness := stopwordExpr.ReplaceAllString(prompt[:loc[0]], "")
	return city, strings.TrimSpace(typeBusiness)
}

// splitCountry strips a trailing country name from the city text,
// e.g. "Kumasi Ghana".
func splitCountry(city string) (string, entity.Country) {
	lower := strings.ToLower(city)
	for alias, country := range countryAliases {
		if lower == alias {
			return "", country
		}
		if strings.HasSuffix(lower, " "+alias) {
			return strings.TrimSpace(city[:len(city)-len(alias)]), country
		}
	}
	return city, ""
}

func matchIndustry(text string) entity.Industry {
	if industry, ok := entity.ParseIndustry(text); ok {
		return industry
	}
	for _, rule := range industryRules {
		if rule.pattern.MatchString(text) {
			return rule.industry
		}
	}
	return entity.IndustrySMEs
}

func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	parts := strings.Fields(value)
	for i, p := range parts {
		lower := strings.ToLower(p)
		if len(lower) == 0 {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
