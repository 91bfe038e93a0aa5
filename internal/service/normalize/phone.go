package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/octobees/leads-generator/discovery/internal/entity"
)

// PhoneResult is the outcome of NormalizePhone.
type PhoneResult struct {
	Valid bool
	Value string
}

type phoneRule struct {
	min    int
	max    int
	region string
}

var phoneRules = map[entity.Country]phoneRule{
	entity.CountryUnitedStates:  {min: 10, max: 11, region: "US"},
	entity.CountryUnitedKingdom: {min: 10, max: 13, region: "GB"},
	entity.CountryAustralia:     {min: 9, max: 10, region: "AU"},
	entity.CountryGhana:         {min: 9, max: 10, region: "GH"},
}

var fallbackPhoneRule = phoneRule{min: 7, max: 15}

// NormalizePhone validates the digit count for the country and reformats
// valid numbers with the country template. Invalid input is returned as-is.
func NormalizePhone(phone string, country entity.Country) PhoneResult {
	digits := digitsOnly(phone)
	rule := ruleFor(country)
	if len(digits) < rule.min || len(digits) > rule.max {
		return PhoneResult{Valid: false, Value: phone}
	}
	return PhoneResult{Valid: true, Value: formatPhone(phone, digits, country)}
}

// RegionFor returns the ISO region used for phone parsing, or "" when the
// country has no dedicated rule.
func RegionFor(country entity.Country) string {
	return ruleFor(country).region
}

// PhoneE164 parses the number with libphonenumber and returns its E.164
// form. fallbackRegion is used for countries without a rule.
func PhoneE164(phone string, country entity.Country, fallbackRegion string) (string, bool) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", false
	}
	region := RegionFor(country)
	if region == "" {
		region = strings.ToUpper(strings.TrimSpace(fallbackRegion))
	}
	number, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}

func ruleFor(country entity.Country) phoneRule {
	if rule, ok := phoneRules[country]; ok {
		return rule
	}
	return fallbackPhoneRule
}

func formatPhone(original, digits string, country entity.Country) string {
	switch country {
	case entity.CountryUnitedStates:
		if len(digits) == 10 {
			return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
		}
		if len(digits) == 11 && digits[0] == '1' {
			return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
		}
	case entity.CountryUnitedKingdom:
		if strings.HasPrefix(digits, "44") {
			return "+44 " + digits[2:5] + " " + digits[5:]
		}
		if strings.HasPrefix(digits, "0") {
			return "+44 " + digits[1:4] + " " + digits[4:]
		}
	case entity.CountryGhana:
		if strings.HasPrefix(digits, "233") {
			return "+233 " + digits[3:6] + " " + digits[6:]
		}
		if strings.HasPrefix(digits, "0") {
			return "+233 " + digits[1:4] + " " + digits[4:]
		}
	}
	return original
}

func digitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
