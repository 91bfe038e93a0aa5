package entity

import (
	"strings"
	"time"
)

// Country is one of the markets the discovery pipeline targets.
type Country string

const (
	CountryGhana         Country = "Ghana"
	CountryUnitedKingdom Country = "United Kingdom"
	CountryUnitedStates  Country = "United States"
	CountryAustralia     Country = "Australia"
)

// Countries lists the supported markets in display order.
var Countries = []Country{CountryGhana, CountryUnitedKingdom, CountryUnitedStates, CountryAustralia}

// Industry is the business category a discovery run searches for.
type Industry string

const (
	IndustrySMEs             Industry = "SMEs"
	IndustryLocalServices    Industry = "Local service businesses"
	IndustryFoodBeverage     Industry = "Food & beverage"
	IndustryBeautyWellness   Industry = "Beauty & wellness"
	IndustrySalonsSpas       Industry = "Salons & spas"
	IndustryClinics          Industry = "Clinics & healthcare services"
	IndustryFashionRetail    Industry = "Fashion & retail"
	IndustryLogistics        Industry = "Logistics & trade services"
	IndustryProfessional     Industry = "Professional services"
	IndustryRestaurantsPubs  Industry = "Restaurants & Pubs"
	IndustryHotels           Industry = "Hotels"
	IndustryITCompanies      Industry = "IT Companies"
	IndustryRealEstate       Industry = "Real Estate Companies"
	IndustryEducation        Industry = "Education"
	IndustryAutomobiles      Industry = "Automobiles"
	IndustryAgriculture      Industry = "Agriculture"
	IndustryHealth           Industry = "Health"
	IndustryConsultants      Industry = "Consultants"
	IndustryManufacturers    Industry = "Manufacturers"
	IndustryImportsExports   Industry = "Imports & Exports"
	IndustryPrintPublishing  Industry = "Printing & Publishing"
	IndustrySecuritySafety   Industry = "Security & Safety"
	IndustryTravelTours      Industry = "Travel & Tours"
	IndustryEntertainment    Industry = "Entertainment"
	IndustryFinanceCompanies Industry = "Finance Companies"
)

// Industries lists the supported categories in display order.
var Industries = []Industry{
	IndustrySMEs, IndustryLocalServices, IndustryFoodBeverage, IndustryBeautyWellness,
	IndustrySalonsSpas, IndustryClinics, IndustryFashionRetail, IndustryLogistics,
	IndustryProfessional, IndustryRestaurantsPubs, IndustryHotels, IndustryITCompanies,
	IndustryRealEstate, IndustryEducation, IndustryAutomobiles, IndustryAgriculture,
	IndustryHealth, IndustryConsultants, IndustryManufacturers, IndustryImportsExports,
	IndustryPrintPublishing, IndustrySecuritySafety, IndustryTravelTours, IndustryEntertainment,
	IndustryFinanceCompanies,
}

// ParseCountry matches raw case-insensitively against the supported countries.
func ParseCountry(raw string) (Country, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range Countries {
		if strings.EqualFold(string(c), raw) {
			return c, true
		}
	}
	return "", false
}

// ParseIndustry matches raw case-insensitively against the supported industries.
func ParseIndustry(raw string) (Industry, bool) {
	raw = strings.TrimSpace(raw)
	for _, i := range Industries {
		if strings.EqualFold(string(i), raw) {
			return i, true
		}
	}
	return "", false
}

// EmailSource records where a lead's email address was found.
type EmailSource string

const (
	EmailSourceDirectory EmailSource = "Directory"
	EmailSourceFacebook  EmailSource = "Facebook"
	EmailSourceInstagram EmailSource = "Instagram"
	EmailSourceLinkedIn  EmailSource = "LinkedIn"
	EmailSourceSearch    EmailSource = "Search"
	EmailSourceNone      EmailSource = "None"
)

// ParseEmailSource maps free text onto a known source, defaulting to None.
func ParseEmailSource(raw string) EmailSource {
	switch EmailSource(raw) {
	case EmailSourceDirectory, EmailSourceFacebook, EmailSourceInstagram, EmailSourceLinkedIn, EmailSourceSearch:
		return EmailSource(raw)
	default:
		return EmailSourceNone
	}
}

// Lead is a candidate business record lacking a confirmed website.
type Lead struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Industry        Industry    `json:"industry"`
	Country         Country     `json:"country"`
	City            string      `json:"city"`
	Phone           string      `json:"phone"`
	PhoneValid      bool        `json:"phone_valid"`
	Email           *string     `json:"email"`
	EmailValid      bool        `json:"email_valid"`
	EmailSource     EmailSource `json:"email_source"`
	HasWebsite      bool        `json:"has_website"`
	IsActive        bool        `json:"is_active"`
	MapsURL         string      `json:"maps_url"`
	DirectorySource string      `json:"directory_source"`
	ReviewCount     int         `json:"review_count"`
	LastReviewDate  *time.Time  `json:"last_review_date,omitempty"`
	LeadScore       int         `json:"lead_score"`
	DateAdded       time.Time   `json:"date_added"`
	Notes           string      `json:"notes"`
	Confidence      *int        `json:"confidence,omitempty"`
	Verified        *bool       `json:"verified,omitempty"`
}

// EmailValue returns the email address or an empty string.
func (l Lead) EmailValue() string {
	if l.Email == nil {
		return ""
	}
	return *l.Email
}

// HasEmail reports whether the lead carries a non-empty email.
func (l Lead) HasEmail() bool {
	return l.EmailValue() != ""
}
