package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/service/dedupe"
	"github.com/octobees/leads-generator/discovery/internal/service/normalize"
	"github.com/octobees/leads-generator/discovery/internal/service/scoring"
)

// Validation penalties, subtracted from a starting confidence of 100.
const (
	penaltyInvalidPhone = 20
	penaltyInvalidEmail = 15
	penaltyShortName    = 30
	penaltyDuplicate    = 25
	penaltyMissingCity  = 15
	penaltyMissingPhone = 10
	penaltyMissingEmail = 5

	minValidConfidence       = 50
	maxValidIssues           = 3
	minHighQualityConfidence = 70
)

// Validation is the per-lead data quality verdict.
type Validation struct {
	Valid      bool     `json:"valid"`
	Confidence int      `json:"confidence"`
	Issues     []string `json:"issues"`
}

// ValidateLead checks field validity and looks for a near-duplicate in
// existing. The lead itself is skipped when it is part of existing.
// Stored validity flags are trusted, since a formatted number no longer
// fits the raw digit rules.
func ValidateLead(lead entity.Lead, existing []entity.Lead) Validation {
	issues := make([]string, 0)
	confidence := 100

	if !lead.PhoneValid && !normalize.NormalizePhone(lead.Phone, lead.Country).Valid {
		issues = append(issues, "Invalid phone number format")
		confidence -= penaltyInvalidPhone
	}
	if lead.HasEmail() && !lead.EmailValid && !normalize.NormalizeEmail(lead.Email).Valid {
		issues = append(issues, "Invalid email format")
		confidence -= penaltyInvalidEmail
	}
	if utf8.RuneCountInString(strings.TrimSpace(lead.Name)) < 2 {
		issues = append(issues, "Business name too short or missing")
		confidence -= penaltyShortName
	}
	if _, dup := dedupe.FindDuplicate(lead, existing); dup {
		issues = append(issues, "Potential duplicate lead")
		confidence -= penaltyDuplicate
	}
	if utf8.RuneCountInString(strings.TrimSpace(lead.City)) < 2 {
		issues = append(issues, "City missing or invalid")
		confidence -= penaltyMissingCity
	}
	if lead.Phone == "" {
		issues = append(issues, "Phone number missing")
		confidence -= penaltyMissingPhone
	}
	if !lead.HasEmail() {
		confidence -= penaltyMissingEmail
	}

	return Validation{
		Valid:      confidence >= minValidConfidence && len(issues) < maxValidIssues,
		Confidence: max(0, min(100, confidence)),
		Issues:     issues,
	}
}

// IsHighQuality reports whether the lead is worth contacting first. It
// validates the lead on its own, without duplicate detection.
func IsHighQuality(lead entity.Lead) bool {
	v := ValidateLead(lead, nil)
	return v.Confidence >= minHighQualityConfidence &&
		v.Valid &&
		lead.Phone != "" &&
		utf8.RuneCountInString(lead.Name) > 2 &&
		!lead.HasWebsite
}

// LeadQuality is one row of the quality report.
type LeadQuality struct {
	LeadID           string                `json:"lead_id"`
	Name             string                `json:"name"`
	Validation       Validation            `json:"validation"`
	Quality          scoring.QualityResult `json:"quality"`
	HighQuality      bool                  `json:"high_quality"`
	PhoneE164        string                `json:"phone_e164,omitempty"`
	EmailDeliverable *bool                 `json:"email_deliverable,omitempty"`
}

// QualityReport summarises data quality across the collection.
type QualityReport struct {
	Total             int           `json:"total"`
	ValidCount        int           `json:"valid_count"`
	HighQualityCount  int           `json:"high_quality_count"`
	AverageConfidence float64       `json:"average_confidence"`
	Leads             []LeadQuality `json:"leads"`
}

// EmailVerifier checks whether an address can receive mail.
type EmailVerifier interface {
	Deliverable(ctx context.Context, email string) bool
}

func buildQualityReport(ctx context.Context, leads []entity.Lead, fallbackRegion string, mx EmailVerifier) QualityReport {
	report := QualityReport{Total: len(leads), Leads: make([]LeadQuality, 0, len(leads))}
	confidenceSum := 0

	for _, lead := range leads {
		row := LeadQuality{
			LeadID:      lead.ID,
			Name:        lead.Name,
			Validation:  ValidateLead(lead, leads),
			Quality:     scoring.ComputeQuality(lead),
			HighQuality: IsHighQuality(lead),
		}
		if e164, ok := normalize.PhoneE164(lead.Phone, lead.Country, fallbackRegion); ok {
			row.PhoneE164 = e164
		}
		if mx != nil && lead.EmailValid {
			deliverable := mx.Deliverable(ctx, lead.EmailValue())
			row.EmailDeliverable = &deliverable
		}

		if row.Validation.Valid {
			report.ValidCount++
		}
		if row.HighQuality {
			report.HighQualityCount++
		}
		confidenceSum += row.Validation.Confidence
		report.Leads = append(report.Leads, row)
	}

	if len(leads) > 0 {
		report.AverageConfidence = float64(confidenceSum) / float64(len(leads))
	}
	return report
}
