// Package verification cross-checks a lead against the persisted
// collection and reports a 0-100 confidence.
package verification

import (
	"fmt"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/service/normalize"
)

const (
	baseConfidence     = 50
	matchBonus         = 20
	phoneMismatch      = 10
	emailMismatch      = 5
	websiteMismatch    = 15
	reliableBonus      = 15
	syntheticPenalty   = 10
	completeBonus      = 10
	reviewsBonus       = 5
	activeBonus        = 5
	verifiedConfidence = 60
)

// reliableSources must match the lead's source exactly. Merged sources
// such as "Google Places, Yelp" do not qualify.
var reliableSources = []string{"Google Places", "Yelp", "Yellow Pages"}

const syntheticMarker = "AI"

// Result is the outcome of Verify.
type Result struct {
	IsVerified    bool     `json:"is_verified"`
	Confidence    int      `json:"confidence"`
	Sources       []string `json:"sources"`
	Discrepancies []string `json:"discrepancies"`
}

// Verify scores how well newLead is corroborated by existing leads that
// share its city and country and have a similar name.
func Verify(newLead entity.Lead, existing []entity.Lead) Result {
	sources := []string{}
	discrepancies := []string{}
	confidence := baseConfidence

	similar := similarLeads(newLead, existing)
	if len(similar) > 0 {
		sources = append(sources, fmt.Sprintf("Found %d similar lead(s)", len(similar)))
		confidence += matchBonus

		for _, match := range similar {
			if match.Phone != "" && newLead.Phone != "" && match.Phone != newLead.Phone {
				discrepancies = append(discrepancies, "Phone number mismatch with similar lead")
				confidence -= phoneMismatch
			}
			if match.HasEmail() && newLead.HasEmail() && match.EmailValue() != newLead.EmailValue() {
				discrepancies = append(discrepancies, "Email mismatch with similar lead")
				confidence -= emailMismatch
			}
			if match.HasWebsite != newLead.HasWebsite {
				discrepancies = append(discrepancies, "Website status mismatch")
				confidence -= websiteMismatch
			}
		}
	}

	switch {
	case isReliable(newLead.DirectorySource):
		confidence += reliableBonus
		sources = append(sources, fmt.Sprintf("Source: %s (reliable)", newLead.DirectorySource))
	case strings.Contains(newLead.DirectorySource, syntheticMarker):
		confidence -= syntheticPenalty
		sources = append(sources, fmt.Sprintf("Source: %s (synthetic)", newLead.DirectorySource))
	}

	if newLead.Phone != "" && newLead.HasEmail() {
		confidence += completeBonus
		sources = append(sources, "Complete contact information")
	}
	if newLead.ReviewCount > 0 {
		confidence += reviewsBonus
		sources = append(sources, "Has reviews (verified business)")
	}
	if newLead.IsActive {
		confidence += activeBonus
		sources = append(sources, "Marked as active")
	}

	confidence = max(0, min(100, confidence))
	return Result{
		IsVerified:    confidence >= verifiedConfidence,
		Confidence:    confidence,
		Sources:       sources,
		Discrepancies: discrepancies,
	}
}

// Apply verifies the lead and stores the outcome on a copy of it.
func Apply(lead entity.Lead, existing []entity.Lead) entity.Lead {
	res := Verify(lead, existing)
	confidence := res.Confidence
	verified := res.IsVerified
	lead.Confidence = &confidence
	lead.Verified = &verified
	return lead
}

func similarLeads(lead entity.Lead, existing []entity.Lead) []entity.Lead {
	var matches []entity.Lead
	for _, candidate := range existing {
		if candidate.Country != lead.Country || !normalize.SameCity(candidate.City, lead.City) {
			continue
		}
		if normalize.Similarity(lead.Name, candidate.Name) > normalize.SimilarThreshold {
			matches = append(matches, candidate)
		}
	}
	return matches
}

func isReliable(source string) bool {
	for _, reliable := range reliableSources {
		if source == reliable {
			return true
		}
	}
	return false
}
